// Package client is the REST client for the docdesk backend. Every call
// goes through the gateway, and every list call refreshes the matching
// collection in the session store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/gateway"
	"github.com/spec-kit/docdesk/internal/session"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

const maxErrorBody = 64 << 10

// Client talks to the backend on behalf of the current session.
type Client struct {
	gateway *gateway.Gateway
	store   *session.Store
	logger  *zap.Logger
}

// New builds a client. store may be nil when collections are not cached.
func New(gw *gateway.Gateway, store *session.Store, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{gateway: gw, store: store, logger: logger}
}

func (c *Client) remember(name string, data any) {
	if c.store != nil {
		c.store.SetCollection(name, data)
	}
}

// doJSON sends body as JSON and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := c.gateway.NewRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.gateway.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// decodeError turns a non-2xx response into a DomainError. 401 and 403
// become AuthorizationRejected; the gateway has already acted on them.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	domainErr := apperrors.FromResponse(resp.StatusCode, body)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apperrors.NewAuthorizationRejected(resp.StatusCode, domainErr.Message)
	}
	return domainErr
}

func pageQuery(page, size int) url.Values {
	values := url.Values{}
	if page < 0 {
		page = 0
	}
	values.Set("page", strconv.Itoa(page))
	if size > 0 {
		values.Set("size", strconv.Itoa(size))
	}
	return values
}

func withQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}
