package client

import (
	"context"
	"net/http"

	"github.com/spec-kit/docdesk/internal/api/dto"
	"github.com/spec-kit/docdesk/internal/gateway"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

// Login exchanges credentials for a bearer token. A backend refusal is
// returned as LoginRejected carrying the backend's message.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	req := dto.LoginRequest{Username: username, Password: password}
	if err := dto.Validate(req); err != nil {
		return "", err
	}

	var out dto.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, gateway.LoginEndpoint, req, &out); err != nil {
		if domainErr := apperrors.ToDomainError(err); domainErr.HTTPStatus > 0 && domainErr.HTTPStatus < http.StatusInternalServerError {
			return "", apperrors.NewLoginRejected(domainErr.HTTPStatus, domainErr.Message)
		}
		return "", err
	}
	if out.Token == "" {
		return "", apperrors.NewLoginRejected(http.StatusBadGateway, "login response carried no token")
	}
	return out.Token, nil
}

// Me returns the backend's view of the current caller.
func (c *Client) Me(ctx context.Context) (*dto.MeResponse, error) {
	var out dto.MeResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
