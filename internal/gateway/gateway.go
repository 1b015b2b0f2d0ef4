// Package gateway is the single HTTP path to the backend. It attaches the
// stored bearer token to every request and turns 401/403 responses into a
// session transition.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/events"
	"github.com/spec-kit/docdesk/internal/observability"
	"github.com/spec-kit/docdesk/internal/session"
)

// LoginEndpoint is the backend path that exchanges credentials for a token.
const LoginEndpoint = "/api/auth/login"

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Options configures a Gateway. Slot, Readiness and Redirector are required.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Base       http.RoundTripper
	Slot       *session.TokenSlot
	Readiness  *session.Readiness
	Redirector *session.Redirector
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// Gateway owns the authenticated http.Client.
type Gateway struct {
	baseURL   string
	client    *http.Client
	transport *Transport
}

// New builds a gateway.
func New(opts Options) *Gateway {
	if opts.Base == nil {
		opts.Base = http.DefaultTransport
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	transport := &Transport{
		base:       opts.Base,
		slot:       opts.Slot,
		readiness:  opts.Readiness,
		redirector: opts.Redirector,
		dispatcher: opts.Dispatcher,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	return &Gateway{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		client:    &http.Client{Transport: transport, Timeout: opts.Timeout},
		transport: transport,
	}
}

// Client returns the http.Client every backend call must go through.
func (g *Gateway) Client() *http.Client {
	return g.client
}

// BaseURL returns the backend origin without a trailing slash.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// NewRequest builds a request for path relative to the base URL.
func (g *Gateway) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	return req, nil
}

// Do sends req through the gateway.
func (g *Gateway) Do(req *http.Request) (*http.Response, error) {
	return g.client.Do(req)
}

// Transport is the http.RoundTripper behind Gateway.
type Transport struct {
	base       http.RoundTripper
	slot       *session.TokenSlot
	readiness  *session.Readiness
	redirector *session.Redirector
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// RoundTrip attaches credentials, forwards the request and inspects the
// response. A rejected credential is evicted; the response is still
// returned to the caller unchanged.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if token, ok := t.slot.Load(ctx); ok {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	t.metrics.RecordRequest(out.Method, resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		t.reject(ctx, out, resp.StatusCode)
	}
	return resp, nil
}

func (t *Transport) reject(ctx context.Context, req *http.Request, status int) {
	t.slot.Evict(ctx)

	ready := t.readiness.Ready()
	phase := observability.PhaseLive
	if !ready {
		phase = observability.PhaseBootstrap
	}
	t.metrics.RecordRejection(phase)

	if t.dispatcher != nil {
		_ = t.dispatcher.Publish(ctx, events.NewEvent(events.EventCredentialRejected, "", events.CredentialRejectedPayload{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: status,
			Ready:      ready,
		}))
	}

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", req.Header.Get(RequestIDHeader)),
	}
	switch {
	case !ready:
		t.logger.Warn("credential rejected before session bootstrap completed", fields...)
	case strings.HasSuffix(req.URL.Path, LoginEndpoint):
		// Bad credentials on the login surface itself.
		t.logger.Debug("login request rejected", fields...)
	default:
		t.logger.Info("credential rejected", fields...)
		t.redirector.ToLogin(ctx, "", session.RedirectRejected)
	}
}
