package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/events"
	"github.com/spec-kit/docdesk/internal/observability"
)

// Redirect reasons.
const (
	RedirectLogout   = "logout"
	RedirectExpired  = "expired"
	RedirectRejected = "rejected"
	RedirectGuard    = "guard"
)

// Navigator moves the user to target. from is the location the user was
// on, if known.
type Navigator interface {
	Navigate(target, from string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target, from string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(target, from string) { f(target, from) }

// Redirector sends the user to the login surface at most once per
// unauthenticated period. Reset opens a new period; the controller calls
// it whenever a session is established.
type Redirector struct {
	navigator  Navigator
	loginPath  string
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	mu         sync.Mutex
	redirected bool
	returnTo   string
}

// NewRedirector builds a redirector. dispatcher and metrics may be nil.
func NewRedirector(navigator Navigator, loginPath string, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *Redirector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Redirector{
		navigator:  navigator,
		loginPath:  loginPath,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// ToLogin navigates to the login surface unless that already happened in
// the current period. It reports whether it navigated. A non-empty from
// is remembered for ReturnTo either way.
func (r *Redirector) ToLogin(ctx context.Context, from, reason string) bool {
	return r.toLogin(ctx, from, reason, false)
}

// Redirect navigates to the login surface even if the current period
// already did. The period still counts as redirected afterwards, so later
// ToLogin calls stay quiet.
func (r *Redirector) Redirect(ctx context.Context, from, reason string) {
	r.toLogin(ctx, from, reason, true)
}

func (r *Redirector) toLogin(ctx context.Context, from, reason string, force bool) bool {
	r.mu.Lock()
	if from != "" {
		r.returnTo = from
	}
	if r.redirected && !force {
		r.mu.Unlock()
		r.logger.Debug("login redirect already performed", zap.String("reason", reason))
		return false
	}
	r.redirected = true
	from = r.returnTo
	r.mu.Unlock()

	r.metrics.RecordRedirect(reason)
	r.logger.Info("redirecting to login", zap.String("reason", reason), zap.String("from", from))
	if r.navigator != nil {
		r.navigator.Navigate(r.loginPath, from)
	}
	if r.dispatcher != nil {
		_ = r.dispatcher.Publish(ctx, events.NewEvent(events.EventLoginRedirect, "", events.LoginRedirectPayload{
			Target: r.loginPath,
			From:   from,
			Reason: reason,
		}))
	}
	return true
}

// Reset allows the next ToLogin to navigate again.
func (r *Redirector) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirected = false
}

// Redirected reports whether the current period already navigated.
func (r *Redirector) Redirected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirected
}

// ReturnTo returns the location remembered by the last guarded redirect.
func (r *Redirector) ReturnTo() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.returnTo
}

// LoginPath returns the navigation target.
func (r *Redirector) LoginPath() string {
	return r.loginPath
}
