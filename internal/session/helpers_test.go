package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/clock"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/events"
	"github.com/spec-kit/docdesk/internal/observability"
	"github.com/spec-kit/docdesk/internal/repository"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type navigation struct {
	target string
	from   string
}

type recordingNavigator struct {
	mu    sync.Mutex
	calls []navigation
}

func (n *recordingNavigator) Navigate(target, from string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, navigation{target: target, from: from})
}

func (n *recordingNavigator) Calls() []navigation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]navigation(nil), n.calls...)
}

type stubLogin struct {
	token string
	err   error
}

func (s *stubLogin) Login(context.Context, string, string) (string, error) {
	return s.token, s.err
}

type brokenRepository struct{}

var errDiskGone = errors.New("disk gone")

func (brokenRepository) Get(context.Context) (string, error) { return "", errDiskGone }
func (brokenRepository) Set(context.Context, string) error   { return errDiskGone }
func (brokenRepository) Delete(context.Context) error        { return errDiskGone }

type harness struct {
	clock      *clock.FakeClock
	repo       repository.TokenRepository
	slot       *TokenSlot
	store      *Store
	readiness  *Readiness
	scheduler  *Scheduler
	navigator  *recordingNavigator
	redirector *Redirector
	dispatcher events.Dispatcher
	login      *stubLogin
	metrics    *observability.Metrics
	controller *Controller
	guard      *Guard

	mu      sync.Mutex
	expired []events.Event
	started []events.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithRepo(t, repository.NewMemoryTokenRepository())
}

func newHarnessWithRepo(t *testing.T, repo repository.TokenRepository) *harness {
	t.Helper()
	logger := zap.NewNop()
	h := &harness{
		clock:      clock.Fake(epoch),
		repo:       repo,
		store:      NewStore(),
		readiness:  NewReadiness(),
		navigator:  &recordingNavigator{},
		dispatcher: events.NewInMemoryDispatcher(logger),
		login:      &stubLogin{},
		metrics:    observability.NewMetrics("test", prometheus.NewRegistry()),
	}
	h.slot = NewTokenSlot(repo, logger)
	h.scheduler = NewScheduler(h.clock, DefaultExpiryGrace)
	h.redirector = NewRedirector(h.navigator, "/login", h.dispatcher, h.metrics, logger)
	h.controller = NewController(Dependencies{
		Slot:       h.slot,
		Store:      h.store,
		Readiness:  h.readiness,
		Scheduler:  h.scheduler,
		Redirector: h.redirector,
		Login:      h.login,
		Dispatcher: h.dispatcher,
		Clock:      h.clock,
		Metrics:    h.metrics,
		Logger:     logger,
	})
	h.guard = NewGuard(h.readiness, h.store, h.slot, h.redirector, logger)
	h.dispatcher.Subscribe(events.EventSessionExpired, func(_ context.Context, e events.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.expired = append(h.expired, e)
		return nil
	})
	h.dispatcher.Subscribe(events.EventSessionStarted, func(_ context.Context, e events.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.started = append(h.started, e)
		return nil
	})
	t.Cleanup(func() {
		h.guard.Close()
		h.controller.Close()
	})
	return h
}

func (h *harness) expiredNotices() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.expired)
}

func (h *harness) storedToken(t *testing.T) (string, bool) {
	t.Helper()
	token, err := h.repo.Get(context.Background())
	if errors.Is(err, repository.ErrNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return token, true
}

// reject does what the gateway does on a 401 before deciding whether to
// navigate.
func (h *harness) reject(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	h.slot.Evict(ctx)
	ready := h.readiness.Ready()
	require.NoError(t, h.dispatcher.Publish(ctx, events.NewEvent(events.EventCredentialRejected, "", events.CredentialRejectedPayload{
		Method:     "GET",
		Path:       "/api/documents",
		StatusCode: 401,
		Ready:      ready,
	})))
	if ready {
		h.redirector.ToLogin(ctx, "", RedirectRejected)
	}
}

func issueToken(t *testing.T, username string, role domain.Role, dept *domain.DepartmentRef, exp *time.Time) string {
	t.Helper()
	claims := &auth.Claims{
		Role:             role,
		Department:       dept,
		RegisteredClaims: jwt.RegisteredClaims{Subject: username, IssuedAt: jwt.NewNumericDate(epoch)},
	}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	token, err := auth.NewTokenManager("session-test", 60).Sign(claims)
	require.NoError(t, err)
	return token
}

func at(d time.Duration) *time.Time {
	tm := epoch.Add(d)
	return &tm
}
