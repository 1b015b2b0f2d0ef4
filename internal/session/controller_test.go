package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/events"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

func TestFreshLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.controller.Bootstrap(ctx)
	require.True(t, h.controller.Ready())
	require.Nil(t, h.controller.Session())
	assert.Empty(t, h.navigator.Calls(), "bootstrap never navigates")

	h.login.token = issueToken(t, "alice", domain.RoleEmployee, nil, at(time.Hour))
	session, err := h.controller.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, domain.RoleEmployee, session.Role)
	assert.Nil(t, session.Department)
	assert.Equal(t, session, h.store.Session())
	assert.Equal(t, PhaseAuthenticated, h.store.State().Phase)

	stored, ok := h.storedToken(t)
	require.True(t, ok)
	assert.Equal(t, h.login.token, stored)

	require.True(t, h.scheduler.Armed())
	assert.WithinDuration(t, epoch.Add(time.Hour+DefaultExpiryGrace), h.controller.handle.At(), 0)
	require.NotNil(t, session.ExpiresAt)
	assert.WithinDuration(t, epoch.Add(time.Hour), *session.ExpiresAt, 0)

	_, _, transitions, _ := h.metrics.Counters()
	assert.Equal(t, 1.0, testutil.ToFloat64(transitions.WithLabelValues("authenticated", "login")))
}

func TestBootstrapRestoresPersistedSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	finance := &domain.DepartmentRef{ID: 2, Name: "Finance"}
	token := issueToken(t, "bob", domain.RoleDeptHead, finance, at(10*time.Minute))
	require.NoError(t, h.repo.Set(ctx, token))

	h.controller.Bootstrap(ctx)

	require.True(t, h.readiness.Ready())
	session := h.controller.Session()
	require.NotNil(t, session)
	assert.Equal(t, "bob", session.Username)
	assert.Equal(t, finance, session.Department)
	assert.True(t, h.scheduler.Armed())

	require.Len(t, h.started, 1)
	payload := h.started[0].Payload.(events.SessionStartedPayload)
	assert.True(t, payload.Restored)
}

func TestBootstrapExpiredPersistedToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.repo.Set(ctx, issueToken(t, "alice", domain.RoleEmployee, nil, at(-10*time.Second))))

	h.controller.Bootstrap(ctx)

	assert.True(t, h.readiness.Ready())
	assert.Nil(t, h.controller.Session())
	_, ok := h.storedToken(t)
	assert.False(t, ok, "expired token evicted")
	assert.Zero(t, h.expiredNotices(), "no expiry notice on cold start")
	assert.Empty(t, h.navigator.Calls())
	assert.False(t, h.scheduler.Armed())
}

func TestBootstrapMalformedToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.repo.Set(ctx, "not-a-jwt"))

	assert.NotPanics(t, func() { h.controller.Bootstrap(ctx) })

	assert.True(t, h.readiness.Ready())
	assert.Nil(t, h.controller.Session())
	_, ok := h.storedToken(t)
	assert.False(t, ok)
	assert.Equal(t, PhaseUnauthenticated, h.store.State().Phase)
}

func TestBootstrapRunsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.controller.Bootstrap(ctx)
	require.NoError(t, h.repo.Set(ctx, issueToken(t, "alice", domain.RoleEmployee, nil, at(time.Hour))))
	h.controller.Bootstrap(ctx)

	assert.Nil(t, h.controller.Session())
}

func TestBootstrapWithUnavailableStorage(t *testing.T) {
	h := newHarnessWithRepo(t, brokenRepository{})
	ctx := context.Background()

	h.controller.Bootstrap(ctx)

	assert.True(t, h.readiness.Ready())
	assert.Nil(t, h.controller.Session())
}

func TestLiveExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.controller.Bootstrap(ctx)

	h.login.token = issueToken(t, "alice", domain.RoleEmployee, nil, at(time.Second))
	_, err := h.controller.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, DecisionRender, h.guard.Enter(ctx, "/documents"))

	h.clock.Advance(1499 * time.Millisecond)
	require.NotNil(t, h.controller.Session(), "grace margin not yet elapsed")

	h.clock.Advance(time.Millisecond)
	assert.Nil(t, h.controller.Session())
	assert.Equal(t, 1, h.expiredNotices())
	_, ok := h.storedToken(t)
	assert.False(t, ok)

	calls := h.navigator.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/login", calls[0].target)
	assert.False(t, h.scheduler.Armed())

	h.clock.Advance(time.Hour)
	assert.Equal(t, 1, h.expiredNotices(), "expiry fires once")
	assert.Len(t, h.navigator.Calls(), 1)
}

func TestLogoutDisarmsExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.controller.Bootstrap(ctx)

	h.login.token = issueToken(t, "alice", domain.RoleEmployee, nil, at(time.Minute))
	_, err := h.controller.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	h.controller.Logout(ctx, false)
	assert.Nil(t, h.controller.Session())
	assert.False(t, h.scheduler.Armed())
	assert.Empty(t, h.navigator.Calls(), "logout without redirect leaves navigation to the caller")

	h.clock.Advance(2 * time.Minute)
	assert.Zero(t, h.expiredNotices())

	h.controller.Logout(ctx, true)
	assert.Len(t, h.navigator.Calls(), 1)
}

func TestLoginFailureKeepsSessionEmpty(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.controller.Bootstrap(ctx)

	h.login.err = apperrors.NewLoginRejected(401, "Bad credentials")
	session, err := h.controller.Login(ctx, "alice", "wrong")

	assert.Nil(t, session)
	assert.True(t, apperrors.IsLoginRejected(err))
	assert.EqualError(t, err, "Bad credentials")
	assert.Nil(t, h.controller.Session())
	_, ok := h.storedToken(t)
	assert.False(t, ok)
}

func TestLoginRejectsUnusableTokens(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.controller.Bootstrap(ctx)

	h.login.token = issueToken(t, "alice", domain.RoleEmployee, nil, at(-time.Second))
	_, err := h.controller.Login(ctx, "alice", "pw")
	assert.ErrorIs(t, err, ErrExpiredCredential)

	h.login.token = "garbage"
	_, err = h.controller.Login(ctx, "alice", "pw")
	assert.ErrorIs(t, err, auth.ErrDecode)

	assert.Nil(t, h.controller.Session())
	_, ok := h.storedToken(t)
	assert.False(t, ok)
}

func TestTokenWithoutExpiryIsNotScheduled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.controller.Bootstrap(ctx)

	h.login.token = issueToken(t, "carol", domain.RoleDirector, nil, nil)
	session, err := h.controller.Login(ctx, "carol", "pw")
	require.NoError(t, err)
	assert.Nil(t, session.ExpiresAt)
	assert.False(t, h.scheduler.Armed())
}

func TestMidBootstrapRejection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.repo.Set(ctx, issueToken(t, "alice", domain.RoleEmployee, nil, at(time.Hour))))

	require.Equal(t, DecisionSuspend, h.guard.Enter(ctx, "/documents"))

	h.reject(t)
	_, ok := h.storedToken(t)
	assert.False(t, ok, "token evicted while bootstrapping")
	assert.Empty(t, h.navigator.Calls(), "no navigation before ready")

	h.controller.Bootstrap(ctx)

	assert.Nil(t, h.controller.Session())
	assert.Equal(t, DecisionRedirect, h.guard.Decision())
	calls := h.navigator.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, navigation{target: "/login", from: "/documents"}, calls[0])
	assert.Equal(t, "/documents", h.redirector.ReturnTo())
}

func TestRejectionWhileAuthenticated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.controller.Bootstrap(ctx)

	h.login.token = issueToken(t, "alice", domain.RoleEmployee, nil, at(time.Hour))
	_, err := h.controller.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	h.reject(t)

	assert.Nil(t, h.controller.Session())
	assert.False(t, h.scheduler.Armed())
	assert.Len(t, h.navigator.Calls(), 1)
	assert.Zero(t, h.expiredNotices(), "rejection has no notice of its own")
}

func TestAtMostOneRedirect(t *testing.T) {
	for _, n := range []int{1, 2, 16, 64} {
		h := newHarness(t)
		ctx := context.Background()
		require.NoError(t, h.repo.Set(ctx, issueToken(t, "alice", domain.RoleEmployee, nil, at(time.Hour))))
		h.controller.Bootstrap(ctx)
		require.Equal(t, DecisionRender, h.guard.Enter(ctx, "/documents"))

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.reject(t)
			}()
		}
		wg.Wait()

		assert.Len(t, h.navigator.Calls(), 1, "n=%d", n)
		assert.Nil(t, h.controller.Session())
	}
}

func TestAtMostOneRedirectAcrossReadiness(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.repo.Set(ctx, issueToken(t, "alice", domain.RoleEmployee, nil, at(time.Hour))))
	h.guard.Enter(ctx, "/users")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.reject(t)
		}()
	}
	h.controller.Bootstrap(ctx)
	wg.Wait()

	assert.Len(t, h.navigator.Calls(), 1)
	assert.Nil(t, h.controller.Session())
}

func TestRedirectAgainAfterNewSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.controller.Bootstrap(ctx)

	h.login.token = issueToken(t, "alice", domain.RoleEmployee, nil, at(time.Hour))
	_, err := h.controller.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	h.controller.Logout(ctx, true)
	h.controller.Logout(ctx, true)
	require.Len(t, h.navigator.Calls(), 1)

	_, err = h.controller.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	h.controller.Logout(ctx, true)
	assert.Len(t, h.navigator.Calls(), 2)
}

func TestCloseDisarmsPendingExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.controller.Bootstrap(ctx)

	h.login.token = issueToken(t, "alice", domain.RoleEmployee, nil, at(time.Second))
	_, err := h.controller.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	h.controller.Close()
	h.clock.Advance(time.Minute)

	assert.Zero(t, h.expiredNotices())
	assert.NotNil(t, h.controller.Session())
	assert.Zero(t, h.clock.PendingCount())
}
