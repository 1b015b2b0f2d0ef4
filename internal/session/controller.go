package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/clock"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/events"
	"github.com/spec-kit/docdesk/internal/observability"
)

// ErrExpiredCredential is returned by Login when the backend hands out a
// token that is already past its exp.
var ErrExpiredCredential = errors.New("credential expired")

// LoginClient exchanges credentials for a bearer token.
type LoginClient interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Dependencies are the collaborators of a Controller. Store, Readiness,
// Slot and Redirector are required.
type Dependencies struct {
	Codec      *auth.Codec
	Slot       *TokenSlot
	Store      *Store
	Readiness  *Readiness
	Scheduler  *Scheduler
	Redirector *Redirector
	Login      LoginClient
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// Controller owns every session transition. Transitions run under one
// mutex; events and navigation happen after it is released.
type Controller struct {
	codec      *auth.Codec
	slot       *TokenSlot
	store      *Store
	readiness  *Readiness
	scheduler  *Scheduler
	redirector *Redirector
	login      LoginClient
	dispatcher events.Dispatcher
	clock      clock.Clock
	metrics    *observability.Metrics
	logger     *zap.Logger

	bootstrapOnce sync.Once
	unsubscribe   func()

	mu     sync.Mutex
	handle *Handle
	// epoch changes on every transition so a late expiry callback can
	// tell it belongs to a session that is already gone.
	epoch uint64
}

// NewController wires a controller and subscribes it to credential
// rejections published by the gateway.
func NewController(deps Dependencies) *Controller {
	if deps.Codec == nil {
		deps.Codec = auth.NewCodec()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = NewScheduler(deps.Clock, DefaultExpiryGrace)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewInMemoryDispatcher(deps.Logger)
	}

	c := &Controller{
		codec:      deps.Codec,
		slot:       deps.Slot,
		store:      deps.Store,
		readiness:  deps.Readiness,
		scheduler:  deps.Scheduler,
		redirector: deps.Redirector,
		login:      deps.Login,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
	c.unsubscribe = c.dispatcher.Subscribe(events.EventCredentialRejected, c.handleRejection)
	return c
}

// Bootstrap restores a persisted session and sets readiness. Only the
// first call does anything. It never navigates.
func (c *Controller) Bootstrap(ctx context.Context) {
	c.bootstrapOnce.Do(func() { c.bootstrap(ctx) })
}

func (c *Controller) bootstrap(ctx context.Context) {
	c.mu.Lock()
	session, claims := c.restoreLocked(ctx)
	if session != nil {
		c.epoch++
		c.redirector.Reset()
		c.store.SetSession(session)
		c.armLocked(claims)
	} else {
		c.slot.Evict(ctx)
		c.store.Clear()
	}
	c.mu.Unlock()

	c.readiness.MarkReady()

	if session == nil {
		c.metrics.RecordTransition(PhaseUnauthenticated.String(), string(events.EndReasonBootstrap))
		return
	}
	c.metrics.RecordTransition(PhaseAuthenticated.String(), string(events.EndReasonBootstrap))
	c.publish(ctx, events.EventSessionStarted, session.Username, events.SessionStartedPayload{Session: session, Restored: true})
}

// restoreLocked reads and validates the persisted token.
func (c *Controller) restoreLocked(ctx context.Context) (*domain.Session, *auth.Claims) {
	token, ok := c.slot.Load(ctx)
	if !ok {
		return nil, nil
	}
	claims, err := c.codec.Decode(token)
	if err != nil {
		c.logger.Warn("discarding persisted token", zap.Error(err))
		return nil, nil
	}
	if auth.IsExpired(claims, c.clock.Now()) {
		c.logger.Info("persisted token expired", zap.String("username", claims.Subject))
		return nil, nil
	}
	return claims.Session(), claims
}

// Login exchanges credentials for a session. Backend failures are
// returned unchanged; the session stays empty.
func (c *Controller) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	if c.login == nil {
		return nil, errors.New("session: no login client configured")
	}
	token, err := c.login.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	claims, err := c.codec.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if auth.IsExpired(claims, c.clock.Now()) {
		return nil, fmt.Errorf("login: %w", ErrExpiredCredential)
	}
	session := claims.Session()

	c.mu.Lock()
	c.epoch++
	c.slot.Persist(ctx, token)
	c.redirector.Reset()
	c.store.SetSession(session)
	c.armLocked(claims)
	c.mu.Unlock()

	c.metrics.RecordTransition(PhaseAuthenticated.String(), "login")
	c.publish(ctx, events.EventSessionStarted, session.Username, events.SessionStartedPayload{Session: session})
	return session, nil
}

// Logout ends the session. When redirect is false navigation is left to
// the caller.
func (c *Controller) Logout(ctx context.Context, redirect bool) {
	ended := c.end(ctx)
	if ended != nil {
		c.metrics.RecordTransition(PhaseUnauthenticated.String(), string(events.EndReasonLogout))
		c.publish(ctx, events.EventSessionEnded, ended.Username, events.SessionEndedPayload{Reason: events.EndReasonLogout})
	}
	if redirect {
		c.redirector.ToLogin(ctx, "", RedirectLogout)
	}
}

// expire runs when the scheduler fires for the session of epoch.
func (c *Controller) expire(epoch uint64) {
	ctx := context.Background()

	c.mu.Lock()
	if c.epoch != epoch || c.store.Session() == nil {
		c.mu.Unlock()
		return
	}
	ended := c.endLocked(ctx)
	c.mu.Unlock()

	c.logger.Info("session expired", zap.String("username", ended.Username))
	c.metrics.RecordTransition(PhaseUnauthenticated.String(), string(events.EndReasonExpired))
	c.publish(ctx, events.EventSessionExpired, ended.Username, events.SessionEndedPayload{Reason: events.EndReasonExpired})
	c.publish(ctx, events.EventSessionEnded, ended.Username, events.SessionEndedPayload{Reason: events.EndReasonExpired})
	c.redirector.ToLogin(ctx, "", RedirectExpired)
}

// handleRejection clears the session after the gateway saw a 401 or 403.
// Navigation is the gateway's or the guard's decision.
func (c *Controller) handleRejection(ctx context.Context, event events.Event) error {
	ended := c.end(ctx)
	if ended == nil {
		return nil
	}
	c.metrics.RecordTransition(PhaseUnauthenticated.String(), string(events.EndReasonRejected))
	c.publish(ctx, events.EventSessionEnded, ended.Username, events.SessionEndedPayload{Reason: events.EndReasonRejected})
	return nil
}

// end evicts the token and clears the session, returning the session that
// was ended or nil if there was none.
func (c *Controller) end(ctx context.Context) *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store.Session() == nil {
		c.disarmLocked()
		c.slot.Evict(ctx)
		return nil
	}
	return c.endLocked(ctx)
}

// endLocked disarms before clearing so no expiry can fire into an empty store.
func (c *Controller) endLocked(ctx context.Context) *domain.Session {
	ended := c.store.Session()
	c.disarmLocked()
	c.slot.Evict(ctx)
	c.epoch++
	c.store.Clear()
	return ended
}

func (c *Controller) armLocked(claims *auth.Claims) {
	c.disarmLocked()
	exp, ok := claims.Expiry()
	if !ok {
		c.logger.Warn("token has no exp claim, session will not expire", zap.String("username", claims.Subject))
		return
	}
	epoch := c.epoch
	c.handle = c.scheduler.Arm(exp, func() { c.expire(epoch) })
}

func (c *Controller) disarmLocked() {
	if c.handle == nil {
		return
	}
	c.scheduler.Disarm(c.handle)
	c.handle = nil
}

func (c *Controller) publish(ctx context.Context, eventType events.EventType, username string, payload interface{}) {
	if err := c.dispatcher.Publish(ctx, events.NewEvent(eventType, username, payload)); err != nil {
		c.logger.Warn("publish session event", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

// Session returns the current session or nil.
func (c *Controller) Session() *domain.Session {
	return c.store.Session()
}

// Ready reports whether bootstrap has completed.
func (c *Controller) Ready() bool {
	return c.readiness.Ready()
}

// Close disarms any pending expiry and stops listening for rejections.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disarmLocked()
	c.epoch++
}
