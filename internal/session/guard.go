package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/domain"
)

// Decision is the outcome of a guard evaluation.
type Decision int

const (
	// DecisionSuspend means bootstrap has not finished; show nothing.
	DecisionSuspend Decision = iota
	// DecisionRedirect means there is no session. Every Enter that ends here
	// sends the user to login; re-evaluations of an entered location do so
	// at most once per logged-out period.
	DecisionRedirect
	// DecisionRender means the protected content may be shown.
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionSuspend:
		return "suspend"
	case DecisionRedirect:
		return "redirect"
	case DecisionRender:
		return "render"
	}
	return "unknown"
}

// Evaluate maps readiness and session to a decision.
func Evaluate(ready bool, session *domain.Session) Decision {
	switch {
	case !ready:
		return DecisionSuspend
	case session == nil:
		return DecisionRedirect
	default:
		return DecisionRender
	}
}

// Guard protects one location at a time and re-evaluates whenever
// readiness or the session changes.
type Guard struct {
	readiness  *Readiness
	store      *Store
	slot       *TokenSlot
	redirector *Redirector
	logger     *zap.Logger

	mu       sync.Mutex
	location string
	entered  bool
	last     Decision
	watchers map[int]func(Decision)
	nextID   int

	unsubscribe []func()
}

// NewGuard builds a guard and starts watching readiness and store changes.
func NewGuard(readiness *Readiness, store *Store, slot *TokenSlot, redirector *Redirector, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Guard{
		readiness:  readiness,
		store:      store,
		slot:       slot,
		redirector: redirector,
		logger:     logger,
		watchers:   make(map[int]func(Decision)),
	}
	g.unsubscribe = append(g.unsubscribe,
		readiness.Subscribe(func() { g.reevaluate() }),
		store.Subscribe(func(State) { g.reevaluate() }),
	)
	return g
}

// Enter evaluates location and keeps watching it until Leave.
func (g *Guard) Enter(ctx context.Context, location string) Decision {
	g.mu.Lock()
	g.location = location
	g.entered = true
	g.mu.Unlock()
	return g.evaluate(ctx, true)
}

// Leave stops re-evaluating the current location.
func (g *Guard) Leave() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entered = false
	g.location = ""
}

// Decision returns the most recent decision.
func (g *Guard) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Watch registers fn for every decision made while a location is entered.
func (g *Guard) Watch(fn func(Decision)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := g.nextID
	g.watchers[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.watchers, id)
	}
}

// Close stops watching readiness and the store.
func (g *Guard) Close() {
	for _, unsubscribe := range g.unsubscribe {
		unsubscribe()
	}
	g.unsubscribe = nil
}

func (g *Guard) reevaluate() {
	g.mu.Lock()
	entered := g.entered
	g.mu.Unlock()
	if entered {
		g.evaluate(context.Background(), false)
	}
}

func (g *Guard) evaluate(ctx context.Context, entering bool) Decision {
	decision := Evaluate(g.readiness.Ready(), g.store.Session())

	g.mu.Lock()
	location := g.location
	g.last = decision
	watchers := make([]func(Decision), 0, len(g.watchers))
	for _, fn := range g.watchers {
		watchers = append(watchers, fn)
	}
	g.mu.Unlock()

	if decision == DecisionRedirect {
		// A token may still be stored if it failed validation elsewhere.
		g.slot.Evict(ctx)
		if entering {
			g.redirector.Redirect(ctx, location, RedirectGuard)
		} else {
			g.redirector.ToLogin(ctx, location, RedirectGuard)
		}
	}
	g.logger.Debug("route guard decision", zap.String("location", location), zap.Stringer("decision", decision))

	for _, fn := range watchers {
		fn(decision)
	}
	return decision
}
