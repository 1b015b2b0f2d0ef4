package session

import (
	"sync"

	"github.com/spec-kit/docdesk/internal/domain"
)

// Phase is the lifecycle state of the store.
type Phase int

const (
	PhaseBootstrapping Phase = iota
	PhaseUnauthenticated
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseBootstrapping:
		return "bootstrapping"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Collection names cached by list calls.
const (
	CollectionDocuments      = "documents"
	CollectionAllDocuments   = "allDocuments"
	CollectionUsers          = "users"
	CollectionDepartments    = "departments"
	CollectionAllDepartments = "allDepartments"
)

// State is a snapshot of the store.
type State struct {
	Phase   Phase
	Session *domain.Session
}

// Authenticated reports whether a session is present.
func (s State) Authenticated() bool {
	return s.Session != nil
}

// Store holds the current session and the cached collections. Only the
// controller changes the session; list calls overwrite collections.
type Store struct {
	mu          sync.RWMutex
	state       State
	collections map[string]any
	nextID      int
	listeners   map[int]func(State)
}

// NewStore returns a store in the bootstrapping phase.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]any),
		listeners:   make(map[int]func(State)),
	}
}

// State returns the latest completed write.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Session returns the current session or nil.
func (s *Store) Session() *domain.Session {
	return s.State().Session
}

// SetSession moves the store to the authenticated phase.
func (s *Store) SetSession(session *domain.Session) {
	s.mu.Lock()
	s.state = State{Phase: PhaseAuthenticated, Session: session}
	state, listeners := s.state, s.snapshotListenersLocked()
	s.mu.Unlock()
	notify(listeners, state)
}

// Clear drops the session and every cached collection.
func (s *Store) Clear() {
	s.mu.Lock()
	s.state = State{Phase: PhaseUnauthenticated}
	s.collections = make(map[string]any)
	state, listeners := s.state, s.snapshotListenersLocked()
	s.mu.Unlock()
	notify(listeners, state)
}

// SetCollection overwrites the named collection.
func (s *Store) SetCollection(name string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = data
}

// Collection returns the named collection and whether it is set.
func (s *Store) Collection(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[name]
	return data, ok
}

// Subscribe registers fn for session changes. Listeners run after the
// write is visible, outside the store lock.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) snapshotListenersLocked() []func(State) {
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	return listeners
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}
