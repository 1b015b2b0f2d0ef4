package session

import "sync"

// Readiness is a one-shot latch that turns true when the first bootstrap
// attempt completes and never turns false again. The gateway and the
// guard share one instance.
type Readiness struct {
	mu        sync.Mutex
	ready     bool
	done      chan struct{}
	nextID    int
	listeners map[int]func()
}

// NewReadiness returns a latch in the not-ready state.
func NewReadiness() *Readiness {
	return &Readiness{
		done:      make(chan struct{}),
		listeners: make(map[int]func()),
	}
}

// Ready reports whether the latch has been set.
func (r *Readiness) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Done returns a channel closed when the latch is set.
func (r *Readiness) Done() <-chan struct{} {
	return r.done
}

// MarkReady sets the latch. It returns false if it was already set.
// Listeners run on the calling goroutine after the latch is visible.
func (r *Readiness) MarkReady() bool {
	r.mu.Lock()
	if r.ready {
		r.mu.Unlock()
		return false
	}
	r.ready = true
	close(r.done)
	listeners := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.listeners = nil
	r.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return true
}

// Subscribe registers fn to run once when the latch is set. If it is
// already set fn is not called. The returned function cancels the
// registration.
func (r *Readiness) Subscribe(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return func() {}
	}
	r.nextID++
	id := r.nextID
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}
