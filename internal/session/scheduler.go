package session

import (
	"sync"
	"time"

	"github.com/spec-kit/docdesk/internal/clock"
)

// DefaultExpiryGrace is added to every scheduled expiry to absorb skew
// between the local clock and the backend's.
const DefaultExpiryGrace = 500 * time.Millisecond

// Handle identifies one armed expiry.
type Handle struct {
	timer clock.Timer
	at    time.Time
}

// At returns when the handle is due to fire.
func (h *Handle) At() time.Time {
	return h.at
}

// Scheduler runs a single expiry callback per session. Arming replaces
// the previous schedule.
type Scheduler struct {
	clock clock.Clock
	grace time.Duration

	mu      sync.Mutex
	current *Handle
}

// NewScheduler builds a scheduler over c. A negative grace is treated as zero.
func NewScheduler(c clock.Clock, grace time.Duration) *Scheduler {
	if c == nil {
		c = clock.Real()
	}
	if grace < 0 {
		grace = 0
	}
	return &Scheduler{clock: c, grace: grace}
}

// Arm schedules onExpire for max(expiresAt, now) + grace and disarms any
// previous handle. onExpire runs at most once, and never after the handle
// has been disarmed or replaced.
func (s *Scheduler) Arm(expiresAt time.Time, onExpire func()) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	now := s.clock.Now()
	fireAt := expiresAt
	if fireAt.Before(now) {
		fireAt = now
	}
	fireAt = fireAt.Add(s.grace)

	h := &Handle{at: fireAt}
	h.timer = s.clock.AfterFunc(fireAt.Sub(now), func() {
		s.mu.Lock()
		if s.current != h {
			s.mu.Unlock()
			return
		}
		s.current = nil
		s.mu.Unlock()
		onExpire()
	})
	s.current = h
	return h
}

// Disarm cancels h. Disarming a nil, fired or already disarmed handle is a no-op.
func (s *Scheduler) Disarm(h *Handle) {
	if h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == h {
		s.stopLocked()
	}
}

// Armed reports whether an expiry is pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

func (s *Scheduler) stopLocked() {
	if s.current == nil {
		return
	}
	if s.current.timer != nil {
		s.current.timer.Stop()
	}
	s.current = nil
}
