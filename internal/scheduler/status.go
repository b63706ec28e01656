package scheduler

import (
	"sync"
	"time"
)

// State is a phase of the scheduling loop.
type State int

const (
	StateIdle State = iota
	StatePolling
	StatePosting
	StateCooldownWait
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StatePosting:
		return "posting"
	case StateCooldownWait:
		return "cooldown_wait"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of the loop's status.
type Snapshot struct {
	State      State
	LastPoll   time.Time
	LastPost   time.Time
	NextPoll   time.Time
	Posts      int
	RateLimits int
}

// Status tracks the loop for observers on other goroutines.
type Status struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStatus creates a tracker in StateIdle.
func NewStatus() *Status {
	return &Status{}
}

func (s *Status) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.State = state
}

func (s *Status) polled(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.State = StatePolling
	s.snap.LastPoll = at
}

func (s *Status) posted(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.LastPost = at
	s.snap.Posts++
}

func (s *Status) waiting(until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.State = StateCooldownWait
	s.snap.NextPoll = until
}

func (s *Status) rateLimited() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.RateLimits++
}

// Snapshot returns a copy of the current status.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
