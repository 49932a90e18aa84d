// Package debounce settles a rapidly changing value.
package debounce

import (
	"sync"
	"time"
)

// Stabilizer adopts an observed value only after no newer value has arrived
// for the full delay. Goroutine-safe; the settle callback runs on the timer's
// goroutine, so callers that own single-threaded state should forward it
// (e.g. via tea.Program.Send) instead of mutating directly.
type Stabilizer[T comparable] struct {
	mu       sync.Mutex
	value    T
	timer    *time.Timer
	seq      uint64 // bumped on every Observe/Stop; stale fires compare against it
	stopped  bool
	onSettle func(T)
}

// New creates a Stabilizer whose stable value starts at initial.
// onSettle may be nil.
func New[T comparable](initial T, onSettle func(T)) *Stabilizer[T] {
	return &Stabilizer[T]{value: initial, onSettle: onSettle}
}

// Observe records a new input. Any pending emission is cancelled and a new one
// armed for delay. A non-positive delay settles immediately.
func (s *Stabilizer[T]) Observe(value T, delay time.Duration) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	seq := s.seq

	if delay <= 0 {
		s.mu.Unlock()
		s.settle(seq, value)
		return
	}

	s.timer = time.AfterFunc(delay, func() { s.settle(seq, value) })
	s.mu.Unlock()
}

// settle applies value if seq is still the newest observation.
// time.Timer.Stop can lose the race with a firing timer, hence the seq check.
func (s *Stabilizer[T]) settle(seq uint64, value T) {
	s.mu.Lock()
	if s.stopped || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	changed := s.value != value
	s.value = value
	cb := s.onSettle
	s.mu.Unlock()

	if changed && cb != nil {
		cb(value)
	}
}

// Value returns the current stable value.
func (s *Stabilizer[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Pending reports whether an emission is armed.
func (s *Stabilizer[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Stop releases the pending timer. No callback starts after Stop returns and
// later Observe calls are ignored. Idempotent.
func (s *Stabilizer[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.stopped = true
	s.seq++
}
