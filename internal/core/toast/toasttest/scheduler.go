// Package toasttest provides test doubles for the toast package.
package toasttest

import (
	"sync"
	"time"

	"github.com/colonyops/toaster/internal/core/toast"
)

var _ toast.Scheduler = (*Scheduler)(nil)

// Scheduler is a manually advanced toast.Scheduler. Timers fire only from
// Advance, in deadline order, on the calling goroutine.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*timer
}

type timer struct {
	at  time.Time
	seq int
	fn  func()
}

// NewScheduler returns a scheduler whose clock starts at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the fake clock reading.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// After registers fn to run once the clock has advanced by d.
func (s *Scheduler) After(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &timer{at: s.now.Add(d), seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, other := range s.timers {
			if other == t {
				s.timers = append(s.timers[:i], s.timers[i+1:]...)
				return
			}
		}
	}
}

// Advance moves the clock forward by d, firing every timer that comes due,
// including timers scheduled by callbacks within the window.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.popDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		if next.at.After(s.now) {
			s.now = next.at
		}
		s.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have not fired or been cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// popDue removes and returns the earliest timer due at or before target.
// Must be called with s.mu held.
func (s *Scheduler) popDue(target time.Time) *timer {
	idx := -1
	for i, t := range s.timers {
		if t.at.After(target) {
			continue
		}
		if idx < 0 || t.at.Before(s.timers[idx].at) ||
			(t.at.Equal(s.timers[idx].at) && t.seq < s.timers[idx].seq) {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	t := s.timers[idx]
	s.timers = append(s.timers[:idx], s.timers[idx+1:]...)
	return t
}
