// Package scheduler provides the one-shot deferred actions the bot
// relies on: per-message deletion timers and the startup grace window.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler arms one-shot timers keyed by message id. An entry is
// removed when its timer fires (before the action runs) or when it is
// cancelled; a fired action is never retried.
type Scheduler struct {
	mu     sync.Mutex
	timers map[int]*time.Timer
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		timers: make(map[int]*time.Timer),
	}
}

// Schedule arms a one-shot timer for key. An existing timer for the
// same key is cancelled and replaced.
func (s *Scheduler) Schedule(key int, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[key]; ok {
		prev.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.remove(key)
		fn()
	})
}

// Cancel stops the timer for key, if armed. It reports whether a timer
// was cancelled before firing.
func (s *Scheduler) Cancel(key int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[key]
	if !ok {
		return false
	}
	delete(s.timers, key)
	return t.Stop()
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) remove(key int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, key)
}
