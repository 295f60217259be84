package scheduler

import (
	"sync"
	"time"
)

// Grace tracks the startup grace window: a fixed period after process
// start during which automatic approval is suspended. The active flag
// flips to false exactly once, by a one-shot timer armed at start; it
// is never re-armed.
type Grace struct {
	mu        sync.Mutex
	startedAt time.Time
	active    bool
}

// StartGrace records the process start time and arms the one-shot
// expiry timer. A non-positive duration starts with the window already
// closed.
func StartGrace(d time.Duration) *Grace {
	g := &Grace{
		startedAt: time.Now(),
		active:    d > 0,
	}
	if d > 0 {
		time.AfterFunc(d, g.expire)
	}
	return g
}

func (g *Grace) expire() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = false
}

// Active reports whether the grace window is still open.
func (g *Grace) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Uptime returns the time elapsed since process start.
func (g *Grace) Uptime() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return time.Since(g.startedAt)
}
