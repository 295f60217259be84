// Package registry records the channels the operator has configured.
package registry

import (
	"sync"
	"time"

	"gatekeeper-tg-bot/internal/chatref"
)

// Config describes a configured channel.
type Config struct {
	Title               string
	ConfiguredAt        time.Time
	CanFetchOldRequests bool

	// CrossServer is a heuristic: it means the pending-request
	// enumeration API failed during the channel's most recent
	// configuration. It is best-effort, not platform-verified.
	CrossServer bool
}

// Registry is the authoritative in-memory record of configured channels.
// Re-configuring a channel overwrites its entry; entries never expire.
type Registry struct {
	mu       sync.Mutex
	channels map[chatref.Ref]Config
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		channels: make(map[chatref.Ref]Config),
	}
}

// Configure stores the channel config, replacing any previous entry.
func (r *Registry) Configure(ch chatref.Ref, cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[ch] = cfg
}

// Get returns the config for a channel, if configured.
func (r *Registry) Get(ch chatref.Ref) (Config, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.channels[ch]
	return cfg, ok
}

// Len returns the number of configured channels.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}

// CrossServerCount returns how many configured channels are marked
// cross-server.
func (r *Registry) CrossServerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, cfg := range r.channels {
		if cfg.CrossServer {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of all configured channels.
func (r *Registry) Snapshot() map[chatref.Ref]Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[chatref.Ref]Config, len(r.channels))
	for ch, cfg := range r.channels {
		out[ch] = cfg
	}
	return out
}
