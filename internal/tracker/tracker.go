// Package tracker keeps the in-memory set of unresolved join requests
// per channel. State is volatile and lost on restart.
package tracker

import (
	"sync"

	"gatekeeper-tg-bot/internal/chatref"
)

// Tracker maps channels to the user ids with an open join request known
// to this process. It is a lower bound: approvals performed outside the
// process are not reflected here.
type Tracker struct {
	mu      sync.Mutex
	pending map[chatref.Ref]map[int64]struct{}
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		pending: make(map[chatref.Ref]map[int64]struct{}),
	}
}

// Add records an unresolved join request.
func (t *Tracker) Add(ch chatref.Ref, userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.pending[ch]
	if !ok {
		set = make(map[int64]struct{})
		t.pending[ch] = set
	}
	set[userID] = struct{}{}
}

// Remove drops a user from a channel's pending set. Once the set
// empties, the channel entry is deleted entirely rather than kept as an
// empty placeholder.
func (t *Tracker) Remove(ch chatref.Ref, userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.pending[ch]
	if !ok {
		return
	}
	delete(set, userID)
	if len(set) == 0 {
		delete(t.pending, ch)
	}
}

// Has reports whether a user is tracked for a channel.
func (t *Tracker) Has(ch chatref.Ref, userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.pending[ch][userID]
	return ok
}

// Users returns a copy of the pending user ids for a channel.
func (t *Tracker) Users(ch chatref.Ref) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	set := t.pending[ch]
	if len(set) == 0 {
		return nil
	}
	users := make([]int64, 0, len(set))
	for id := range set {
		users = append(users, id)
	}
	return users
}

// Count returns the number of pending users for a channel.
func (t *Tracker) Count(ch chatref.Ref) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending[ch])
}

// Tracked reports whether the channel has a pending entry at all.
func (t *Tracker) Tracked(ch chatref.Ref) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.pending[ch]
	return ok
}

// Channels returns the channels with at least one pending request.
func (t *Tracker) Channels() []chatref.Ref {
	t.mu.Lock()
	defer t.mu.Unlock()

	chans := make([]chatref.Ref, 0, len(t.pending))
	for ch := range t.pending {
		chans = append(chans, ch)
	}
	return chans
}

// TotalPending returns the number of pending requests across all channels.
func (t *Tracker) TotalPending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := 0
	for _, set := range t.pending {
		total += len(set)
	}
	return total
}
