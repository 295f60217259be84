// Package session tracks multi-turn operator conversations so free-form
// text can be routed to the pending operation instead of being ignored.
package session

import (
	"sync"

	"gatekeeper-tg-bot/internal/chatref"
)

// State names the step an operator conversation is waiting on.
type State string

const (
	// StateAwaitingChannelID expects the next message to name the
	// channel whose pending requests should be bulk-approved.
	StateAwaitingChannelID State = "AWAITING_CHANNEL_ID"

	// StateAwaitingAdChannel expects the next message to name the
	// channel an ad should be posted to (private-chat flow).
	StateAwaitingAdChannel State = "AWAITING_AD_CHANNEL"

	// StateAwaitingAdBody expects the next message to be the ad body.
	StateAwaitingAdBody State = "AWAITING_AD_BODY"
)

// Session is the pending conversation step for one operator. Target is
// only meaningful in StateAwaitingAdBody.
type Session struct {
	State  State
	Target chatref.Ref
}

// Store holds at most one session per operator. A single tagged state
// per operator makes the channel-id flow and the ad flow mutually
// exclusive: starting one replaces the other.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]Session),
	}
}

// Begin puts an operator into the given state, replacing any previous
// session.
func (s *Store) Begin(operatorID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[operatorID] = Session{State: state}
}

// BeginAdBody puts an operator into the ad-body state with the target
// channel bound.
func (s *Store) BeginAdBody(operatorID int64, target chatref.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[operatorID] = Session{State: StateAwaitingAdBody, Target: target}
}

// Get returns the operator's session, if any.
func (s *Store) Get(operatorID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[operatorID]
	return sess, ok
}

// Clear returns the operator to idle.
func (s *Store) Clear(operatorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, operatorID)
}

// Len returns the number of operators mid-conversation.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
