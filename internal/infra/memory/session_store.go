package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore
// holding the single session record.
type SessionStore struct {
	mu     sync.RWMutex
	state  domain.SessionState
	exists bool
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Load(_ context.Context) (domain.SessionState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.exists {
		return domain.SessionState{}, false, nil
	}
	return cloneState(s.state), true, nil
}

func (s *SessionStore) Save(_ context.Context, state domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = cloneState(state)
	s.exists = true
	return nil
}

// Clear drops the stored record entirely, as opposed to Reset which
// saves a fresh lobby. Used by tests.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.SessionState{}
	s.exists = false
}

// cloneState deep-copies the mutable collections so callers cannot alias
// the stored record.
func cloneState(state domain.SessionState) domain.SessionState {
	clone := state
	clone.Players = append([]domain.Player(nil), state.Players...)
	clone.Answers = make(map[string]map[string]domain.Answer, len(state.Answers))
	for questionID, byPlayer := range state.Answers {
		inner := make(map[string]domain.Answer, len(byPlayer))
		for playerID, answer := range byPlayer {
			inner[playerID] = answer
		}
		clone.Answers[questionID] = inner
	}
	return clone
}
