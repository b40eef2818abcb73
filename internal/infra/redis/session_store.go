package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trivia-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const sessionKey = "quiz:session"

// SessionStore persists the single session record as JSON under a fixed
// Redis key. Each operation is one GET or SET; atomicity across the
// read-modify-write pass comes from the service's single-writer lock,
// not from Redis.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore builds a store; ttl <= 0 keeps the record forever.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context) (domain.SessionState, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey).Bytes()
	if err == redis.Nil {
		return domain.SessionState{}, false, nil
	}
	if err != nil {
		return domain.SessionState{}, false, fmt.Errorf("get session: %w", err)
	}

	var state domain.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.SessionState{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return state, true, nil
}

func (s *SessionStore) Save(ctx context.Context, state domain.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, sessionKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}
