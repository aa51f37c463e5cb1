package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SessionKey(sid string) string
}

// Store persists session state in Redis. Each session is one JSON value under
// the session id; every save refreshes the TTL so active sessions slide.
type Store struct {
	store redisStore
	ttl   time.Duration
}

func NewStore(store redisStore, ttl time.Duration) (*Store, error) {
	if store == nil {
		return nil, errors.New("session: redis store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session: ttl must be positive")
	}
	return &Store{store: store, ttl: ttl}, nil
}

// NewID mints a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Load fetches the session state for sid. A missing or unreadable session
// loads as a fresh empty state.
func (s *Store) Load(ctx context.Context, sid string) (*State, error) {
	raw, err := s.store.Get(ctx, s.store.SessionKey(sid))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewState(), nil
		}
		return nil, err
	}
	state := NewState()
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		return NewState(), nil
	}
	if state.Cart == nil {
		state.Cart = map[string]CartLine{}
	}
	return state, nil
}

// Save writes the session state and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sid string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.store.SessionKey(sid), string(raw), s.ttl)
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sid string) error {
	return s.store.Del(ctx, s.store.SessionKey(sid))
}
