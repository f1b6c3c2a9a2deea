package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "checkout:session:"

// SessionStore persists checkout sessions in Redis, keyed by cart.
type SessionStore struct {
	R   *redis.Client
	TTL time.Duration
}

func (s *SessionStore) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return time.Hour
	}
	return s.TTL
}

// Save serialises the session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, session *Session) error {
	if s == nil || s.R == nil {
		return errors.New("checkout session store not configured")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.R.Set(ctx, sessionPrefix+session.CartID.String(), data, s.ttl()).Err()
}

// Get loads the session for a cart.
func (s *SessionStore) Get(ctx context.Context, cartID uuid.UUID) (*Session, error) {
	if s == nil || s.R == nil {
		return nil, errors.New("checkout session store not configured")
	}
	data, err := s.R.Get(ctx, sessionPrefix+cartID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes the session.
func (s *SessionStore) Delete(ctx context.Context, cartID uuid.UUID) error {
	if s == nil || s.R == nil {
		return errors.New("checkout session store not configured")
	}
	return s.R.Del(ctx, sessionPrefix+cartID.String()).Err()
}
