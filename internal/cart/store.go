package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgredis "github.com/adebayoakin/gearmart-backend/pkg/redis"
)

// Store persists cart documents keyed by session id. A missing key reads as
// an empty cart, never an error.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type cartKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

type redisStore struct {
	kv  cartKV
	ttl time.Duration
}

// NewRedisStore builds a Store over the shared Redis client. Every save
// refreshes the TTL, so active sessions never expire mid-shop.
func NewRedisStore(client *pkgredis.Client, ttl time.Duration) (Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &redisStore{kv: client, ttl: ttl}, nil
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(sessionID))
	if err != nil {
		if pkgredis.IsNil(err) {
			return NewCart(sessionID), nil
		}
		return nil, fmt.Errorf("loading cart %s: %w", sessionID, err)
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decoding cart %s: %w", sessionID, err)
	}
	if cart.Lines == nil {
		cart.Lines = map[uuid.UUID]*Line{}
	}
	return &cart, nil
}

func (s *redisStore) Save(ctx context.Context, cart *Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encoding cart %s: %w", cart.SessionID, err)
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(cart.SessionID), payload, s.ttl); err != nil {
		return fmt.Errorf("saving cart %s: %w", cart.SessionID, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(sessionID)); err != nil {
		return fmt.Errorf("deleting cart %s: %w", sessionID, err)
	}
	return nil
}
