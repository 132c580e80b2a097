package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chaincampus/warden/core"
)

const (
	denylistPrefix = "warden:invalidated:"
	noncePrefix    = "warden:nonce:"
)

// RedisStore backs both the credential denylist and the nonce store with
// Redis. Both are single-key insert/lookup/delete; no cross-key coordination
// is needed.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// InvalidateToken marks a credential id as revoked until its natural expiry.
// Re-inserting an already revoked id just refreshes the entry.
func (s *RedisStore) InvalidateToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, denylistPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

// IsTokenInvalidated checks whether a credential id has been revoked.
func (s *RedisStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, denylistPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token invalidation: %w", err)
	}
	return n > 0, nil
}

// Save persists a nonce keyed by its value. Nonces carry no TTL; they live
// until consumed by a successful wallet login.
func (s *RedisStore) Save(ctx context.Context, nonce core.Nonce) error {
	payload, err := json.Marshal(nonce)
	if err != nil {
		return fmt.Errorf("failed to marshal nonce: %w", err)
	}
	if err := s.client.Set(ctx, noncePrefix+nonce.Value, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to save nonce: %w", err)
	}
	return nil
}

// FindByValue looks a nonce up by its challenge value.
func (s *RedisStore) FindByValue(ctx context.Context, value string) (core.Nonce, error) {
	payload, err := s.client.Get(ctx, noncePrefix+value).Bytes()
	if err == redis.Nil {
		return core.Nonce{}, core.ErrNonceNotFound
	}
	if err != nil {
		return core.Nonce{}, fmt.Errorf("failed to load nonce: %w", err)
	}

	var nonce core.Nonce
	if err := json.Unmarshal(payload, &nonce); err != nil {
		return core.Nonce{}, fmt.Errorf("failed to unmarshal nonce: %w", err)
	}
	return nonce, nil
}

// Delete removes a consumed nonce. Deleting an absent value is a no-op.
func (s *RedisStore) Delete(ctx context.Context, value string) error {
	if err := s.client.Del(ctx, noncePrefix+value).Err(); err != nil {
		return fmt.Errorf("failed to delete nonce: %w", err)
	}
	return nil
}
