package store

import (
	"context"
	"sync"
	"time"

	"github.com/chaincampus/warden/core"
)

// MemoryStore is an in-memory implementation of the denylist and nonce
// stores, used in tests and when no Redis URL is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	invalidated map[string]time.Time
	nonces      map[string]core.Nonce
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invalidated: make(map[string]time.Time),
		nonces:      make(map[string]core.Nonce),
	}
}

// InvalidateToken marks a credential id as revoked.
func (s *MemoryStore) InvalidateToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated[tokenID] = time.Now().Add(ttl)
	return nil
}

// IsTokenInvalidated checks whether a credential id has been revoked and the
// revocation entry has not lapsed.
func (s *MemoryStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.invalidated[tokenID]
	if !ok {
		return false, nil
	}
	return time.Now().Before(expiry), nil
}

// Save persists a nonce keyed by its value.
func (s *MemoryStore) Save(ctx context.Context, nonce core.Nonce) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[nonce.Value] = nonce
	return nil
}

// FindByValue looks a nonce up by its challenge value.
func (s *MemoryStore) FindByValue(ctx context.Context, value string) (core.Nonce, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nonce, ok := s.nonces[value]
	if !ok {
		return core.Nonce{}, core.ErrNonceNotFound
	}
	return nonce, nil
}

// Delete removes a consumed nonce.
func (s *MemoryStore) Delete(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nonces, value)
	return nil
}
