package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chaincampus/warden/core"
	"github.com/chaincampus/warden/ports"
)

// NonceService issues and resolves one-time wallet login challenges.
type NonceService struct {
	store ports.NonceStore
}

// NewNonceService creates a new nonce service.
func NewNonceService(store ports.NonceStore) *NonceService {
	return &NonceService{store: store}
}

// Issue generates a fresh challenge bound to the claimed address.
func (s *NonceService) Issue(ctx context.Context, address string) (core.Nonce, error) {
	if address == "" {
		return core.Nonce{}, core.ErrMissingCredentials
	}

	nonce := core.Nonce{
		ID:      uuid.New().String(),
		Value:   uuid.New().String(),
		Address: address,
	}
	if err := s.store.Save(ctx, nonce); err != nil {
		return core.Nonce{}, fmt.Errorf("failed to save nonce: %w", err)
	}
	return nonce, nil
}

// Lookup resolves a challenge by its value.
func (s *NonceService) Lookup(ctx context.Context, value string) (core.Nonce, error) {
	if value == "" {
		return core.Nonce{}, core.ErrNonceNotFound
	}
	return s.store.FindByValue(ctx, value)
}

// Consume removes a nonce after a successful signature check. Nonces are
// single-use: once a login succeeds against one, it cannot be replayed.
func (s *NonceService) Consume(ctx context.Context, value string) error {
	return s.store.Delete(ctx, value)
}
