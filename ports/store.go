package ports

import (
	"context"
	"time"

	"github.com/chaincampus/warden/core"
)

// DenylistStore records credential ids revoked before their natural expiry.
// Inserting the same id twice is a no-op, never an error.
type DenylistStore interface {
	InvalidateToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}

// NonceStore persists one-time wallet login challenges keyed by value.
type NonceStore interface {
	Save(ctx context.Context, nonce core.Nonce) error
	FindByValue(ctx context.Context, value string) (core.Nonce, error)
	Delete(ctx context.Context, value string) error
}
