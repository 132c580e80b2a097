package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaincampus/warden/core"
)

func TestMemoryDenylist(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	revoked, err := s.IsTokenInvalidated(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.InvalidateToken(ctx, "jti-1", time.Hour))
	// Idempotent re-insert.
	require.NoError(t, s.InvalidateToken(ctx, "jti-1", time.Hour))

	revoked, err = s.IsTokenInvalidated(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryDenylistEntryLapses(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.InvalidateToken(ctx, "jti-1", -time.Minute))

	revoked, err := s.IsTokenInvalidated(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryNonces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.FindByValue(ctx, "never-issued")
	assert.ErrorIs(t, err, core.ErrNonceNotFound)

	nonce := core.Nonce{ID: "1", Value: "n1", Address: "addr_1"}
	require.NoError(t, s.Save(ctx, nonce))

	got, err := s.FindByValue(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, nonce, got)

	require.NoError(t, s.Delete(ctx, "n1"))
	_, err = s.FindByValue(ctx, "n1")
	assert.ErrorIs(t, err, core.ErrNonceNotFound)
}
