package tokenizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaincampus/warden/core"
)

var testKey = []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")

func TestEncodeDecode(t *testing.T) {
	tk := NewJWTTokenizer(testKey, "chaincampus", time.Hour, 24*time.Hour)

	token, err := tk.Encode(core.Identity{ID: "user-1", Role: core.RoleUser})
	require.NoError(t, err)

	claims, err := tk.Decode(token, false)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "chaincampus", claims.Issuer)
	assert.Equal(t, "ROLE_USER", claims.Scope)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt, time.Second)
}

func TestDecodeEmptyScopeWithoutRole(t *testing.T) {
	tk := NewJWTTokenizer(testKey, "chaincampus", time.Hour, 24*time.Hour)

	token, err := tk.Encode(core.Identity{ID: "user-1"})
	require.NoError(t, err)

	claims, err := tk.Decode(token, false)
	require.NoError(t, err)
	assert.Empty(t, claims.Scope)
}

func TestDecodeRejectsTamperedToken(t *testing.T) {
	tk := NewJWTTokenizer(testKey, "chaincampus", time.Hour, 24*time.Hour)
	other := NewJWTTokenizer([]byte("another-key-another-key-another-key-another-key!"), "chaincampus", time.Hour, 24*time.Hour)

	token, err := other.Encode(core.Identity{ID: "user-1"})
	require.NoError(t, err)

	_, err = tk.Decode(token, false)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestDecodeExpiryWindows(t *testing.T) {
	// Token already past its stated expiry but still inside the
	// refreshable window.
	tk := NewJWTTokenizer(testKey, "chaincampus", -time.Minute, 24*time.Hour)

	token, err := tk.Encode(core.Identity{ID: "user-1"})
	require.NoError(t, err)

	_, err = tk.Decode(token, false)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)

	claims, err := tk.Decode(token, true)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestDecodePastRefreshableWindow(t *testing.T) {
	tk := NewJWTTokenizer(testKey, "chaincampus", -2*time.Hour, -time.Hour)

	token, err := tk.Encode(core.Identity{ID: "user-1"})
	require.NoError(t, err)

	_, err = tk.Decode(token, true)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestDecodeGarbage(t *testing.T) {
	tk := NewJWTTokenizer(testKey, "chaincampus", time.Hour, 24*time.Hour)

	_, err := tk.Decode("not.a.token", false)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}
