package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SIGNER_KEY", "test-signing-key")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "chaincampus", cfg.TokenIssuer)
	assert.Equal(t, time.Hour, cfg.TokenValidDuration)
	assert.Equal(t, 336*time.Hour, cfg.TokenRefreshableDuration)
	assert.Equal(t, "lovelace", cfg.PaymentBaseUnit)
}

func TestLoadRequiresSignerKey(t *testing.T) {
	t.Setenv("SIGNER_KEY", "")

	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestLoadRejectsInvertedWindows(t *testing.T) {
	t.Setenv("SIGNER_KEY", "test-signing-key")
	t.Setenv("TOKEN_VALID_DURATION", "2h")
	t.Setenv("TOKEN_REFRESHABLE_DURATION", "1h")

	_, err := Load(t.TempDir())
	require.Error(t, err)
}
