package service

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/chaincampus/warden/adapters/store"
	"github.com/chaincampus/warden/adapters/tokenizer"
	"github.com/chaincampus/warden/core"
	"github.com/chaincampus/warden/internal/eth"
)

type authFixture struct {
	auth       *AuthService
	identities *store.MemoryIdentityRepository
	nonces     *NonceService
	tokenizer  *tokenizer.JWTTokenizer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	identities := store.NewMemoryIdentityRepository()
	stores := store.NewMemoryStore()
	nonces := NewNonceService(stores)
	tk := tokenizer.NewJWTTokenizer(
		[]byte("test-signer-key-test-signer-key-test-signer-key!"),
		"chaincampus", time.Hour, 24*time.Hour,
	)
	return &authFixture{
		auth:       NewAuthService(identities, nonces, tk, stores, nil),
		identities: identities,
		nonces:     nonces,
		tokenizer:  tk,
	}
}

func (f *authFixture) addPasswordUser(t *testing.T, username, password string) core.Identity {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	identity, err := f.identities.Create(context.Background(), core.Identity{
		ID:           username + "-id",
		Username:     username,
		PasswordHash: string(hash),
		LoginMethod:  core.LoginMethodPassword,
		Role:         core.RoleUser,
	})
	require.NoError(t, err)
	return identity
}

func TestAuthenticatePassword(t *testing.T) {
	f := newAuthFixture(t)
	f.addPasswordUser(t, "alice", "s3cret-pass")
	ctx := context.Background()

	token, err := f.auth.Authenticate(ctx, LoginRequest{
		LoginMethod: core.LoginMethodPassword,
		Username:    "alice",
		Password:    "s3cret-pass",
	})
	require.NoError(t, err)
	assert.True(t, f.auth.Introspect(ctx, token))

	claims, err := f.tokenizer.Decode(token, false)
	require.NoError(t, err)
	assert.Equal(t, "alice-id", claims.Subject)
	assert.Equal(t, "ROLE_USER", claims.Scope)
}

func TestAuthenticatePasswordFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.addPasswordUser(t, "alice", "s3cret-pass")
	ctx := context.Background()

	tests := []struct {
		name string
		req  LoginRequest
		want error
	}{
		{"missing method", LoginRequest{}, core.ErrLoginMethodRequired},
		{"unknown method", LoginRequest{LoginMethod: "CARRIER_PIGEON"}, core.ErrLoginMethodUnsupported},
		{"missing password", LoginRequest{LoginMethod: core.LoginMethodPassword, Username: "alice"}, core.ErrMissingCredentials},
		{"unknown user", LoginRequest{LoginMethod: core.LoginMethodPassword, Username: "bob", Password: "x"}, core.ErrUserNotFound},
		{"wrong password", LoginRequest{LoginMethod: core.LoginMethodPassword, Username: "alice", Password: "wrong"}, core.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Authenticate(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthenticateWalletCreatesIdentity(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	nonce, err := f.nonces.Issue(ctx, address)
	require.NoError(t, err)

	sig, pub, err := eth.Sign(nonce.Value, key)
	require.NoError(t, err)

	token, err := f.auth.Authenticate(ctx, LoginRequest{
		LoginMethod: core.LoginMethodWallet,
		Address:     address,
		Signature:   sig,
		Key:         pub,
		Nonce:       nonce.Value,
	})
	require.NoError(t, err)
	assert.True(t, f.auth.Introspect(ctx, token))

	identity, err := f.identities.FindByWalletAddress(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, address, identity.Username)
	assert.Empty(t, identity.Email)
	assert.Equal(t, core.LoginMethodWallet, identity.LoginMethod)

	// Nonces are single-use: the same login cannot be replayed.
	_, err = f.auth.Authenticate(ctx, LoginRequest{
		LoginMethod: core.LoginMethodWallet,
		Address:     address,
		Signature:   sig,
		Key:         pub,
		Nonce:       nonce.Value,
	})
	assert.ErrorIs(t, err, core.ErrNonceNotFound)
}

func TestAuthenticateWalletFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	nonce, err := f.nonces.Issue(ctx, address)
	require.NoError(t, err)
	sig, pub, err := eth.Sign(nonce.Value, key)
	require.NoError(t, err)

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.auth.Authenticate(ctx, LoginRequest{
			LoginMethod: core.LoginMethodWallet,
			Address:     address,
			Signature:   sig,
		})
		assert.ErrorIs(t, err, core.ErrMissingCredentials)
	})

	t.Run("nonce never issued", func(t *testing.T) {
		_, err := f.auth.Authenticate(ctx, LoginRequest{
			LoginMethod: core.LoginMethodWallet,
			Address:     address,
			Signature:   sig,
			Key:         pub,
			Nonce:       "never-issued",
		})
		assert.ErrorIs(t, err, core.ErrNonceNotFound)
	})

	t.Run("malformed key", func(t *testing.T) {
		_, err := f.auth.Authenticate(ctx, LoginRequest{
			LoginMethod: core.LoginMethodWallet,
			Address:     address,
			Signature:   sig,
			Key:         "0xdeadbeef",
			Nonce:       nonce.Value,
		})
		assert.ErrorIs(t, err, core.ErrInvalidKey)
	})

	t.Run("signature by another wallet", func(t *testing.T) {
		otherKey, err := crypto.GenerateKey()
		require.NoError(t, err)
		otherSig, otherPub, err := eth.Sign(nonce.Value, otherKey)
		require.NoError(t, err)

		_, err = f.auth.Authenticate(ctx, LoginRequest{
			LoginMethod: core.LoginMethodWallet,
			Address:     address,
			Signature:   otherSig,
			Key:         otherPub,
			Nonce:       nonce.Value,
		})
		assert.ErrorIs(t, err, core.ErrWalletPermissionDenied)
	})
}

func TestAuthenticateFederated(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	token, err := f.auth.AuthenticateFederated(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.True(t, f.auth.Introspect(ctx, token))

	identity, err := f.identities.FindByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", identity.Username)
	assert.Empty(t, identity.WalletAddress)

	// Second federated login resolves the same identity.
	again, err := f.auth.AuthenticateFederated(ctx, "carol@example.com")
	require.NoError(t, err)
	claims1, err := f.tokenizer.Decode(token, false)
	require.NoError(t, err)
	claims2, err := f.tokenizer.Decode(again, false)
	require.NoError(t, err)
	assert.Equal(t, claims1.Subject, claims2.Subject)

	// The federated variant is also reachable through the login dispatch.
	viaLogin, err := f.auth.Authenticate(ctx, LoginRequest{
		LoginMethod: core.LoginMethodGoogle,
		Email:       "carol@example.com",
	})
	require.NoError(t, err)
	claims3, err := f.tokenizer.Decode(viaLogin, false)
	require.NoError(t, err)
	assert.Equal(t, claims1.Subject, claims3.Subject)
}

func TestLogoutRevokesBeforeExpiry(t *testing.T) {
	f := newAuthFixture(t)
	f.addPasswordUser(t, "alice", "s3cret-pass")
	ctx := context.Background()

	token, err := f.auth.Authenticate(ctx, LoginRequest{
		LoginMethod: core.LoginMethodPassword,
		Username:    "alice",
		Password:    "s3cret-pass",
	})
	require.NoError(t, err)
	require.True(t, f.auth.Introspect(ctx, token))

	ok, err := f.auth.Logout(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, f.auth.Introspect(ctx, token))

	// Logging out an already revoked credential is swallowed.
	ok, err = f.auth.Logout(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogoutInvalidToken(t *testing.T) {
	f := newAuthFixture(t)

	ok, err := f.auth.Logout(context.Background(), "garbage")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshRotatesCredential(t *testing.T) {
	f := newAuthFixture(t)
	f.addPasswordUser(t, "alice", "s3cret-pass")
	ctx := context.Background()

	token, err := f.auth.Authenticate(ctx, LoginRequest{
		LoginMethod: core.LoginMethodPassword,
		Username:    "alice",
		Password:    "s3cret-pass",
	})
	require.NoError(t, err)

	newToken, err := f.auth.Refresh(ctx, token)
	require.NoError(t, err)

	oldClaims, err := f.tokenizer.Decode(token, false)
	require.NoError(t, err)
	newClaims, err := f.tokenizer.Decode(newToken, false)
	require.NoError(t, err)
	assert.NotEqual(t, oldClaims.ID, newClaims.ID)
	assert.Equal(t, oldClaims.Subject, newClaims.Subject)

	assert.False(t, f.auth.Introspect(ctx, token))
	assert.True(t, f.auth.Introspect(ctx, newToken))

	// The revoked credential cannot be refreshed again.
	_, err = f.auth.Refresh(ctx, token)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}
