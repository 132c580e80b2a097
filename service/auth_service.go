package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chaincampus/warden/core"
	"github.com/chaincampus/warden/internal/eth"
	"github.com/chaincampus/warden/ports"
)

// minInvalidationTTL keeps a revocation entry alive even when the stated
// expiry has already passed, so slightly skewed clocks cannot resurrect a
// revoked credential.
const minInvalidationTTL = time.Hour

// LoginRequest carries the credentials for one of the three login variants.
// Which fields matter depends on LoginMethod.
type LoginRequest struct {
	LoginMethod string
	Username    string
	Password    string
	Address     string
	Signature   string
	Key         string
	Nonce       string
	Email       string
}

// AuthService authenticates users and manages session credentials.
type AuthService struct {
	identities ports.IdentityRepository
	nonces     *NonceService
	tokenizer  ports.Tokenizer
	denylist   ports.DenylistStore
	events     ports.EventPublisher
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	identities ports.IdentityRepository,
	nonces *NonceService,
	tokenizer ports.Tokenizer,
	denylist ports.DenylistStore,
	events ports.EventPublisher,
) *AuthService {
	return &AuthService{
		identities: identities,
		nonces:     nonces,
		tokenizer:  tokenizer,
		denylist:   denylist,
		events:     events,
	}
}

// Authenticate dispatches to the login variant named by the request's method
// tag and mints a session credential for the resolved identity.
func (s *AuthService) Authenticate(ctx context.Context, req LoginRequest) (string, error) {
	switch req.LoginMethod {
	case "":
		return "", core.ErrLoginMethodRequired
	case core.LoginMethodPassword:
		return s.authenticatePassword(ctx, req)
	case core.LoginMethodWallet:
		return s.authenticateWallet(ctx, req)
	case core.LoginMethodGoogle:
		return s.AuthenticateFederated(ctx, req.Email)
	default:
		return "", core.ErrLoginMethodUnsupported
	}
}

func (s *AuthService) authenticatePassword(ctx context.Context, req LoginRequest) (string, error) {
	if req.Username == "" || req.Password == "" {
		return "", core.ErrMissingCredentials
	}

	identity, err := s.identities.FindByUsername(ctx, req.Username)
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(req.Password)) != nil {
		return "", core.ErrUnauthenticated
	}

	return s.tokenizer.Encode(identity)
}

func (s *AuthService) authenticateWallet(ctx context.Context, req LoginRequest) (string, error) {
	if req.Address == "" || req.Signature == "" || req.Key == "" || req.Nonce == "" {
		return "", core.ErrMissingCredentials
	}

	nonce, err := s.nonces.Lookup(ctx, req.Nonce)
	if err != nil {
		return "", err
	}

	result, err := eth.VerifySignature(nonce.Value, req.Signature, req.Key)
	if err != nil {
		return "", core.ErrInvalidKey
	}
	if !result.Valid ||
		!strings.EqualFold(result.Address, nonce.Address) ||
		!strings.EqualFold(req.Address, nonce.Address) {
		return "", core.ErrWalletPermissionDenied
	}

	if err := s.nonces.Consume(ctx, nonce.Value); err != nil {
		return "", fmt.Errorf("failed to consume nonce: %w", err)
	}

	identity, err := s.identities.FindByWalletAddress(ctx, req.Address)
	if errors.Is(err, core.ErrUserNotFound) {
		identity, err = s.createWalletIdentity(ctx, req.Address)
	}
	if err != nil {
		return "", err
	}

	return s.tokenizer.Encode(identity)
}

// AuthenticateFederated resolves an identity for an email already verified
// by the external identity provider and mints a session credential for it.
func (s *AuthService) AuthenticateFederated(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", core.ErrUnauthenticated
	}

	identity, err := s.identities.FindByEmail(ctx, email)
	if errors.Is(err, core.ErrUserNotFound) {
		identity, err = s.createFederatedIdentity(ctx, email)
	}
	if err != nil {
		return "", err
	}

	return s.tokenizer.Encode(identity)
}

// createWalletIdentity provisions an account for a wallet seen for the first
// time. The password placeholder is a hashed random value so the password
// login path can never match it; email stays cleared.
func (s *AuthService) createWalletIdentity(ctx context.Context, address string) (core.Identity, error) {
	return s.identities.Create(ctx, core.Identity{
		ID:            uuid.New().String(),
		Username:      address,
		PasswordHash:  placeholderHash(),
		WalletAddress: address,
		LoginMethod:   core.LoginMethodWallet,
		Role:          core.RoleUser,
	})
}

func (s *AuthService) createFederatedIdentity(ctx context.Context, email string) (core.Identity, error) {
	return s.identities.Create(ctx, core.Identity{
		ID:           uuid.New().String(),
		Username:     email,
		PasswordHash: placeholderHash(),
		Email:        email,
		LoginMethod:  core.LoginMethodGoogle,
		Role:         core.RoleUser,
	})
}

// verifyToken checks the credential's signature, its effective validity
// window, and the denylist.
func (s *AuthService) verifyToken(ctx context.Context, token string, refresh bool) (ports.Claims, error) {
	claims, err := s.tokenizer.Decode(token, refresh)
	if err != nil {
		return ports.Claims{}, err
	}

	revoked, err := s.denylist.IsTokenInvalidated(ctx, claims.ID)
	if err != nil {
		return ports.Claims{}, fmt.Errorf("failed to check token invalidation: %w", err)
	}
	if revoked {
		return ports.Claims{}, core.ErrUnauthenticated
	}
	return claims, nil
}

// ValidateToken verifies a credential under the normal validity window and
// returns its claims. Used by the auth middleware.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (ports.Claims, error) {
	return s.verifyToken(ctx, token, false)
}

// Introspect reports whether the credential currently verifies; every
// failure mode collapses into false.
func (s *AuthService) Introspect(ctx context.Context, token string) bool {
	_, err := s.verifyToken(ctx, token, false)
	return err == nil
}

// invalidate puts the credential id on the denylist until the stated expiry
// has safely passed. Re-inserting an already revoked id is harmless.
func (s *AuthService) invalidate(ctx context.Context, claims ports.Claims) error {
	ttl := time.Until(claims.ExpiresAt)
	if ttl < minInvalidationTTL {
		ttl = minInvalidationTTL
	}
	if err := s.denylist.InvalidateToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

// Logout revokes a credential. An already expired or otherwise invalid
// credential is not an error: the session is gone either way, so the result
// just says nothing was revoked.
func (s *AuthService) Logout(ctx context.Context, token string) (bool, error) {
	claims, err := s.verifyToken(ctx, token, true)
	if errors.Is(err, core.ErrUnauthenticated) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.invalidate(ctx, claims); err != nil {
		return false, err
	}

	if s.events != nil {
		if err := s.events.PublishLogout(ctx, claims.Subject, claims.ID); err != nil {
			// The denylist entry is the part that matters; event delivery is
			// best-effort.
			log.Printf("failed to publish logout event: %v", err)
		}
	}
	return true, nil
}

// Refresh rotates a credential: the old one is verified under the refresh
// window, revoked, and replaced by a fresh credential for the same subject.
func (s *AuthService) Refresh(ctx context.Context, token string) (string, error) {
	claims, err := s.verifyToken(ctx, token, true)
	if err != nil {
		return "", err
	}

	if err := s.invalidate(ctx, claims); err != nil {
		return "", err
	}

	identity, err := s.identities.FindByID(ctx, claims.Subject)
	if errors.Is(err, core.ErrUserNotFound) {
		return "", core.ErrUnauthenticated
	}
	if err != nil {
		return "", err
	}

	return s.tokenizer.Encode(identity)
}
