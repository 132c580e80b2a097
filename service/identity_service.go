package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chaincampus/warden/core"
	"github.com/chaincampus/warden/ports"
)

// RegistrationRequest carries the fields of an explicit sign-up. Which
// credential fields matter depends on LoginMethod.
type RegistrationRequest struct {
	LoginMethod   string
	Username      string
	Password      string
	Email         string
	WalletAddress string
}

// UpdateRequest carries a self-service profile update. Empty fields are left
// untouched.
type UpdateRequest struct {
	Password      string
	Email         string
	WalletAddress string
}

// IdentityService owns account registration, profile updates, and the
// admin-gated account operations.
type IdentityService struct {
	identities ports.IdentityRepository
}

// NewIdentityService creates a new identity service.
func NewIdentityService(identities ports.IdentityRepository) *IdentityService {
	return &IdentityService{identities: identities}
}

// Register creates an account, normalizing the credential fields so exactly
// one lookup key is authoritative for the chosen login method.
func (s *IdentityService) Register(ctx context.Context, req RegistrationRequest) (core.Identity, error) {
	identity := core.Identity{
		ID:          uuid.New().String(),
		LoginMethod: req.LoginMethod,
		Role:        core.RoleUser,
	}

	switch req.LoginMethod {
	case "":
		return core.Identity{}, core.ErrLoginMethodRequired

	case core.LoginMethodPassword:
		if req.Password == "" {
			return core.Identity{}, core.ErrPasswordRequired
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return core.Identity{}, fmt.Errorf("failed to hash password: %w", err)
		}
		identity.Username = req.Username
		identity.PasswordHash = string(hash)

	case core.LoginMethodWallet:
		if req.WalletAddress == "" {
			return core.Identity{}, core.ErrMissingCredentials
		}
		identity.Username = req.WalletAddress
		identity.WalletAddress = req.WalletAddress
		identity.PasswordHash = placeholderHash()

	case core.LoginMethodGoogle:
		if req.Email == "" {
			return core.Identity{}, core.ErrMissingCredentials
		}
		identity.Username = req.Email
		identity.Email = req.Email
		identity.PasswordHash = placeholderHash()

	default:
		return core.Identity{}, core.ErrLoginMethodUnsupported
	}

	return s.identities.Create(ctx, identity)
}

// Update applies a self-service profile change. Only the account owner may
// call it, and email/wallet moves are rejected when another account already
// owns the value.
func (s *IdentityService) Update(ctx context.Context, actorID, id string, req UpdateRequest) (core.Identity, error) {
	if actorID != id {
		return core.Identity{}, core.ErrUnauthorized
	}

	identity, err := s.identities.FindByID(ctx, id)
	if err != nil {
		return core.Identity{}, err
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return core.Identity{}, fmt.Errorf("failed to hash password: %w", err)
		}
		identity.PasswordHash = string(hash)
	}

	if req.Email != "" {
		owner, err := s.identities.FindByEmail(ctx, req.Email)
		if err == nil && owner.ID != id {
			return core.Identity{}, core.ErrEmailAlreadyUsed
		}
		if err != nil && !errors.Is(err, core.ErrUserNotFound) {
			return core.Identity{}, err
		}
		identity.Email = req.Email
	}

	if req.WalletAddress != "" {
		owner, err := s.identities.FindByWalletAddress(ctx, req.WalletAddress)
		if err == nil && owner.ID != id {
			return core.Identity{}, core.ErrWalletAlreadyUsed
		}
		if err != nil && !errors.Is(err, core.ErrUserNotFound) {
			return core.Identity{}, err
		}
		identity.WalletAddress = req.WalletAddress
	}

	return s.identities.Update(ctx, identity)
}

// Get returns one account. Requires the manage-users permission unless the
// actor asks about their own account.
func (s *IdentityService) Get(ctx context.Context, actorID, actorRole, id string) (core.Identity, error) {
	if actorID != id && !core.Allowed(actorRole, core.ActionManageUsers) {
		return core.Identity{}, core.ErrUnauthorized
	}
	return s.identities.FindByID(ctx, id)
}

// List returns all accounts. Requires the manage-users permission.
func (s *IdentityService) List(ctx context.Context, actorRole string) ([]core.Identity, error) {
	if !core.Allowed(actorRole, core.ActionManageUsers) {
		return nil, core.ErrUnauthorized
	}
	return s.identities.List(ctx)
}

// Delete removes an account. Requires the manage-users permission.
func (s *IdentityService) Delete(ctx context.Context, actorRole, id string) error {
	if !core.Allowed(actorRole, core.ActionManageUsers) {
		return core.ErrUnauthorized
	}
	return s.identities.Delete(ctx, id)
}

func placeholderHash() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt only fails on invalid cost or oversized input; neither can
		// happen with a uuid and the default cost.
		panic(err)
	}
	return string(hash)
}
