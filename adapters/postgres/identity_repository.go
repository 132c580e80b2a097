package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaincampus/warden/core"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// IdentityRepository is the PostgreSQL implementation of the identity
// persistence contract.
type IdentityRepository struct {
	db *pgxpool.Pool
}

// NewIdentityRepository creates a new identity repository.
func NewIdentityRepository(db *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{db: db}
}

const identityColumns = `id, username, password_hash, COALESCE(email, ''), COALESCE(wallet_address, ''), login_method, role, created_at`

func (r *IdentityRepository) findBy(ctx context.Context, where string, arg any) (core.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM identities WHERE %s`, identityColumns, where)

	var identity core.Identity
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Username,
		&identity.PasswordHash,
		&identity.Email,
		&identity.WalletAddress,
		&identity.LoginMethod,
		&identity.Role,
		&identity.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Identity{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.Identity{}, fmt.Errorf("query identity: %w", err)
	}
	return identity, nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (core.Identity, error) {
	return r.findBy(ctx, "id = $1", id)
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (core.Identity, error) {
	return r.findBy(ctx, "username = $1", username)
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (core.Identity, error) {
	return r.findBy(ctx, "email = $1", email)
}

func (r *IdentityRepository) FindByWalletAddress(ctx context.Context, address string) (core.Identity, error) {
	return r.findBy(ctx, "wallet_address = $1", address)
}

// Create inserts a new identity. Empty email and wallet address are stored
// as NULL so the partial unique indexes on them do not collide on ''.
func (r *IdentityRepository) Create(ctx context.Context, identity core.Identity) (core.Identity, error) {
	query := `
        INSERT INTO identities (id, username, password_hash, email, wallet_address, login_method, role)
        VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query,
		identity.ID,
		identity.Username,
		identity.PasswordHash,
		identity.Email,
		identity.WalletAddress,
		identity.LoginMethod,
		identity.Role,
	).Scan(&identity.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return core.Identity{}, core.ErrUserExisted
	}
	if err != nil {
		return core.Identity{}, fmt.Errorf("insert identity: %w", err)
	}
	return identity, nil
}

// Update rewrites the mutable identity fields.
func (r *IdentityRepository) Update(ctx context.Context, identity core.Identity) (core.Identity, error) {
	query := `
        UPDATE identities
        SET username = $2, password_hash = $3, email = NULLIF($4, ''),
            wallet_address = NULLIF($5, ''), role = $6
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query,
		identity.ID,
		identity.Username,
		identity.PasswordHash,
		identity.Email,
		identity.WalletAddress,
		identity.Role,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return core.Identity{}, core.ErrUserExisted
	}
	if err != nil {
		return core.Identity{}, fmt.Errorf("update identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.Identity{}, core.ErrUserNotFound
	}
	return identity, nil
}

func (r *IdentityRepository) List(ctx context.Context) ([]core.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM identities ORDER BY created_at`, identityColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []core.Identity
	for rows.Next() {
		var identity core.Identity
		if err := rows.Scan(
			&identity.ID,
			&identity.Username,
			&identity.PasswordHash,
			&identity.Email,
			&identity.WalletAddress,
			&identity.LoginMethod,
			&identity.Role,
			&identity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

func (r *IdentityRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}
