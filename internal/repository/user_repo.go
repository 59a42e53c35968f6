package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"family-memories/internal/model"
)

const userColumns = `id, provider, provider_user_id, COALESCE(email, ''),
	COALESCE(name, ''), COALESCE(picture_url, ''), COALESCE(password_hash, ''),
	created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Provider, &u.ProviderUserID, &u.Email,
		&u.Name, &u.PictureURL, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// FindEmailAccount looks up a user eligible for password login: matching
// normalized email and a stored hash.
func (r *UserRepository) FindEmailAccount(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE lower(email) = lower($1) AND password_hash IS NOT NULL`,
		strings.TrimSpace(email)))
}

// FindPasswordlessByEmail finds an OAuth-only account using the address, the
// candidate row for an email-signup upgrade.
func (r *UserRepository) FindPasswordlessByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE lower(email) = lower($1) AND password_hash IS NULL
		 ORDER BY created_at
		 LIMIT 1`,
		strings.TrimSpace(email)))
}

func (r *UserRepository) FindByProvider(ctx context.Context, provider string, providerUserID string) (model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE provider = $1 AND provider_user_id = $2`, provider, providerUserID))
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, provider, provider_user_id, email, name, picture_url, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9)`,
		u.ID, u.Provider, u.ProviderUserID, u.Email, u.Name, u.PictureURL, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpsertByProvider reconciles a repeat OAuth login: name and picture are
// refreshed from the provider, everything else is kept.
func (r *UserRepository) UpsertByProvider(ctx context.Context, u model.User) (model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users (id, provider, provider_user_id, email, name, picture_url, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8)
		 ON CONFLICT (provider, provider_user_id) DO UPDATE
		 SET name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
		     picture_url = COALESCE(NULLIF(EXCLUDED.picture_url, ''), users.picture_url),
		     updated_at = EXCLUDED.updated_at
		 RETURNING `+userColumns,
		u.ID, u.Provider, u.ProviderUserID, u.Email, u.Name, u.PictureURL, u.CreatedAt, u.UpdatedAt))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, name string, pictureURL string) (model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET name = NULLIF($2, ''), picture_url = NULLIF($3, ''), updated_at = $4
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, name, pictureURL, time.Now().UTC()))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// EmailAccountExists reports whether a password-capable account already uses
// the address.
func (r *UserRepository) EmailAccountExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users
		  WHERE lower(email) = lower($1) AND password_hash IS NOT NULL)`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}
