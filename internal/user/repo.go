package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hadhin/internal/model"
)

// Repository persists accounts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, name, email, COALESCE(phone, ''), password_hash, role, is_active, is_verified,
	COALESCE(verification_token, ''), COALESCE(reset_token, ''), reset_token_expires, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role,
		&u.IsActive, &u.IsVerified, &u.VerificationToken, &u.ResetToken,
		&u.ResetTokenExpires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// Insert writes a new account and fills server-assigned fields.
func (r *Repository) Insert(ctx context.Context, u *model.User) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, is_verified, verification_token)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.IsVerified, u.VerificationToken)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID returns an account by id, nil when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns an account by email, nil when absent.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByResetToken returns the account holding a reset token, nil when absent.
func (r *Repository) GetByResetToken(ctx context.Context, token string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token = $1`, token)
	return scanUser(row)
}

// UpdateProfile changes the mutable profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, name, phone string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = $2, phone = $3, updated_at = NOW() WHERE id = $1
	`, id, name, phone)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// SetResetToken stores a password reset token with its expiry.
func (r *Repository) SetResetToken(ctx context.Context, id int64, token string, expires time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET reset_token = $2, reset_token_expires = $3, updated_at = NOW() WHERE id = $1
	`, id, token, expires)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return nil
}

// SetPassword replaces the password hash and clears any reset token.
func (r *Repository) SetPassword(ctx context.Context, id int64, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2, reset_token = NULL, reset_token_expires = NULL, updated_at = NOW()
		WHERE id = $1
	`, id, hash)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}
