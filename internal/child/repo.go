package child

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hadhin/internal/model"
)

// Repository persists children in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const childColumns = `id, name, birthdate, parent_id, COALESCE(qr_code, ''),
	COALESCE(photo_url, ''), is_approved, is_active, created_at, updated_at`

func scanChild(row interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	err := row.Scan(&c.ID, &c.Name, &c.Birthdate, &c.ParentID, &c.QRCode,
		&c.PhotoURL, &c.IsApproved, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan child: %w", err)
	}
	return &c, nil
}

// Insert writes a new child and assigns its scan token in one transaction.
// The token embeds the generated id, so it is set after the insert returns it.
func (r *Repository) Insert(ctx context.Context, c *model.Child, tokenFor func(id int64) string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert child: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO children (name, birthdate, parent_id, photo_url, is_approved)
		VALUES ($1, $2, $3, NULLIF($4, ''), FALSE)
		RETURNING id, created_at, updated_at
	`, c.Name, c.Birthdate, c.ParentID, c.PhotoURL)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("insert child: %w", err)
	}

	c.QRCode = tokenFor(c.ID)
	if _, err := tx.ExecContext(ctx, `UPDATE children SET qr_code = $2 WHERE id = $1`, c.ID, c.QRCode); err != nil {
		return fmt.Errorf("assign scan token: %w", err)
	}
	return tx.Commit()
}

// GetByID returns a child by id, nil when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*model.Child, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+childColumns+` FROM children WHERE id = $1`, id)
	return scanChild(row)
}

// GetScannable returns the approved, active child holding this scan token.
func (r *Repository) GetScannable(ctx context.Context, qrCode string) (*model.Child, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+childColumns+` FROM children
		WHERE qr_code = $1 AND is_approved AND is_active
	`, qrCode)
	return scanChild(row)
}

// ListByParent returns a parent's active children.
func (r *Repository) ListByParent(ctx context.Context, parentID int64) ([]model.Child, error) {
	return r.list(ctx, `SELECT `+childColumns+` FROM children WHERE parent_id = $1 AND is_active ORDER BY id`, parentID)
}

// ListScannableByParent returns a parent's approved, active children.
func (r *Repository) ListScannableByParent(ctx context.Context, parentID int64) ([]model.Child, error) {
	return r.list(ctx, `SELECT `+childColumns+` FROM children WHERE parent_id = $1 AND is_approved AND is_active ORDER BY id`, parentID)
}

// ListPending returns children awaiting approval.
func (r *Repository) ListPending(ctx context.Context) ([]model.Child, error) {
	return r.list(ctx, `SELECT `+childColumns+` FROM children WHERE NOT is_approved AND is_active ORDER BY id`)
}

// ListActive returns all active children.
func (r *Repository) ListActive(ctx context.Context) ([]model.Child, error) {
	return r.list(ctx, `SELECT `+childColumns+` FROM children WHERE is_active ORDER BY id`)
}

// ListRoster returns all approved, active children.
func (r *Repository) ListRoster(ctx context.Context) ([]model.Child, error) {
	return r.list(ctx, `SELECT `+childColumns+` FROM children WHERE is_approved AND is_active ORDER BY id`)
}

// CountRoster counts approved, active children.
func (r *Repository) CountRoster(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM children WHERE is_approved AND is_active`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count roster: %w", err)
	}
	return n, nil
}

// SetApproved marks a child approved.
func (r *Repository) SetApproved(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE children SET is_approved = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("approve child: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a child. Attendance history is kept.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE children SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate child: %w", err)
	}
	return nil
}

// Update changes the mutable child fields.
func (r *Repository) Update(ctx context.Context, id int64, name string, birthdate *time.Time, photoURL string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE children
		SET name = $2, birthdate = COALESCE($3, birthdate), photo_url = COALESCE(NULLIF($4, ''), photo_url), updated_at = NOW()
		WHERE id = $1
	`, id, name, birthdate, photoURL)
	if err != nil {
		return fmt.Errorf("update child: %w", err)
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]model.Child, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()
	var res []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	return res, rows.Err()
}
