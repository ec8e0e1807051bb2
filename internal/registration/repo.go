package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hadhin/internal/model"
)

// Repository persists enrollment registrations in Postgres. The intake used
// to live in a JSON file; it is a proper table here with jsonb columns for
// the attachment list and review notes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const regColumns = `id, registration_number, status, child_name, COALESCE(birth_date, ''),
	COALESCE(gender, ''), COALESCE(nationality, ''), COALESCE(birth_place, ''), parent_name,
	COALESCE(relationship, ''), COALESCE(phone, ''), COALESCE(emergency_phone, ''),
	COALESCE(email, ''), COALESCE(address, ''), files, review_notes, submitted_at, updated_at`

func scanRegistration(row interface{ Scan(...any) error }) (*model.Registration, error) {
	var reg model.Registration
	var files, notes []byte
	err := row.Scan(&reg.ID, &reg.RegistrationNumber, &reg.Status, &reg.ChildName, &reg.BirthDate,
		&reg.Gender, &reg.Nationality, &reg.BirthPlace, &reg.ParentName,
		&reg.Relationship, &reg.Phone, &reg.EmergencyPhone,
		&reg.Email, &reg.Address, &files, &notes, &reg.SubmittedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	if err := json.Unmarshal(files, &reg.Files); err != nil {
		return nil, fmt.Errorf("decode registration files: %w", err)
	}
	if err := json.Unmarshal(notes, &reg.ReviewNotes); err != nil {
		return nil, fmt.Errorf("decode review notes: %w", err)
	}
	return &reg, nil
}

// Insert writes a new registration and fills server-assigned fields.
func (r *Repository) Insert(ctx context.Context, reg *model.Registration) error {
	files, err := reg.FilesJSON()
	if err != nil {
		return fmt.Errorf("encode registration files: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO registrations (registration_number, status, child_name, birth_date, gender,
			nationality, birth_place, parent_name, relationship, phone, emergency_phone,
			email, address, files)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
			NULLIF($7, ''), $8, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''),
			NULLIF($12, ''), NULLIF($13, ''), $14)
		RETURNING id, submitted_at, updated_at
	`, reg.RegistrationNumber, reg.Status, reg.ChildName, reg.BirthDate, reg.Gender,
		reg.Nationality, reg.BirthPlace, reg.ParentName, reg.Relationship, reg.Phone,
		reg.EmergencyPhone, reg.Email, reg.Address, files)
	if err := row.Scan(&reg.ID, &reg.SubmittedAt, &reg.UpdatedAt); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// GetByNumber returns a registration by its public number, nil when absent.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*model.Registration, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+regColumns+` FROM registrations WHERE registration_number = $1`, number)
	return scanRegistration(row)
}

// List returns all registrations, newest submission first.
func (r *Repository) List(ctx context.Context) ([]model.Registration, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+regColumns+` FROM registrations ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()
	var res []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *reg)
	}
	return res, rows.Err()
}

// SetStatus updates a registration's status and review notes.
func (r *Repository) SetStatus(ctx context.Context, number, status string, notes []model.ReviewNote) error {
	encoded, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encode review notes: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE registrations
		SET status = $2, review_notes = $3, updated_at = NOW()
		WHERE registration_number = $1
	`, number, status, encoded)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: registration not found", model.ErrNotFound)
	}
	return nil
}
