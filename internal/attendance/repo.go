package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hadhin/internal/model"
)

// Repository persists attendance events in Postgres. The table is
// append-only: no update or delete paths exist.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const eventColumns = `id, child_id, staff_id, status, timestamp, COALESCE(notes, '')`

func scanEvent(row interface{ Scan(...any) error }) (*model.AttendanceEvent, error) {
	var e model.AttendanceEvent
	err := row.Scan(&e.ID, &e.ChildID, &e.StaffID, &e.Status, &e.Timestamp, &e.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan attendance event: %w", err)
	}
	return &e, nil
}

// Insert appends a new event with a server-assigned timestamp.
func (r *Repository) Insert(ctx context.Context, e *model.AttendanceEvent) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_events (child_id, staff_id, status, notes)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, timestamp
	`, e.ChildID, e.StaffID, e.Status, e.Notes)
	if err := row.Scan(&e.ID, &e.Timestamp); err != nil {
		return fmt.Errorf("insert attendance event: %w", err)
	}
	return nil
}

// LastInRange returns the chronologically last event for a child within
// [from, to), ties broken by id. Nil when there is none.
func (r *Repository) LastInRange(ctx context.Context, childID int64, from, to time.Time) (*model.AttendanceEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+` FROM attendance_events
		WHERE child_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`, childID, from, to)
	return scanEvent(row)
}

// ListInRange returns a child's events within [from, to) in chronological
// order.
func (r *Repository) ListInRange(ctx context.Context, childID int64, from, to time.Time) ([]model.AttendanceEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM attendance_events
		WHERE child_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp ASC, id ASC
	`, childID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance events: %w", err)
	}
	defer rows.Close()
	var res []model.AttendanceEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *e)
	}
	return res, rows.Err()
}

// CountDistinctCheckIns counts distinct children with at least one check_in
// within [from, to).
func (r *Repository) CountDistinctCheckIns(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT child_id) FROM attendance_events
		WHERE status = 'check_in' AND timestamp >= $1 AND timestamp < $2
	`, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count check-ins: %w", err)
	}
	return n, nil
}
