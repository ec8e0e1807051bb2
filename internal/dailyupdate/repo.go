package dailyupdate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hadhin/internal/model"
)

// Entry is a daily update joined with its author's name.
type Entry struct {
	model.DailyUpdate
	StaffName string `json:"staff_name"`
	ChildName string `json:"child_name,omitempty"`
}

// Repository persists daily updates in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new update and fills server-assigned fields.
func (r *Repository) Insert(ctx context.Context, u *model.DailyUpdate) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO daily_updates (child_id, staff_id, note, photo_url, video_url, activity_type)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id, created_at
	`, u.ChildID, u.StaffID, u.Note, u.PhotoURL, u.VideoURL, u.ActivityType)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return fmt.Errorf("insert daily update: %w", err)
	}
	return nil
}

// GetByID returns an update by id, nil when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*model.DailyUpdate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, child_id, staff_id, COALESCE(note, ''), COALESCE(photo_url, ''),
			COALESCE(video_url, ''), COALESCE(activity_type, ''), created_at
		FROM daily_updates WHERE id = $1
	`, id)
	var u model.DailyUpdate
	err := row.Scan(&u.ID, &u.ChildID, &u.StaffID, &u.Note, &u.PhotoURL, &u.VideoURL, &u.ActivityType, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get daily update: %w", err)
	}
	return &u, nil
}

// ListForChild returns a child's updates within [from, to), newest first,
// optionally filtered by activity type.
func (r *Repository) ListForChild(ctx context.Context, childID int64, from, to time.Time, activityType string) ([]Entry, error) {
	return r.list(ctx, `
		SELECT u.id, u.child_id, u.staff_id, COALESCE(u.note, ''), COALESCE(u.photo_url, ''),
			COALESCE(u.video_url, ''), COALESCE(u.activity_type, ''), u.created_at, s.name, ''
		FROM daily_updates u
		JOIN users s ON s.id = u.staff_id
		WHERE u.child_id = $1 AND u.created_at >= $2 AND u.created_at < $3
			AND ($4 = '' OR u.activity_type = $4)
		ORDER BY u.created_at DESC, u.id DESC
	`, childID, from, to, activityType)
}

// ListAll returns every update within [from, to), newest first, with child
// and author names attached.
func (r *Repository) ListAll(ctx context.Context, from, to time.Time) ([]Entry, error) {
	return r.list(ctx, `
		SELECT u.id, u.child_id, u.staff_id, COALESCE(u.note, ''), COALESCE(u.photo_url, ''),
			COALESCE(u.video_url, ''), COALESCE(u.activity_type, ''), u.created_at, s.name, c.name
		FROM daily_updates u
		JOIN users s ON s.id = u.staff_id
		JOIN children c ON c.id = u.child_id
		WHERE u.created_at >= $1 AND u.created_at < $2
		ORDER BY u.created_at DESC, u.id DESC
	`, from, to)
}

// Update changes the mutable fields; nil pointers keep stored values.
func (r *Repository) Update(ctx context.Context, id int64, note, photoURL, videoURL, activityType *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE daily_updates
		SET note = COALESCE($2, note),
			photo_url = COALESCE($3, photo_url),
			video_url = COALESCE($4, video_url),
			activity_type = COALESCE($5, activity_type)
		WHERE id = $1
	`, id, note, photoURL, videoURL, activityType)
	if err != nil {
		return fmt.Errorf("update daily update: %w", err)
	}
	return nil
}

// Delete removes an update.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM daily_updates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete daily update: %w", err)
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list daily updates: %w", err)
	}
	defer rows.Close()
	var res []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.ChildID, &e.StaffID, &e.Note, &e.PhotoURL,
			&e.VideoURL, &e.ActivityType, &e.CreatedAt, &e.StaffName, &e.ChildName)
		if err != nil {
			return nil, fmt.Errorf("scan daily update: %w", err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
