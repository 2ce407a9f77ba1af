package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

// TimetableRepository provides persistence for uploaded normalized tables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Create stores a new timetable version. Older versions are kept; readers
// always take the latest.
func (r *TimetableRepository) Create(ctx context.Context, t *models.Timetable) error {
	const query = `INSERT INTO timetables (id, kind, name, payload, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Kind, t.Name, t.Payload, t.CreatedAt); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// LatestByKind loads the newest stored table of the given kind.
func (r *TimetableRepository) LatestByKind(ctx context.Context, kind models.TimetableKind) (*models.Timetable, error) {
	const query = `SELECT id, kind, name, payload, created_at FROM timetables WHERE kind = $1 ORDER BY created_at DESC LIMIT 1`
	var t models.Timetable
	if err := r.db.GetContext(ctx, &t, query, kind); err != nil {
		return nil, err
	}
	return &t, nil
}
