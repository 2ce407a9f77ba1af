package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

// CoverageRunRepository persists coverage runs and their need records.
type CoverageRunRepository struct {
	db *sqlx.DB
}

// NewCoverageRunRepository creates a new coverage run repository.
func NewCoverageRunRepository(db *sqlx.DB) *CoverageRunRepository {
	return &CoverageRunRepository{db: db}
}

// CreateWithNeeds stores a run and its needs in one transaction so a run is
// never visible without its decisions.
func (r *CoverageRunRepository) CreateWithNeeds(ctx context.Context, run *models.CoverageRun, needs []models.CoverageNeedRecord) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin coverage run tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const runQuery = `INSERT INTO coverage_runs (id, day, total_needs, resolved, auto_covered, unresolved, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err = tx.ExecContext(ctx, runQuery, run.ID, run.Day, run.TotalNeeds, run.Resolved, run.AutoCovered, run.Unresolved, run.CreatedAt); err != nil {
		return fmt.Errorf("insert coverage run: %w", err)
	}

	const needQuery = `INSERT INTO coverage_needs (id, run_id, position, hour, room, missing_teacher, substitute, note, status) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, need := range needs {
		if _, err = tx.ExecContext(ctx, needQuery, need.ID, need.RunID, need.Position, need.Hour, need.Room, need.MissingTeacher, need.Substitute, need.Note, need.Status); err != nil {
			return fmt.Errorf("insert coverage need: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit coverage run: %w", err)
	}
	return nil
}

// FindByID loads a run by id.
func (r *CoverageRunRepository) FindByID(ctx context.Context, id string) (*models.CoverageRun, error) {
	const query = `SELECT id, day, total_needs, resolved, auto_covered, unresolved, created_at FROM coverage_runs WHERE id = $1`
	var run models.CoverageRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListNeeds returns a run's needs in extraction order.
func (r *CoverageRunRepository) ListNeeds(ctx context.Context, runID string) ([]models.CoverageNeedRecord, error) {
	const query = `SELECT id, run_id, position, hour, room, missing_teacher, substitute, note, status FROM coverage_needs WHERE run_id = $1 ORDER BY position ASC`
	var needs []models.CoverageNeedRecord
	if err := r.db.SelectContext(ctx, &needs, query, runID); err != nil {
		return nil, fmt.Errorf("list coverage needs: %w", err)
	}
	return needs, nil
}

// List returns runs with optional day filtering and pagination, newest first.
func (r *CoverageRunRepository) List(ctx context.Context, filter models.CoverageRunFilter) ([]models.CoverageRun, int, error) {
	base := "FROM coverage_runs WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, day, total_needs, resolved, auto_covered, unresolved, created_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", base, size, offset)
	var runs []models.CoverageRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list coverage runs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count coverage runs: %w", err)
	}

	return runs, total, nil
}
