package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

func coverageRunFixture() (*models.CoverageRun, []models.CoverageNeedRecord) {
	run := &models.CoverageRun{
		ID:         "run-1",
		Day:        "Monday",
		TotalNeeds: 2,
		Resolved:   1,
		Unresolved: 1,
		CreatedAt:  time.Now(),
	}
	needs := []models.CoverageNeedRecord{
		{ID: "need-1", RunID: "run-1", Position: 1, Hour: 1, Room: "9A", MissingTeacher: "Dana", Substitute: "Dalia", Note: models.NoteExternalSubstitute, Status: models.CoverageStatusResolved},
		{ID: "need-2", RunID: "run-1", Position: 2, Hour: 2, Room: "9A", MissingTeacher: "Dana", Note: models.NoteNoSubstituteFound, Status: models.CoverageStatusUnresolved},
	}
	return run, needs
}

func TestCoverageRunRepositoryCreateWithNeeds(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCoverageRunRepository(db)
	run, needs := coverageRunFixture()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO coverage_runs")).
		WithArgs(run.ID, run.Day, run.TotalNeeds, run.Resolved, run.AutoCovered, run.Unresolved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	for _, need := range needs {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO coverage_needs")).
			WithArgs(need.ID, need.RunID, need.Position, need.Hour, need.Room, need.MissingTeacher, need.Substitute, need.Note, need.Status).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.CreateWithNeeds(context.Background(), run, needs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageRunRepositoryCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCoverageRunRepository(db)
	run, needs := coverageRunFixture()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO coverage_runs")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO coverage_needs")).
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	err := repo.CreateWithNeeds(context.Background(), run, needs)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageRunRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCoverageRunRepository(db)
	rows := sqlmock.NewRows([]string{"id", "day", "total_needs", "resolved", "auto_covered", "unresolved", "created_at"}).
		AddRow("run-1", "Monday", 2, 1, 0, 1, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day, total_needs, resolved, auto_covered, unresolved, created_at FROM coverage_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := repo.FindByID(context.Background(), "run-1")
	require.NoError(t, err)
	require.Equal(t, "Monday", run.Day)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageRunRepositoryListNeedsKeepsPositionOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCoverageRunRepository(db)
	rows := sqlmock.NewRows([]string{"id", "run_id", "position", "hour", "room", "missing_teacher", "substitute", "note", "status"}).
		AddRow("need-1", "run-1", 1, 1, "9A", "Dana", "Dalia", models.NoteExternalSubstitute, "RESOLVED").
		AddRow("need-2", "run-1", 2, 2, "9A", "Dana", "", models.NoteNoSubstituteFound, "UNRESOLVED")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, position, hour, room, missing_teacher, substitute, note, status FROM coverage_needs WHERE run_id = $1 ORDER BY position ASC")).
		WithArgs("run-1").
		WillReturnRows(rows)

	needs, err := repo.ListNeeds(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, needs, 2)
	require.Equal(t, 1, needs[0].Position)
	require.Equal(t, models.CoverageStatusUnresolved, needs[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCoverageRunRepositoryListWithDayFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCoverageRunRepository(db)
	rows := sqlmock.NewRows([]string{"id", "day", "total_needs", "resolved", "auto_covered", "unresolved", "created_at"}).
		AddRow("run-1", "Monday", 2, 1, 0, 1, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day, total_needs, resolved, auto_covered, unresolved, created_at FROM coverage_runs WHERE 1=1 AND day = $1")).
		WithArgs("Monday").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM coverage_runs WHERE 1=1 AND day = $1")).
		WithArgs("Monday").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	runs, total, err := repo.List(context.Background(), models.CoverageRunFilter{Day: "Monday", Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
