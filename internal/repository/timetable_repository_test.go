package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-cover-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WithArgs("tt-1", models.TimetableKindClass, "week 35", []byte(`{"columns":[],"rows":[]}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Timetable{
		ID:        "tt-1",
		Kind:      models.TimetableKindClass,
		Name:      "week 35",
		Payload:   []byte(`{"columns":[],"rows":[]}`),
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryLatestByKind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	rows := sqlmock.NewRows([]string{"id", "kind", "name", "payload", "created_at"}).
		AddRow("tt-1", "class", "week 35", []byte(`{}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, name, payload, created_at FROM timetables WHERE kind = $1")).
		WithArgs(models.TimetableKindClass).
		WillReturnRows(rows)

	found, err := repo.LatestByKind(context.Background(), models.TimetableKindClass)
	require.NoError(t, err)
	require.Equal(t, "tt-1", found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryLatestByKindPassesNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, name, payload, created_at FROM timetables")).
		WithArgs(models.TimetableKindAvailability).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.LatestByKind(context.Background(), models.TimetableKindAvailability)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
