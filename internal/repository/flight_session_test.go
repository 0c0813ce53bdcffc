package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *FlightSessionRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewFlightSessionRepository(db, zap.NewNop())
	return db, mock, repo
}

func TestEnsureSchema(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS bms_flight_sessions`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStart_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	startedAt := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO bms_flight_sessions`).
		WithArgs("session-1", startedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Start(context.Background(), "session-1", startedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStart_DBError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO bms_flight_sessions`).
		WillReturnError(sql.ErrConnDone)

	err := repo.Start(context.Background(), "session-1", time.Now())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestMarkReady(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	readyAt := time.Now()
	mock.ExpectExec(`UPDATE bms_flight_sessions\s+SET ready_at`).
		WithArgs("session-1", readyAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkReady(context.Background(), "session-1", readyAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinish_WritesStats(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	endedAt := time.Now()
	mock.ExpectExec(`UPDATE bms_flight_sessions\s+SET ended_at`).
		WithArgs("session-1", endedAt, int64(1200), int64(35), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stats := models.SessionStats{TicksActive: 1200, TicksSuppressed: 35, SendErrors: 2}
	require.NoError(t, repo.Finish(context.Background(), "session-1", endedAt, stats))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinish_MissingRowIsNotAnError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE bms_flight_sessions`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Finish(context.Background(), "gone", time.Now(), models.SessionStats{}))
}

func TestGet_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	startedAt := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	readyAt := startedAt.Add(30 * time.Second)

	rows := sqlmock.NewRows([]string{
		"session_id", "started_at", "ready_at", "ended_at",
		"ticks_active", "ticks_suppressed", "send_errors",
	}).AddRow("session-1", startedAt, readyAt, nil, int64(10), int64(5), int64(0))

	mock.ExpectQuery(`SELECT session_id`).
		WithArgs("session-1").
		WillReturnRows(rows)

	s, err := repo.Get(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", s.SessionID)
	assert.Equal(t, startedAt, s.StartedAt)
	require.NotNil(t, s.ReadyAt)
	assert.Equal(t, readyAt, *s.ReadyAt)
	assert.Nil(t, s.EndedAt)
	assert.Equal(t, uint64(15), s.Stats.Ticks())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT session_id`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}))

	_, err := repo.Get(context.Background(), "missing")
	assert.Error(t, err)
}
