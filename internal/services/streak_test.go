package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmar/taskrelay-api/internal/database"
)

func setupStreakService(t *testing.T) (*StreakService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewStreakService(db), mock
}

func TestStreakService_TaskCompleted_FirstEver(t *testing.T) {
	svc, mock := setupStreakService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"streak_count", "last_completed_at"}).
		AddRow(0, (*time.Time)(nil))
	mock.ExpectQuery(`SELECT streak_count, last_completed_at FROM users`).
		WithArgs(userID).
		WillReturnRows(rows)

	mock.ExpectExec(`UPDATE users SET streak_count`).
		WithArgs(1, now, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.TaskCompleted(ctx, userID, now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStreakService_TaskCompleted_ConsecutiveDay(t *testing.T) {
	svc, mock := setupStreakService(t)
	ctx := context.Background()
	userID := uuid.New()
	yesterday := time.Date(2026, 8, 28, 22, 0, 0, 0, time.UTC)
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"streak_count", "last_completed_at"}).
		AddRow(4, &yesterday)
	mock.ExpectQuery(`SELECT streak_count, last_completed_at FROM users`).
		WithArgs(userID).
		WillReturnRows(rows)

	mock.ExpectExec(`UPDATE users SET streak_count`).
		WithArgs(5, now, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.TaskCompleted(ctx, userID, now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStreakService_TaskCompleted_SameDayUnchanged(t *testing.T) {
	svc, mock := setupStreakService(t)
	ctx := context.Background()
	userID := uuid.New()
	earlier := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	now := time.Date(2026, 8, 29, 18, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"streak_count", "last_completed_at"}).
		AddRow(4, &earlier)
	mock.ExpectQuery(`SELECT streak_count, last_completed_at FROM users`).
		WithArgs(userID).
		WillReturnRows(rows)

	mock.ExpectExec(`UPDATE users SET streak_count`).
		WithArgs(4, now, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.TaskCompleted(ctx, userID, now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStreakService_TaskCompleted_GapResets(t *testing.T) {
	svc, mock := setupStreakService(t)
	ctx := context.Background()
	userID := uuid.New()
	lastWeek := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"streak_count", "last_completed_at"}).
		AddRow(12, &lastWeek)
	mock.ExpectQuery(`SELECT streak_count, last_completed_at FROM users`).
		WithArgs(userID).
		WillReturnRows(rows)

	mock.ExpectExec(`UPDATE users SET streak_count`).
		WithArgs(1, now, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.TaskCompleted(ctx, userID, now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
