package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/velmar/taskrelay-api/internal/database"
	"github.com/velmar/taskrelay-api/internal/streak"
)

// StreakService applies the streak rules to a user's record. It is wired to
// the task handler as a completion hook and runs once per completion
// transition, after the task write has been acknowledged.
type StreakService struct {
	db *database.DB
}

func NewStreakService(db *database.DB) *StreakService {
	return &StreakService{db: db}
}

func (s *StreakService) TaskCompleted(ctx context.Context, userID uuid.UUID, now time.Time) error {
	var count int
	var last *time.Time
	err := s.db.Pool.QueryRow(ctx, `
		SELECT streak_count, last_completed_at FROM users WHERE id = $1
	`, userID).Scan(&count, &last)
	if err != nil {
		return fmt.Errorf("failed to load streak: %w", err)
	}

	newCount, newLast := streak.Evaluate(count, last, now)

	_, err = s.db.Pool.Exec(ctx, `
		UPDATE users SET streak_count = $1, last_completed_at = $2, updated_at = NOW()
		WHERE id = $3
	`, newCount, newLast, userID)
	if err != nil {
		return fmt.Errorf("failed to persist streak: %w", err)
	}
	return nil
}
