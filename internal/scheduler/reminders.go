package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/velmar/taskrelay-api/internal/models"
	"github.com/velmar/taskrelay-api/pkg/dto"
)

// TaskStore is the slice of the task service the scheduler needs.
type TaskStore interface {
	GetDueReminders(ctx context.Context, now time.Time) ([]models.Task, error)
	ClearReminder(ctx context.Context, taskID uuid.UUID) error
}

// Broadcaster delivers reminder events to subscribed clients.
type Broadcaster interface {
	BroadcastTaskReminder(workspaceID uuid.UUID, task dto.TaskResponse)
}

// ReminderScheduler periodically scans for due task reminders and pushes them
// to the workspace channel. A fired reminder is cleared so it never fires
// twice.
type ReminderScheduler struct {
	tasks    TaskStore
	registry Broadcaster
	cron     *cron.Cron
}

func NewReminderScheduler(tasks TaskStore, registry Broadcaster) *ReminderScheduler {
	return &ReminderScheduler{
		tasks:    tasks,
		registry: registry,
		cron:     cron.New(),
	}
}

// Start schedules the reminder sweep at the given interval and starts the
// cron runner.
func (s *ReminderScheduler) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	spec := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := s.cron.AddFunc(spec, func() {
		s.Sweep(context.Background(), time.Now())
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron runner and waits for a running sweep to finish.
func (s *ReminderScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep broadcasts all reminders due at or before now.
func (s *ReminderScheduler) Sweep(ctx context.Context, now time.Time) {
	tasks, err := s.tasks.GetDueReminders(ctx, now)
	if err != nil {
		log.Printf("reminder sweep failed: %v", err)
		return
	}

	for i := range tasks {
		task := &tasks[i]
		s.registry.BroadcastTaskReminder(task.WorkspaceID, dto.NewTaskResponse(task))
		if err := s.tasks.ClearReminder(ctx, task.ID); err != nil {
			log.Printf("failed to clear reminder for task %s: %v", task.ID, err)
		}
	}
}
