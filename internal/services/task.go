package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/velmar/taskrelay-api/internal/database"
	"github.com/velmar/taskrelay-api/internal/models"
	"github.com/velmar/taskrelay-api/pkg/dto"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrTitleRequired   = errors.New("task title is required")
)

const taskColumns = `id, workspace_id, title, content_blocks, status, tags, labels, subtasks,
	assignee_id, due_date, priority, reminder_at, archived, created_by, created_at, updated_at`

type TaskService struct {
	db *database.DB
}

func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{db: db}
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID, &task.WorkspaceID, &task.Title, &task.ContentBlocks, &task.Status,
		&task.Tags, &task.Labels, &task.Subtasks, &task.AssigneeID, &task.DueDate,
		&task.Priority, &task.ReminderAt, &task.Archived, &task.CreatedBy,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Create inserts a task with defaults filled in: status TODO, one empty
// paragraph block when no content is given, empty tag/label/subtask lists.
func (s *TaskService) Create(ctx context.Context, workspaceID, createdBy uuid.UUID, req dto.CreateTaskRequest) (*models.Task, error) {
	if req.Title == "" {
		return nil, ErrTitleRequired
	}

	status := req.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if req.Priority != nil && !models.ValidPriority(*req.Priority) {
		return nil, ErrInvalidPriority
	}

	blocks := toModelBlocks(req.ContentBlocks)
	if len(blocks) == 0 {
		blocks = []models.ContentBlock{{Type: models.BlockParagraph, Text: ""}}
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	labels := req.Labels
	if labels == nil {
		labels = []string{}
	}
	subtasks := toModelSubtasks(req.Subtasks)
	if subtasks == nil {
		subtasks = []models.Subtask{}
	}

	return scanTask(s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (workspace_id, title, content_blocks, status, tags, labels, subtasks,
		                   assignee_id, due_date, priority, reminder_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+taskColumns+`
	`, workspaceID, req.Title, blocks, status, tags, labels, subtasks,
		req.AssigneeID, req.DueDate, req.Priority, req.ReminderAt, createdBy))
}

func (s *TaskService) GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	return scanTask(s.db.Pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, taskID))
}

func (s *TaskService) GetByWorkspace(ctx context.Context, workspaceID uuid.UUID, includeArchived bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE workspace_id = $1`
	if !includeArchived {
		query += ` AND archived = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(
			&task.ID, &task.WorkspaceID, &task.Title, &task.ContentBlocks, &task.Status,
			&task.Tags, &task.Labels, &task.Subtasks, &task.AssigneeID, &task.DueDate,
			&task.Priority, &task.ReminderAt, &task.Archived, &task.CreatedBy,
			&task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Update applies a partial update in a transaction. The row is read, nil
// fields keep their stored value, and the merged task is written back. The
// second return reports whether this update moved the task into DONE from
// some other status; re-saving an already done task does not count.
func (s *TaskService) Update(ctx context.Context, taskID uuid.UUID, req dto.UpdateTaskRequest) (*models.Task, bool, error) {
	if req.Status != nil && !models.ValidStatus(*req.Status) {
		return nil, false, ErrInvalidStatus
	}
	if req.Priority != nil && *req.Priority != "" && !models.ValidPriority(*req.Priority) {
		return nil, false, ErrInvalidPriority
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	task, err := scanTask(tx.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE
	`, taskID))
	if err != nil {
		return nil, false, err
	}

	prevStatus := task.Status

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.ContentBlocks != nil {
		task.ContentBlocks = toModelBlocks(*req.ContentBlocks)
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Tags != nil {
		task.Tags = *req.Tags
	}
	if req.Labels != nil {
		task.Labels = *req.Labels
	}
	if req.Subtasks != nil {
		task.Subtasks = toModelSubtasks(*req.Subtasks)
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Priority != nil {
		if *req.Priority == "" {
			task.Priority = nil
		} else {
			task.Priority = req.Priority
		}
	}
	if req.ReminderAt != nil {
		task.ReminderAt = req.ReminderAt
	}
	if req.Archived != nil {
		task.Archived = *req.Archived
	}

	err = tx.QueryRow(ctx, `
		UPDATE tasks SET title = $1, content_blocks = $2, status = $3, tags = $4, labels = $5,
		                 subtasks = $6, assignee_id = $7, due_date = $8, priority = $9,
		                 reminder_at = $10, archived = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at
	`, task.Title, task.ContentBlocks, task.Status, task.Tags, task.Labels,
		task.Subtasks, task.AssigneeID, task.DueDate, task.Priority,
		task.ReminderAt, task.Archived, taskID).Scan(&task.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to update task: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	completed := prevStatus != models.StatusDone && task.Status == models.StatusDone
	return task, completed, nil
}

// Delete removes a task. Deleting a task that does not exist is a no-op and
// reports found = false so callers can skip the broadcast.
func (s *TaskService) Delete(ctx context.Context, taskID uuid.UUID) (bool, error) {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// GetDueReminders returns tasks whose reminder time has passed. The scheduler
// clears reminder_at after broadcasting so each reminder fires once.
func (s *TaskService) GetDueReminders(ctx context.Context, now time.Time) ([]models.Task, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE reminder_at IS NOT NULL AND reminder_at <= $1 AND archived = FALSE
		ORDER BY reminder_at
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(
			&task.ID, &task.WorkspaceID, &task.Title, &task.ContentBlocks, &task.Status,
			&task.Tags, &task.Labels, &task.Subtasks, &task.AssigneeID, &task.DueDate,
			&task.Priority, &task.ReminderAt, &task.Archived, &task.CreatedBy,
			&task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *TaskService) ClearReminder(ctx context.Context, taskID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE tasks SET reminder_at = NULL, updated_at = NOW() WHERE id = $1
	`, taskID)
	return err
}

func toModelBlocks(blocks []dto.ContentBlock) []models.ContentBlock {
	out := make([]models.ContentBlock, len(blocks))
	for i, b := range blocks {
		out[i] = models.ContentBlock{Type: b.Type, Text: b.Text, Checked: b.Checked}
	}
	return out
}

func toModelSubtasks(subtasks []dto.Subtask) []models.Subtask {
	out := make([]models.Subtask, len(subtasks))
	for i, st := range subtasks {
		id := st.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		out[i] = models.Subtask{ID: id, Title: st.Title, Completed: st.Completed}
	}
	return out
}
