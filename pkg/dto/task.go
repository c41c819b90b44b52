package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/velmar/taskrelay-api/internal/models"
)

type ContentBlock struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Checked bool   `json:"checked,omitempty"`
}

type Subtask struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
}

type CreateTaskRequest struct {
	Title         string         `json:"title"`
	ContentBlocks []ContentBlock `json:"content_blocks,omitempty"`
	Status        string         `json:"status,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	Labels        []string       `json:"labels,omitempty"`
	Subtasks      []Subtask      `json:"subtasks,omitempty"`
	AssigneeID    *uuid.UUID     `json:"assignee_id,omitempty"`
	DueDate       *time.Time     `json:"due_date,omitempty"`
	Priority      *string        `json:"priority,omitempty"`
	ReminderAt    *time.Time     `json:"reminder_at,omitempty"`
}

// UpdateTaskRequest is a partial update: nil fields are left untouched.
type UpdateTaskRequest struct {
	Title         *string         `json:"title,omitempty"`
	ContentBlocks *[]ContentBlock `json:"content_blocks,omitempty"`
	Status        *string         `json:"status,omitempty"`
	Tags          *[]string       `json:"tags,omitempty"`
	Labels        *[]string       `json:"labels,omitempty"`
	Subtasks      *[]Subtask      `json:"subtasks,omitempty"`
	AssigneeID    *uuid.UUID      `json:"assignee_id,omitempty"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Priority      *string         `json:"priority,omitempty"`
	ReminderAt    *time.Time      `json:"reminder_at,omitempty"`
	Archived      *bool           `json:"archived,omitempty"`
}

// NewTaskResponse converts a stored task into the wire shape used by both
// the REST responses and the realtime events.
func NewTaskResponse(task *models.Task) TaskResponse {
	blocks := make([]ContentBlock, len(task.ContentBlocks))
	for i, b := range task.ContentBlocks {
		blocks[i] = ContentBlock{Type: b.Type, Text: b.Text, Checked: b.Checked}
	}
	subtasks := make([]Subtask, len(task.Subtasks))
	for i, st := range task.Subtasks {
		subtasks[i] = Subtask{ID: st.ID, Title: st.Title, Completed: st.Completed}
	}
	return TaskResponse{
		ID:            task.ID,
		WorkspaceID:   task.WorkspaceID,
		Title:         task.Title,
		ContentBlocks: blocks,
		Status:        task.Status,
		Tags:          task.Tags,
		Labels:        task.Labels,
		Subtasks:      subtasks,
		AssigneeID:    task.AssigneeID,
		DueDate:       task.DueDate,
		Priority:      task.Priority,
		ReminderAt:    task.ReminderAt,
		Archived:      task.Archived,
		CreatedBy:     task.CreatedBy,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

type TaskResponse struct {
	ID            uuid.UUID      `json:"id"`
	WorkspaceID   uuid.UUID      `json:"workspace_id"`
	Title         string         `json:"title"`
	ContentBlocks []ContentBlock `json:"content_blocks"`
	Status        string         `json:"status"`
	Tags          []string       `json:"tags"`
	Labels        []string       `json:"labels"`
	Subtasks      []Subtask      `json:"subtasks"`
	AssigneeID    *uuid.UUID     `json:"assignee_id,omitempty"`
	DueDate       *time.Time     `json:"due_date,omitempty"`
	Priority      *string        `json:"priority,omitempty"`
	ReminderAt    *time.Time     `json:"reminder_at,omitempty"`
	Archived      bool           `json:"archived"`
	CreatedBy     uuid.UUID      `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
