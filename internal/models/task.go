package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Content block types for the rich task body.
const (
	BlockParagraph = "paragraph"
	BlockHeading1  = "heading1"
	BlockHeading2  = "heading2"
	BlockHeading3  = "heading3"
	BlockBullet    = "bullet"
	BlockTodo      = "todo"
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

type Task struct {
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

func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
