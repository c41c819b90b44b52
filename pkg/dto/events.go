package dto

import "github.com/google/uuid"

// Realtime event types delivered on a workspace channel.
const (
	EventTaskCreated    = "task_created"
	EventTaskUpdated    = "task_updated"
	EventTaskDeleted    = "task_deleted"
	EventTaskReminder   = "task_reminder"
	EventPresenceUpdate = "presence_update"
)

type Event struct {
	Type        string          `json:"type"`
	WorkspaceID *uuid.UUID      `json:"workspace_id,omitempty"`
	Task        *TaskResponse   `json:"task,omitempty"`
	TaskID      *uuid.UUID      `json:"task_id,omitempty"`
	Presence    []PresenceEntry `json:"presence,omitempty"`
}

type PresenceEntry struct {
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}
