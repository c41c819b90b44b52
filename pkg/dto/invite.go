package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type InviteResponse struct {
	ID            uuid.UUID `json:"id"`
	WorkspaceID   uuid.UUID `json:"workspace_id"`
	WorkspaceName string    `json:"workspace_name,omitempty"`
	InviterID     uuid.UUID `json:"inviter_id"`
	InviteeEmail  string    `json:"invitee_email"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}
