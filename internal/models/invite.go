package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
)

// DefaultInviteTTL is how long an invitation stays valid.
const DefaultInviteTTL = 7 * 24 * time.Hour

type Invitation struct {
	ID           uuid.UUID  `json:"id"`
	WorkspaceID  uuid.UUID  `json:"workspace_id"`
	InviterID    uuid.UUID  `json:"inviter_id"`
	InviteeEmail string     `json:"invitee_email"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	Workspace    *Workspace `json:"workspace,omitempty"`
	Inviter      *User      `json:"inviter,omitempty"`
}

func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
