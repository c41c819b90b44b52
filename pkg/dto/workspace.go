package dto

import "github.com/google/uuid"

type CreateWorkspaceRequest struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type UpdateWorkspaceRequest struct {
	Name string `json:"name"`
}

type JoinWorkspaceRequest struct {
	InviteCode string `json:"invite_code"`
}

type WorkspaceResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	OwnerID    uuid.UUID `json:"owner_id"`
	InviteCode string    `json:"invite_code,omitempty"`
	Role       string    `json:"role,omitempty"`
}

type WorkspaceMemberResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	StreakCount int       `json:"streak_count"`
	Role        string    `json:"role"`
}
