package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/velmar/taskrelay-api/internal/models"
	"github.com/velmar/taskrelay-api/internal/realtime"
	"github.com/velmar/taskrelay-api/internal/services"
	"github.com/velmar/taskrelay-api/pkg/dto"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string, avatarURL *string) (*models.User, error)
}

// WorkspaceServiceInterface defines the methods used by handlers from WorkspaceService
type WorkspaceServiceInterface interface {
	Create(ctx context.Context, name, wsType string, ownerID uuid.UUID) (*models.Workspace, error)
	GetByID(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error)
	GetUserWorkspaces(ctx context.Context, userID uuid.UUID) ([]models.Workspace, []string, error)
	Update(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Workspace, error)
	Delete(ctx context.Context, workspaceID uuid.UUID) error
	IsOwner(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	CanAccess(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	CanModify(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	GetMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error)
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error
	Leave(ctx context.Context, workspaceID, userID uuid.UUID) error
	JoinByInviteCode(ctx context.Context, code string, userID uuid.UUID) (*models.Workspace, error)
	RegenerateInviteCode(ctx context.Context, workspaceID uuid.UUID) (string, error)
}

// TaskServiceInterface defines the methods used by handlers from TaskService
type TaskServiceInterface interface {
	Create(ctx context.Context, workspaceID, createdBy uuid.UUID, req dto.CreateTaskRequest) (*models.Task, error)
	GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error)
	GetByWorkspace(ctx context.Context, workspaceID uuid.UUID, includeArchived bool) ([]models.Task, error)
	Update(ctx context.Context, taskID uuid.UUID, req dto.UpdateTaskRequest) (*models.Task, bool, error)
	Delete(ctx context.Context, taskID uuid.UUID) (bool, error)
}

// InviteServiceInterface defines the methods used by handlers from InviteService
type InviteServiceInterface interface {
	Create(ctx context.Context, workspaceID, inviterID uuid.UUID, email, role string) (*models.Invitation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error)
	GetWorkspaceInvites(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error)
	GetUserInvites(ctx context.Context, email string) ([]models.Invitation, error)
	Accept(ctx context.Context, inviteID, userID uuid.UUID, userEmail string) (*models.Invitation, error)
	Decline(ctx context.Context, inviteID uuid.UUID, userEmail string) error
	Cancel(ctx context.Context, inviteID uuid.UUID) error
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateAccessToken(token string) (*services.Claims, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// StreakServiceInterface is the completion hook invoked after a task moves
// into DONE.
type StreakServiceInterface interface {
	TaskCompleted(ctx context.Context, userID uuid.UUID, now time.Time) error
}

// RegistryInterface defines the methods used by handlers from the realtime Registry
type RegistryInterface interface {
	Register(client *realtime.Client)
	Unregister(client *realtime.Client)
	Subscribe(clientID string, workspaceID uuid.UUID) bool
	Unsubscribe(clientID string, workspaceID uuid.UUID)
	IsSubscribed(clientID string, workspaceID uuid.UUID) bool
	BroadcastTaskCreated(workspaceID uuid.UUID, task dto.TaskResponse)
	BroadcastTaskUpdated(workspaceID uuid.UUID, task dto.TaskResponse)
	BroadcastTaskDeleted(workspaceID, taskID uuid.UUID)
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	SendWorkspaceInvite(to, workspaceName, inviterName, inviteURL string) error
}
