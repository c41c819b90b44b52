package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/velmar/taskrelay-api/internal/database"
	"github.com/velmar/taskrelay-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// DefaultPassword is the plaintext password of every fixture user.
const DefaultPassword = "test-password-123"

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", f.counter),
		Name:         fmt.Sprintf("Test User %d", f.counter),
		PasswordHash: string(hash),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, avatar_url, streak_count, last_completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, user.Email, user.Name, user.PasswordHash, user.AvatarURL, user.StreakCount, user.LastCompletedAt).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// WithStreak sets the user's streak state
func WithStreak(count int, lastCompletedAt time.Time) UserOption {
	return func(u *models.User) {
		u.StreakCount = count
		u.LastCompletedAt = &lastCompletedAt
	}
}

// CreateWorkspace creates a test workspace owned by the given user, with the
// owner recorded as a member.
func (f *Fixtures) CreateWorkspace(t *testing.T, owner *models.User, opts ...WorkspaceOption) *models.Workspace {
	t.Helper()
	f.counter++

	ws := &models.Workspace{
		Name:       fmt.Sprintf("Test Workspace %d", f.counter),
		Type:       models.WorkspaceTeam,
		OwnerID:    owner.ID,
		InviteCode: fmt.Sprintf("code%012d", f.counter),
	}

	for _, opt := range opts {
		opt(ws)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO workspaces (name, type, owner_id, invite_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, ws.Name, ws.Type, ws.OwnerID, ws.InviteCode).Scan(&ws.ID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
	`, ws.ID, owner.ID, models.RoleOwner)
	if err != nil {
		t.Fatalf("failed to add owner as member: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return ws
}

// WorkspaceOption configures a test workspace
type WorkspaceOption func(*models.Workspace)

// WithWorkspaceName sets the workspace name
func WithWorkspaceName(name string) WorkspaceOption {
	return func(w *models.Workspace) {
		w.Name = name
	}
}

// Personal marks the workspace as personal
func Personal() WorkspaceOption {
	return func(w *models.Workspace) {
		w.Type = models.WorkspacePersonal
	}
}

// AddMember adds a member to a workspace
func (f *Fixtures) AddMember(t *testing.T, ws *models.Workspace, user *models.User, role string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
	`, ws.ID, user.ID, role)
	if err != nil {
		t.Fatalf("failed to add workspace member: %v", err)
	}
}

// CreateTask creates a test task in a workspace
func (f *Fixtures) CreateTask(t *testing.T, ws *models.Workspace, creator *models.User, opts ...TaskOption) *models.Task {
	t.Helper()
	f.counter++

	task := &models.Task{
		WorkspaceID:   ws.ID,
		Title:         fmt.Sprintf("Test Task %d", f.counter),
		ContentBlocks: []models.ContentBlock{{Type: models.BlockParagraph, Text: ""}},
		Status:        models.StatusTodo,
		Tags:          []string{},
		Labels:        []string{},
		Subtasks:      []models.Subtask{},
		CreatedBy:     creator.ID,
	}

	for _, opt := range opts {
		opt(task)
	}

	blocks, err := json.Marshal(task.ContentBlocks)
	if err != nil {
		t.Fatalf("failed to marshal content blocks: %v", err)
	}
	subtasks, err := json.Marshal(task.Subtasks)
	if err != nil {
		t.Fatalf("failed to marshal subtasks: %v", err)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (workspace_id, title, content_blocks, status, tags, labels, subtasks,
			assignee_id, due_date, priority, reminder_at, archived, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, task.WorkspaceID, task.Title, blocks, task.Status, task.Tags, task.Labels, subtasks,
		task.AssigneeID, task.DueDate, task.Priority, task.ReminderAt, task.Archived, task.CreatedBy,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// TaskOption configures a test task
type TaskOption func(*models.Task)

// WithTitle sets the task title
func WithTitle(title string) TaskOption {
	return func(t *models.Task) {
		t.Title = title
	}
}

// WithStatus sets the task status
func WithStatus(status string) TaskOption {
	return func(t *models.Task) {
		t.Status = status
	}
}

// WithReminder sets the task reminder time
func WithReminder(at time.Time) TaskOption {
	return func(t *models.Task) {
		t.ReminderAt = &at
	}
}

// CreateInvite creates a pending invitation
func (f *Fixtures) CreateInvite(t *testing.T, ws *models.Workspace, inviter *models.User, email string) *models.Invitation {
	t.Helper()

	inv := &models.Invitation{
		WorkspaceID:  ws.ID,
		InviterID:    inviter.ID,
		InviteeEmail: email,
		Role:         models.RoleMember,
		Status:       models.InviteStatusPending,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO invitations (workspace_id, inviter_id, invitee_email, role, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, expires_at
	`, inv.WorkspaceID, inv.InviterID, inv.InviteeEmail, inv.Role, inv.Status,
		time.Now().Add(models.DefaultInviteTTL),
	).Scan(&inv.ID, &inv.CreatedAt, &inv.ExpiresAt)
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}

	return inv
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}
