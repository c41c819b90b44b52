package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmar/taskrelay-api/internal/database"
	"github.com/velmar/taskrelay-api/internal/models"
)

var workspaceTestColumns = []string{"id", "name", "type", "owner_id", "invite_code", "created_at", "updated_at"}

func setupWorkspaceService(t *testing.T) (*WorkspaceService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewWorkspaceService(db), mock
}

func TestWorkspaceService_Create(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	workspaceID := uuid.New()
	name := "My Workspace"
	now := time.Now()

	mock.ExpectBegin()

	rows := pgxmock.NewRows(workspaceTestColumns).
		AddRow(workspaceID, name, models.WorkspaceTeam, ownerID, "a1b2c3d4e5f60708", now, now)
	mock.ExpectQuery(`INSERT INTO workspaces \(name, type, owner_id, invite_code\)`).
		WithArgs(name, models.WorkspaceTeam, ownerID, pgxmock.AnyArg()).
		WillReturnRows(rows)

	mock.ExpectExec(`INSERT INTO workspace_members`).
		WithArgs(workspaceID, ownerID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectCommit()

	ws, err := svc.Create(ctx, name, models.WorkspaceTeam, ownerID)

	require.NoError(t, err)
	assert.Equal(t, workspaceID, ws.ID)
	assert.Equal(t, models.WorkspaceTeam, ws.Type)
	assert.Equal(t, ownerID, ws.OwnerID)
	assert.NotEmpty(t, ws.InviteCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_Create_DefaultsToPersonal(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	workspaceID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()

	rows := pgxmock.NewRows(workspaceTestColumns).
		AddRow(workspaceID, "Home", models.WorkspacePersonal, ownerID, "code", now, now)
	mock.ExpectQuery(`INSERT INTO workspaces`).
		WithArgs("Home", models.WorkspacePersonal, ownerID, pgxmock.AnyArg()).
		WillReturnRows(rows)

	mock.ExpectExec(`INSERT INTO workspace_members`).
		WithArgs(workspaceID, ownerID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectCommit()

	ws, err := svc.Create(ctx, "Home", "bogus-type", ownerID)

	require.NoError(t, err)
	assert.Equal(t, models.WorkspacePersonal, ws.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	workspaceID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM workspaces WHERE id`).
		WithArgs(workspaceID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(ctx, workspaceID)

	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_GetUserWorkspaces(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(append(workspaceTestColumns, "role")).
		AddRow(uuid.New(), "Workspace 1", models.WorkspacePersonal, userID, "code1", now, now, models.RoleOwner).
		AddRow(uuid.New(), "Workspace 2", models.WorkspaceTeam, uuid.New(), "code2", now, now, models.RoleMember)

	mock.ExpectQuery(`SELECT .+ FROM workspaces w\s+JOIN workspace_members`).
		WithArgs(userID).
		WillReturnRows(rows)

	workspaces, roles, err := svc.GetUserWorkspaces(ctx, userID)

	require.NoError(t, err)
	assert.Len(t, workspaces, 2)
	require.Len(t, roles, 2)
	assert.Equal(t, models.RoleOwner, roles[0])
	assert.Equal(t, models.RoleMember, roles[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_RemoveMember_OwnerProtected(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	ownerID := uuid.New()

	rows := pgxmock.NewRows([]string{"role"}).AddRow(models.RoleOwner)
	mock.ExpectQuery(`SELECT role FROM workspace_members`).
		WithArgs(workspaceID, ownerID).
		WillReturnRows(rows)

	err := svc.RemoveMember(ctx, workspaceID, ownerID)

	assert.ErrorIs(t, err, ErrCannotRemoveOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_RemoveMember(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	memberID := uuid.New()

	rows := pgxmock.NewRows([]string{"role"}).AddRow(models.RoleMember)
	mock.ExpectQuery(`SELECT role FROM workspace_members`).
		WithArgs(workspaceID, memberID).
		WillReturnRows(rows)

	mock.ExpectExec(`DELETE FROM workspace_members`).
		WithArgs(workspaceID, memberID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.RemoveMember(ctx, workspaceID, memberID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_JoinByInviteCode(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	ownerID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(workspaceTestColumns).
		AddRow(workspaceID, "Team", models.WorkspaceTeam, ownerID, "joincode", now, now)
	mock.ExpectQuery(`SELECT .+ FROM workspaces WHERE invite_code`).
		WithArgs("joincode").
		WillReturnRows(rows)

	existsRows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(workspaceID, userID).
		WillReturnRows(existsRows)

	mock.ExpectExec(`INSERT INTO workspace_members`).
		WithArgs(workspaceID, userID, models.RoleMember).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ws, err := svc.JoinByInviteCode(ctx, "joincode", userID)

	require.NoError(t, err)
	assert.Equal(t, workspaceID, ws.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_JoinByInviteCode_InvalidCode(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .+ FROM workspaces WHERE invite_code`).
		WithArgs("bogus").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.JoinByInviteCode(ctx, "bogus", uuid.New())

	assert.ErrorIs(t, err, ErrInvalidInviteCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_JoinByInviteCode_AlreadyMember(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(workspaceTestColumns).
		AddRow(workspaceID, "Team", models.WorkspaceTeam, uuid.New(), "joincode", now, now)
	mock.ExpectQuery(`SELECT .+ FROM workspaces WHERE invite_code`).
		WithArgs("joincode").
		WillReturnRows(rows)

	existsRows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(workspaceID, userID).
		WillReturnRows(existsRows)

	_, err := svc.JoinByInviteCode(ctx, "joincode", userID)

	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_CanAccess_OwnerWithoutMembershipRow(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	existsRows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(workspaceID, userID).
		WillReturnRows(existsRows)

	ownerRows := pgxmock.NewRows([]string{"owner_id"}).AddRow(userID)
	mock.ExpectQuery(`SELECT owner_id FROM workspaces WHERE id`).
		WithArgs(workspaceID).
		WillReturnRows(ownerRows)

	ok, err := svc.CanAccess(ctx, workspaceID, userID)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_RegenerateInviteCode_NotFound(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	workspaceID := uuid.New()

	mock.ExpectExec(`UPDATE workspaces SET invite_code`).
		WithArgs(pgxmock.AnyArg(), workspaceID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := svc.RegenerateInviteCode(ctx, workspaceID)

	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
