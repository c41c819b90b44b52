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
)

var (
	ErrInviteNotFound  = errors.New("invitation not found")
	ErrInviteExpired   = errors.New("invitation has expired")
	ErrInviteNotActive = errors.New("invitation is no longer pending")
	ErrInviteWrongUser = errors.New("invitation is addressed to a different email")
)

const inviteColumns = `id, workspace_id, inviter_id, invitee_email, role, status, created_at, expires_at`

type InviteService struct {
	db *database.DB
}

func NewInviteService(db *database.DB) *InviteService {
	return &InviteService{db: db}
}

func scanInvite(row pgx.Row) (*models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID, &inv.WorkspaceID, &inv.InviterID, &inv.InviteeEmail, &inv.Role,
		&inv.Status, &inv.CreatedAt, &inv.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// Create issues a pending invitation. A second invite for the same workspace
// and email refreshes the existing pending row instead of adding another, so
// at most one pending invitation exists per pair.
func (s *InviteService) Create(ctx context.Context, workspaceID, inviterID uuid.UUID, email, role string) (*models.Invitation, error) {
	if role != models.RoleAdmin && role != models.RoleMember {
		role = models.RoleMember
	}

	return scanInvite(s.db.Pool.QueryRow(ctx, `
		INSERT INTO invitations (workspace_id, inviter_id, invitee_email, role, status, expires_at)
		VALUES ($1, $2, $3, $4, 'pending', $5)
		ON CONFLICT (workspace_id, LOWER(invitee_email)) WHERE status = 'pending'
		DO UPDATE SET inviter_id = EXCLUDED.inviter_id, role = EXCLUDED.role,
		              expires_at = EXCLUDED.expires_at
		RETURNING `+inviteColumns+`
	`, workspaceID, inviterID, NormalizeEmail(email), role, time.Now().Add(models.DefaultInviteTTL)))
}

func (s *InviteService) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	return scanInvite(s.db.Pool.QueryRow(ctx, `
		SELECT `+inviteColumns+` FROM invitations WHERE id = $1
	`, id))
}

func (s *InviteService) GetWorkspaceInvites(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error) {
	return s.listInvites(ctx, `
		SELECT `+inviteColumns+` FROM invitations
		WHERE workspace_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`, workspaceID)
}

func (s *InviteService) GetUserInvites(ctx context.Context, email string) ([]models.Invitation, error) {
	return s.listInvites(ctx, `
		SELECT `+inviteColumns+` FROM invitations
		WHERE LOWER(invitee_email) = $1 AND status = 'pending' AND expires_at > NOW()
		ORDER BY created_at DESC
	`, NormalizeEmail(email))
}

func (s *InviteService) listInvites(ctx context.Context, query string, arg any) ([]models.Invitation, error) {
	rows, err := s.db.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(
			&inv.ID, &inv.WorkspaceID, &inv.InviterID, &inv.InviteeEmail, &inv.Role,
			&inv.Status, &inv.CreatedAt, &inv.ExpiresAt,
		); err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, nil
}

// Accept marks the invitation accepted and adds the user as a member, in one
// transaction. The caller's email must match the invitee address.
func (s *InviteService) Accept(ctx context.Context, inviteID, userID uuid.UUID, userEmail string) (*models.Invitation, error) {
	inv, err := s.GetByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InviteStatusPending {
		return nil, ErrInviteNotActive
	}
	if inv.Expired(time.Now()) {
		return nil, ErrInviteExpired
	}
	if NormalizeEmail(inv.InviteeEmail) != NormalizeEmail(userEmail) {
		return nil, ErrInviteWrongUser
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE invitations SET status = 'accepted' WHERE id = $1
	`, inviteID)
	if err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
	`, inv.WorkspaceID, userID, inv.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	inv.Status = models.InviteStatusAccepted
	return inv, nil
}

func (s *InviteService) Decline(ctx context.Context, inviteID uuid.UUID, userEmail string) error {
	inv, err := s.GetByID(ctx, inviteID)
	if err != nil {
		return err
	}
	if inv.Status != models.InviteStatusPending {
		return ErrInviteNotActive
	}
	if NormalizeEmail(inv.InviteeEmail) != NormalizeEmail(userEmail) {
		return ErrInviteWrongUser
	}

	_, err = s.db.Pool.Exec(ctx, `
		UPDATE invitations SET status = 'declined' WHERE id = $1
	`, inviteID)
	return err
}

// Cancel deletes a pending invitation. Used by workspace admins.
func (s *InviteService) Cancel(ctx context.Context, inviteID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM invitations WHERE id = $1 AND status = 'pending'
	`, inviteID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// ExpireStale deletes pending invitations past their expiry. Run by the
// invite-sweeper command.
func (s *InviteService) ExpireStale(ctx context.Context) (int64, error) {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM invitations WHERE status = 'pending' AND expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
