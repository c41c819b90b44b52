package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/velmar/taskrelay-api/internal/middleware"
	"github.com/velmar/taskrelay-api/internal/models"
	"github.com/velmar/taskrelay-api/internal/services"
	"github.com/velmar/taskrelay-api/pkg/dto"
)

type InviteHandler struct {
	inviteService    InviteServiceInterface
	workspaceService WorkspaceServiceInterface
	userService      UserServiceInterface
	emailService     EmailServiceInterface
	baseURL          string
}

func NewInviteHandler(
	inviteService InviteServiceInterface,
	workspaceService WorkspaceServiceInterface,
	userService UserServiceInterface,
	emailService EmailServiceInterface,
	baseURL string,
) *InviteHandler {
	return &InviteHandler{
		inviteService:    inviteService,
		workspaceService: workspaceService,
		userService:      userService,
		emailService:     emailService,
		baseURL:          baseURL,
	}
}

func toInviteResponse(inv *models.Invitation) dto.InviteResponse {
	return dto.InviteResponse{
		ID:           inv.ID,
		WorkspaceID:  inv.WorkspaceID,
		InviterID:    inv.InviterID,
		InviteeEmail: inv.InviteeEmail,
		Role:         inv.Role,
		Status:       inv.Status,
		CreatedAt:    inv.CreatedAt,
		ExpiresAt:    inv.ExpiresAt,
	}
}

// Create issues an invitation for a workspace. Personal workspaces cannot be
// shared, and only the owner may invite.
func (h *InviteHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	var req dto.CreateInviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" {
		c.BadRequest("email is required")
		return
	}

	ctx := context.Background()

	canModify, err := h.workspaceService.CanModify(ctx, workspaceID, userID)
	if err != nil || !canModify {
		c.Forbidden("cannot invite to this workspace")
		return
	}

	workspace, err := h.workspaceService.GetByID(ctx, workspaceID)
	if err != nil {
		c.NotFound("workspace not found")
		return
	}

	if workspace.IsPersonal() {
		c.BadRequest("personal workspaces cannot be shared")
		return
	}

	invite, err := h.inviteService.Create(ctx, workspaceID, userID, req.Email, req.Role)
	if err != nil {
		c.InternalServerError("failed to create invitation")
		return
	}

	// Email delivery is best-effort; the invitation stands either way.
	inviter, err := h.userService.GetByID(ctx, userID)
	inviterName := "Someone"
	if err == nil {
		inviterName = inviter.Name
	}
	inviteURL := fmt.Sprintf("%s/invites/%s", h.baseURL, invite.ID)
	_ = h.emailService.SendWorkspaceInvite(invite.InviteeEmail, workspace.Name, inviterName, inviteURL)

	_ = c.JSON(201, toInviteResponse(invite))
}

func (h *InviteHandler) ListForWorkspace(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	ctx := context.Background()

	canModify, err := h.workspaceService.CanModify(ctx, workspaceID, userID)
	if err != nil || !canModify {
		c.Forbidden("cannot view invitations for this workspace")
		return
	}

	invites, err := h.inviteService.GetWorkspaceInvites(ctx, workspaceID)
	if err != nil {
		c.InternalServerError("failed to get invitations")
		return
	}

	response := make([]dto.InviteResponse, len(invites))
	for i := range invites {
		response[i] = toInviteResponse(&invites[i])
	}

	_ = c.JSON(200, response)
}

func (h *InviteHandler) ListMine(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	email := middleware.GetUserEmail(c)

	invites, err := h.inviteService.GetUserInvites(context.Background(), email)
	if err != nil {
		c.InternalServerError("failed to get invitations")
		return
	}

	response := make([]dto.InviteResponse, len(invites))
	for i := range invites {
		response[i] = toInviteResponse(&invites[i])
	}

	_ = c.JSON(200, response)
}

func (h *InviteHandler) Accept(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		c.BadRequest("invalid invite id")
		return
	}

	email := middleware.GetUserEmail(c)

	invite, err := h.inviteService.Accept(context.Background(), inviteID, userID, email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInviteNotFound):
			c.NotFound("invitation not found")
		case errors.Is(err, services.ErrInviteExpired):
			c.BadRequest("invitation has expired")
		case errors.Is(err, services.ErrInviteNotActive):
			c.BadRequest("invitation is no longer pending")
		case errors.Is(err, services.ErrInviteWrongUser):
			c.Forbidden("invitation is addressed to a different email")
		default:
			c.InternalServerError("failed to accept invitation")
		}
		return
	}

	_ = c.JSON(200, toInviteResponse(invite))
}

func (h *InviteHandler) Decline(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		c.BadRequest("invalid invite id")
		return
	}

	email := middleware.GetUserEmail(c)

	if err := h.inviteService.Decline(context.Background(), inviteID, email); err != nil {
		switch {
		case errors.Is(err, services.ErrInviteNotFound):
			c.NotFound("invitation not found")
		case errors.Is(err, services.ErrInviteNotActive):
			c.BadRequest("invitation is no longer pending")
		case errors.Is(err, services.ErrInviteWrongUser):
			c.Forbidden("invitation is addressed to a different email")
		default:
			c.InternalServerError("failed to decline invitation")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invitation declined"})
}

func (h *InviteHandler) Cancel(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		c.BadRequest("invalid invite id")
		return
	}

	ctx := context.Background()

	canModify, err := h.workspaceService.CanModify(ctx, workspaceID, userID)
	if err != nil || !canModify {
		c.Forbidden("cannot manage invitations for this workspace")
		return
	}

	if err := h.inviteService.Cancel(ctx, inviteID); err != nil {
		if errors.Is(err, services.ErrInviteNotFound) {
			c.NotFound("invitation not found")
			return
		}
		c.InternalServerError("failed to cancel invitation")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invitation cancelled"})
}
