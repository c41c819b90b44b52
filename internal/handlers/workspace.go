package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/velmar/taskrelay-api/internal/middleware"
	"github.com/velmar/taskrelay-api/internal/models"
	"github.com/velmar/taskrelay-api/internal/services"
	"github.com/velmar/taskrelay-api/pkg/dto"
)

type WorkspaceHandler struct {
	workspaceService WorkspaceServiceInterface
}

func NewWorkspaceHandler(workspaceService WorkspaceServiceInterface) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

func toWorkspaceResponse(w *models.Workspace, role string) dto.WorkspaceResponse {
	resp := dto.WorkspaceResponse{
		ID:      w.ID,
		Name:    w.Name,
		Type:    w.Type,
		OwnerID: w.OwnerID,
		Role:    role,
	}
	// The invite code is only exposed to owners.
	if role == models.RoleOwner {
		resp.InviteCode = w.InviteCode
	}
	return resp
}

func (h *WorkspaceHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	workspace, err := h.workspaceService.Create(context.Background(), req.Name, req.Type, userID)
	if err != nil {
		c.InternalServerError("failed to create workspace")
		return
	}

	_ = c.JSON(201, toWorkspaceResponse(workspace, models.RoleOwner))
}

func (h *WorkspaceHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaces, roles, err := h.workspaceService.GetUserWorkspaces(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get workspaces")
		return
	}

	response := make([]dto.WorkspaceResponse, len(workspaces))
	for i := range workspaces {
		response[i] = toWorkspaceResponse(&workspaces[i], roles[i])
	}

	_ = c.JSON(200, response)
}

func (h *WorkspaceHandler) Get(c *drift.Context) {
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

	canAccess, err := h.workspaceService.CanAccess(ctx, workspaceID, userID)
	if err != nil || !canAccess {
		c.NotFound("workspace not found")
		return
	}

	workspace, err := h.workspaceService.GetByID(ctx, workspaceID)
	if err != nil {
		c.NotFound("workspace not found")
		return
	}

	role := models.RoleMember
	if workspace.OwnerID == userID {
		role = models.RoleOwner
	}

	_ = c.JSON(200, toWorkspaceResponse(workspace, role))
}

func (h *WorkspaceHandler) Update(c *drift.Context) {
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
		c.Forbidden("cannot modify this workspace")
		return
	}

	var req dto.UpdateWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	workspace, err := h.workspaceService.Update(ctx, workspaceID, req.Name)
	if err != nil {
		c.InternalServerError("failed to update workspace")
		return
	}

	_ = c.JSON(200, toWorkspaceResponse(workspace, models.RoleOwner))
}

func (h *WorkspaceHandler) Delete(c *drift.Context) {
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
		c.Forbidden("cannot delete this workspace")
		return
	}

	if err := h.workspaceService.Delete(ctx, workspaceID); err != nil {
		c.InternalServerError("failed to delete workspace")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "workspace deleted"})
}

func (h *WorkspaceHandler) Members(c *drift.Context) {
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

	canAccess, err := h.workspaceService.CanAccess(ctx, workspaceID, userID)
	if err != nil || !canAccess {
		c.NotFound("workspace not found")
		return
	}

	members, err := h.workspaceService.GetMembers(ctx, workspaceID)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	response := make([]dto.WorkspaceMemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.WorkspaceMemberResponse{
			UserID: m.UserID,
			Role:   m.Role,
		}
		if m.User != nil {
			response[i].Email = m.User.Email
			response[i].Name = m.User.Name
			response[i].AvatarURL = m.User.AvatarURL
			response[i].StreakCount = m.User.StreakCount
		}
	}

	_ = c.JSON(200, response)
}

func (h *WorkspaceHandler) Join(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.JoinWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.InviteCode == "" {
		c.BadRequest("invite_code is required")
		return
	}

	workspace, err := h.workspaceService.JoinByInviteCode(context.Background(), req.InviteCode, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInviteCode):
			c.NotFound("invalid invite code")
		case errors.Is(err, services.ErrAlreadyMember):
			c.BadRequest("already a member of this workspace")
		default:
			c.InternalServerError("failed to join workspace")
		}
		return
	}

	_ = c.JSON(200, toWorkspaceResponse(workspace, models.RoleMember))
}

func (h *WorkspaceHandler) Leave(c *drift.Context) {
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

	if err := h.workspaceService.Leave(context.Background(), workspaceID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrCannotRemoveOwner):
			c.BadRequest("owner cannot leave; delete the workspace instead")
		case errors.Is(err, services.ErrMemberNotFound):
			c.NotFound("not a member of this workspace")
		default:
			c.InternalServerError("failed to leave workspace")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "left workspace"})
}

func (h *WorkspaceHandler) RemoveMember(c *drift.Context) {
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

	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	ctx := context.Background()

	canModify, err := h.workspaceService.CanModify(ctx, workspaceID, userID)
	if err != nil || !canModify {
		c.Forbidden("cannot manage members of this workspace")
		return
	}

	if err := h.workspaceService.RemoveMember(ctx, workspaceID, memberID); err != nil {
		switch {
		case errors.Is(err, services.ErrCannotRemoveOwner):
			c.BadRequest("cannot remove the workspace owner")
		case errors.Is(err, services.ErrMemberNotFound):
			c.NotFound("member not found")
		default:
			c.InternalServerError("failed to remove member")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

func (h *WorkspaceHandler) RegenerateInviteCode(c *drift.Context) {
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
		c.Forbidden("cannot manage this workspace")
		return
	}

	code, err := h.workspaceService.RegenerateInviteCode(ctx, workspaceID)
	if err != nil {
		c.InternalServerError("failed to regenerate invite code")
		return
	}

	_ = c.JSON(200, map[string]string{"invite_code": code})
}
