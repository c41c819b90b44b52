package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/velmar/taskrelay-api/internal/middleware"
	"github.com/velmar/taskrelay-api/internal/realtime"
)

// SSEHandler is the server-sent-events transport for clients that cannot use
// WebSockets. The connection is tied to a single workspace chosen in the URL.
type SSEHandler struct {
	registry         RegistryInterface
	workspaceService WorkspaceServiceInterface
	userService      UserServiceInterface
}

func NewSSEHandler(
	registry RegistryInterface,
	workspaceService WorkspaceServiceInterface,
	userService UserServiceInterface,
) *SSEHandler {
	return &SSEHandler{
		registry:         registry,
		workspaceService: workspaceService,
		userService:      userService,
	}
}

func (h *SSEHandler) Connect(c *drift.Context) {
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

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	sseCtx := c.SSE()

	// The workspace is set before registration so the client joins the
	// fanout set atomically; a broadcast racing the connect can never find
	// it registered but unsubscribed.
	clientID := uuid.New().String()
	client := &realtime.Client{
		ID:        clientID,
		UserID:    userID,
		UserName:  user.Name,
		AvatarURL: user.AvatarURL,
		Workspace: workspaceID,
		Send:      make(chan []byte, 256),
	}

	h.registry.Register(client)
	defer h.registry.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		<-c.Request.Context().Done()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
