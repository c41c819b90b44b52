package handlers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/websocket"

	"github.com/velmar/taskrelay-api/internal/realtime"
)

const (
	syncPingInterval = 30 * time.Second
	syncWriteTimeout = 10 * time.Second
	syncReadTimeout  = 60 * time.Second
)

type ClientMessage struct {
	Action      string `json:"action"`
	WorkspaceID string `json:"workspace_id,omitempty"`
}

type SyncHandler struct {
	registry         RegistryInterface
	workspaceService WorkspaceServiceInterface
	userService      UserServiceInterface
	jwtService       JWTServiceInterface
}

func NewSyncHandler(
	registry RegistryInterface,
	workspaceService WorkspaceServiceInterface,
	userService UserServiceInterface,
	jwtService JWTServiceInterface,
) *SyncHandler {
	return &SyncHandler{
		registry:         registry,
		workspaceService: workspaceService,
		userService:      userService,
		jwtService:       jwtService,
	}
}

// Connect upgrades to a WebSocket after validating the token. A connection
// with a bad token is rejected at the handshake, before any upgrade happens.
func (h *SyncHandler) Connect(c *drift.Context) {
	token := c.QueryParam("token")
	if token == "" {
		c.Unauthorized("token is required")
		return
	}

	claims, err := h.jwtService.ValidateAccessToken(token)
	if err != nil {
		c.Unauthorized("invalid token")
		return
	}

	user, err := h.userService.GetByID(context.Background(), claims.UserID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	conn, err := websocket.Upgrade(c)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	clientID := uuid.New().String()
	client := &realtime.Client{
		ID:        clientID,
		UserID:    claims.UserID,
		UserName:  user.Name,
		AvatarURL: user.AvatarURL,
		Send:      make(chan []byte, 256),
	}

	h.registry.Register(client)

	_ = conn.WriteJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	})

	done := make(chan struct{})

	// Write pump
	go func() {
		ticker := time.NewTicker(syncPingInterval)
		defer ticker.Stop()
		defer func() {
			if err := conn.Close(websocket.CloseNormalClosure, ""); err != nil {
				log.Printf("WebSocket close error: %v", err)
			}
		}()

		for {
			select {
			case msg, ok := <-client.Send:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(syncWriteTimeout))
				if err := conn.WriteText(string(msg)); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.Ping(nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Read pump (blocks until disconnect)
	func() {
		defer func() {
			close(done)
			h.registry.Unregister(client)
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(syncReadTimeout))
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			if msgType != websocket.TextMessage {
				continue
			}

			var msg ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = conn.WriteJSON(map[string]string{
					"type":    "error",
					"message": "invalid message format",
				})
				continue
			}

			switch msg.Action {
			case "subscribe":
				h.handleSubscribe(conn, client, msg)
			case "unsubscribe":
				h.handleUnsubscribe(conn, client, msg)
			case "ping":
				_ = conn.WriteJSON(map[string]string{"type": "pong"})
			default:
				_ = conn.WriteJSON(map[string]string{
					"type":       "error",
					"message":    "unknown action",
					"ref_action": msg.Action,
				})
			}
		}
	}()
}

// handleSubscribe puts the client on a workspace channel. Subscribing to a
// second workspace replaces the first; the client receives events for one
// workspace at a time.
func (h *SyncHandler) handleSubscribe(conn *websocket.Conn, client *realtime.Client, msg ClientMessage) {
	workspaceID, err := uuid.Parse(msg.WorkspaceID)
	if err != nil {
		_ = conn.WriteJSON(map[string]string{
			"type":       "error",
			"message":    "invalid workspace_id",
			"ref_action": "subscribe",
		})
		return
	}

	canAccess, err := h.workspaceService.CanAccess(context.Background(), workspaceID, client.UserID)
	if err != nil || !canAccess {
		_ = conn.WriteJSON(map[string]string{
			"type":       "error",
			"message":    "workspace not found or access denied",
			"ref_action": "subscribe",
		})
		return
	}

	if !h.registry.Subscribe(client.ID, workspaceID) {
		_ = conn.WriteJSON(map[string]string{
			"type":       "error",
			"message":    "connection is not registered",
			"ref_action": "subscribe",
		})
		return
	}

	_ = conn.WriteJSON(map[string]string{
		"type":         "subscribed",
		"workspace_id": workspaceID.String(),
	})
}

func (h *SyncHandler) handleUnsubscribe(conn *websocket.Conn, client *realtime.Client, msg ClientMessage) {
	workspaceID, err := uuid.Parse(msg.WorkspaceID)
	if err != nil {
		_ = conn.WriteJSON(map[string]string{
			"type":       "error",
			"message":    "invalid workspace_id",
			"ref_action": "unsubscribe",
		})
		return
	}

	h.registry.Unsubscribe(client.ID, workspaceID)

	_ = conn.WriteJSON(map[string]string{
		"type":         "unsubscribed",
		"workspace_id": workspaceID.String(),
	})
}
