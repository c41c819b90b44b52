// Package realtime fans task events out to the connections watching a
// workspace. The Registry owns every connected client and the single
// workspace channel each one is subscribed to; broadcasts for a channel are
// delivered in the order they were published.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/velmar/taskrelay-api/pkg/dto"
)

// Client is one realtime connection. Workspace is the channel the client is
// currently subscribed to (uuid.Nil when none) and is guarded by the
// registry mutex after registration. Send is drained by the transport's
// write pump; a full buffer means the event is dropped for that client.
type Client struct {
	ID        string
	UserID    uuid.UUID
	UserName  string
	AvatarURL *string
	Workspace uuid.UUID
	Send      chan []byte
}

type Registry struct {
	clients   map[string]*Client
	broadcast chan *channelMessage
	mu        sync.RWMutex
}

type channelMessage struct {
	WorkspaceID uuid.UUID
	Event       dto.Event
}

func NewRegistry() *Registry {
	return &Registry{
		clients:   make(map[string]*Client),
		broadcast: make(chan *channelMessage, 256),
	}
}

// Run delivers broadcasts. Events are consumed from a single channel, so
// subscribers of one workspace observe them in publish order.
func (r *Registry) Run() {
	for msg := range r.broadcast {
		r.mu.RLock()
		data, _ := json.Marshal(msg.Event)
		for _, client := range r.clients {
			if client.Workspace == msg.WorkspaceID {
				select {
				case client.Send <- data:
				default:
					// Client buffer full, skip
				}
			}
		}
		r.mu.RUnlock()
	}
}

// Register adds the client to the registry. It is synchronous: when it
// returns the client is visible to Subscribe and to broadcasts. A client
// registered with Workspace already set joins that channel's fanout
// immediately, with no window where a subscribe could be lost.
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	r.clients[client.ID] = client
	r.mu.Unlock()

	if client.Workspace != uuid.Nil {
		r.broadcastPresence(client.Workspace)
	}
}

// Unregister removes the client and closes its Send channel. Safe to call
// for a client that was never registered.
func (r *Registry) Unregister(client *Client) {
	var workspace uuid.UUID

	r.mu.Lock()
	if _, ok := r.clients[client.ID]; !ok {
		r.mu.Unlock()
		return
	}
	workspace = client.Workspace
	client.Workspace = uuid.Nil
	delete(r.clients, client.ID)
	close(client.Send)
	r.mu.Unlock()

	if workspace != uuid.Nil {
		r.broadcastPresence(workspace)
	}
}

// Subscribe puts the client on workspaceID's channel. A client listens to at
// most one workspace, so an existing subscription is swapped out in the same
// critical section; no broadcast can observe the client on both channels.
// It reports whether the subscription took effect; false means the client is
// not registered.
func (r *Registry) Subscribe(clientID string, workspaceID uuid.UUID) bool {
	var previous uuid.UUID

	r.mu.Lock()
	client, ok := r.clients[clientID]
	if ok {
		previous = client.Workspace
		client.Workspace = workspaceID
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	if previous != uuid.Nil && previous != workspaceID {
		r.broadcastPresence(previous)
	}
	r.broadcastPresence(workspaceID)
	return true
}

// Unsubscribe removes the client from workspaceID's channel. Calling it for
// a workspace the client is not subscribed to is a no-op.
func (r *Registry) Unsubscribe(clientID string, workspaceID uuid.UUID) {
	changed := false

	r.mu.Lock()
	if client, ok := r.clients[clientID]; ok && client.Workspace == workspaceID {
		client.Workspace = uuid.Nil
		changed = true
	}
	r.mu.Unlock()

	if changed {
		r.broadcastPresence(workspaceID)
	}
}

func (r *Registry) IsSubscribed(clientID string, workspaceID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[clientID]
	return ok && client.Workspace == workspaceID
}

func (r *Registry) BroadcastTaskCreated(workspaceID uuid.UUID, task dto.TaskResponse) {
	r.broadcast <- &channelMessage{
		WorkspaceID: workspaceID,
		Event: dto.Event{
			Type:        dto.EventTaskCreated,
			WorkspaceID: &workspaceID,
			Task:        &task,
		},
	}
}

func (r *Registry) BroadcastTaskUpdated(workspaceID uuid.UUID, task dto.TaskResponse) {
	r.broadcast <- &channelMessage{
		WorkspaceID: workspaceID,
		Event: dto.Event{
			Type:        dto.EventTaskUpdated,
			WorkspaceID: &workspaceID,
			Task:        &task,
		},
	}
}

func (r *Registry) BroadcastTaskDeleted(workspaceID, taskID uuid.UUID) {
	r.broadcast <- &channelMessage{
		WorkspaceID: workspaceID,
		Event: dto.Event{
			Type:        dto.EventTaskDeleted,
			WorkspaceID: &workspaceID,
			TaskID:      &taskID,
		},
	}
}

func (r *Registry) BroadcastTaskReminder(workspaceID uuid.UUID, task dto.TaskResponse) {
	r.broadcast <- &channelMessage{
		WorkspaceID: workspaceID,
		Event: dto.Event{
			Type:        dto.EventTaskReminder,
			WorkspaceID: &workspaceID,
			Task:        &task,
		},
	}
}

// broadcastPresence pushes the current online users of a workspace to its
// subscribers. Presence is best-effort and bypasses the ordered broadcast
// channel.
func (r *Registry) broadcastPresence(workspaceID uuid.UUID) {
	r.mu.RLock()
	seen := make(map[uuid.UUID]bool)
	entries := []dto.PresenceEntry{}
	for _, client := range r.clients {
		if client.Workspace == workspaceID && !seen[client.UserID] {
			seen[client.UserID] = true
			entries = append(entries, dto.PresenceEntry{
				UserID:    client.UserID,
				UserName:  client.UserName,
				AvatarURL: client.AvatarURL,
			})
		}
	}
	r.mu.RUnlock()

	event := dto.Event{
		Type:        dto.EventPresenceUpdate,
		WorkspaceID: &workspaceID,
		Presence:    entries,
	}

	data, _ := json.Marshal(event)

	r.mu.RLock()
	for _, client := range r.clients {
		if client.Workspace == workspaceID {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
	r.mu.RUnlock()
}
