package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/velmar/taskrelay-api/pkg/dto"
)

// Client connects to the sync endpoint, subscribes to one workspace, and
// feeds incoming events into a Reconciler. OnChange, when set, is called
// after every event that changed the replica.
type Client struct {
	URL      string
	Token    string
	OnChange func(dto.Event)

	rec *Reconciler
}

func NewClient(baseURL, token string, rec *Reconciler) *Client {
	return &Client{URL: baseURL, Token: token, rec: rec}
}

// Run dials the sync endpoint and processes events until the context is
// cancelled or the connection drops. The caller is expected to Reset the
// reconciler with a fresh task list before or right after subscribing.
func (c *Client) Run(ctx context.Context, workspaceID uuid.UUID) error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid sync url: %w", err)
	}
	q := u.Query()
	q.Set("token", c.Token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to dial sync endpoint: %w", err)
	}
	defer conn.Close()

	sub := map[string]string{
		"action":       "subscribe",
		"workspace_id": workspaceID.String(),
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read failed: %w", err)
		}

		var event dto.Event
		if err := json.Unmarshal(data, &event); err != nil {
			continue
		}

		if c.rec.Apply(event) && c.OnChange != nil {
			c.OnChange(event)
		}
	}
}
