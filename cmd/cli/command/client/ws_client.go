package client

// ws_client.go = streams live broadcasts from the API websocket.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"bloghub/internal/broadcast"
)

// SystemNotice is a server notice such as a rejected subscription.
type SystemNotice struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	Content string `json:"content"`
}

// WatchURL turns the API base URL into the websocket endpoint for channels.
func (c *HTTPClient) WatchURL(channels []string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid API URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported API URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/ws"
	q := url.Values{}
	q.Set("channels", strings.Join(channels, ","))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Watch blocks until ctx ends or the server closes the socket. Broadcasts go
// to onMessage, server notices to onNotice.
func (c *HTTPClient) Watch(ctx context.Context, channels []string, onMessage func(broadcast.Message), onNotice func(SystemNotice)) error {
	wsURL, err := c.WatchURL(channels)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Add("Authorization", "Bearer "+c.token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return &APIError{Status: resp.StatusCode, Message: "websocket upgrade refused"}
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	// unblock ReadMessage on cancellation
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var notice SystemNotice
		if err := json.Unmarshal(data, &notice); err == nil && notice.Type == "system" {
			if onNotice != nil {
				onNotice(notice)
			}
			continue
		}
		var msg broadcast.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		onMessage(msg)
	}
}
