package websocket

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Individual client connection handler

const ( // ping pong(2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time write a message to the peer
	PongWait       = 60 * time.Second    // max time to wait for pong from peer => no pong = no connection
	PingPeriod     = (PongWait * 9) / 10 // send pings at 90% of pong wait to absorb network jitter
	MaxMessageSize = 512                 // maximum message size allowed from peer
	SendBuffer     = 64                  // queued outbound messages before a client counts as slow
)

type Client struct {
	ID          string          // unique connection ID
	UserID      string          // user ID from the auth token
	Conn        *websocket.Conn // WebSocket connection
	SendChannel chan []byte     // outbound messages; closed by the hub only
	Hub         *Hub

	initial []string         // channels joined on registration
	rooms   map[string]*Room // owned by the hub goroutine
}

func NewClient(id, userID string, channels []string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		UserID:      userID,
		Conn:        conn,
		SendChannel: make(chan []byte, SendBuffer),
		Hub:         hub,
		initial:     channels,
		rooms:       make(map[string]*Room),
	}
}

// ReadPump reads subscribe/unsubscribe frames until the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "client_id", c.ID, "error", err)
			}
			return
		}

		msg, err := ControlFromJSON(data)
		if err != nil {
			c.notify("", "malformed message")
			continue
		}
		if !AllowedChannel(msg.Channel, c.UserID) {
			c.notify(msg.Channel, "channel not allowed")
			continue
		}
		c.Hub.send(subscription{client: c, channel: msg.Channel, join: msg.Type == TypeSubscribe})
	}
}

// WritePump drains SendChannel and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.SendChannel:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) notify(channel, content string) {
	c.Hub.send(subscription{client: c, channel: channel, notice: content})
}
