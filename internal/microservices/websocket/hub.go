package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"bloghub/internal/broadcast"
)

// Central hub managing all connections and rooms.
// Each WebSocket connection runs in its own goroutines
// but they all reach hub state through channels, so only Run mutates it.

// subscription is a join/leave request, or a system notice when notice is set.
type subscription struct {
	client  *Client
	channel string
	join    bool
	notice  string
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	subscriptions chan subscription
	deliveries    chan broadcast.Message
	done          chan struct{}

	clients map[*Client]bool
	rooms   map[string]*Room
	count   atomic.Int64
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		subscriptions: make(chan subscription),
		deliveries:    make(chan broadcast.Message, 256),
		done:          make(chan struct{}),
		clients:       make(map[*Client]bool),
		rooms:         make(map[string]*Room),
		log:           log,
	}
}

// Run owns the hub state until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			h.remove(client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.count.Add(1)
			for _, name := range client.initial {
				h.join(client, name)
			}
			h.log.Info("websocket client registered", "client_id", client.ID, "user_id", client.UserID)
		case client := <-h.Unregister:
			h.remove(client)
		case sub := <-h.subscriptions:
			if !h.clients[sub.client] {
				continue
			}
			if sub.notice != "" {
				h.sendSystem(sub.client, sub.channel, sub.notice)
			} else if sub.join {
				h.join(sub.client, sub.channel)
			} else {
				h.leave(sub.client, sub.channel)
			}
		case msg := <-h.deliveries:
			h.fanOut(msg)
		}
	}
}

// Deliver implements broadcast.Sink.
func (h *Hub) Deliver(msg broadcast.Message) {
	select {
	case h.deliveries <- msg:
	case <-h.done:
	}
}

// ClientCount is safe to call from any goroutine.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) send(sub subscription) {
	select {
	case h.subscriptions <- sub:
	case <-h.done:
	}
}

// sendSystem must run on the hub goroutine.
func (h *Hub) sendSystem(c *Client, channel, content string) {
	data, err := json.Marshal(SystemMessage{Type: TypeSystem, Channel: channel, Content: content})
	if err != nil {
		return
	}
	select {
	case c.SendChannel <- data:
	default:
	}
}

// register hands the client to Run; false once the hub has stopped.
func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) join(c *Client, name string) {
	room, ok := h.rooms[name]
	if !ok {
		room = NewRoom(name)
		h.rooms[name] = room
	}
	if room.AddUser(c) {
		c.rooms[name] = room
	}
}

func (h *Hub) leave(c *Client, name string) {
	room, ok := c.rooms[name]
	if !ok {
		return
	}
	room.RemoveUser(c)
	delete(c.rooms, name)
	if room.GetUserCount() == 0 {
		delete(h.rooms, name)
	}
}

func (h *Hub) remove(c *Client) {
	if !h.clients[c] {
		return
	}
	for name := range c.rooms {
		h.leave(c, name)
	}
	delete(h.clients, c)
	h.count.Add(-1)
	close(c.SendChannel)
	h.log.Info("websocket client removed", "client_id", c.ID, "user_id", c.UserID)
}

func (h *Hub) fanOut(msg broadcast.Message) {
	room, ok := h.rooms[msg.Channel]
	if !ok {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal broadcast", "channel", msg.Channel, "error", err)
		return
	}
	for _, slow := range room.Broadcast(data) {
		h.log.Warn("dropping slow websocket client", "client_id", slow.ID, "channel", msg.Channel)
		h.remove(slow)
	}
}
