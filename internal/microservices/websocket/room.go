package websocket

import (
	"sync"
)

// Room is the set of clients subscribed to one broadcast channel.
type Room struct {
	Name    string
	Clients map[string]*Client // map[clientID] -> *Client
	mu      sync.RWMutex
}

func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		Clients: make(map[string]*Client),
	}
}

// AddUser: adds client to the room, reports whether it was new
func (r *Room) AddUser(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Clients[c.ID]; ok {
		return false
	}
	r.Clients[c.ID] = c
	return true
}

// RemoveUser: removes client from the room
func (r *Room) RemoveUser(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Clients, c.ID)
}

// Broadcast queues message on every member and returns the members whose
// send buffer was full.
func (r *Room) Broadcast(message []byte) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var slow []*Client
	for _, client := range r.Clients {
		select {
		case client.SendChannel <- message:
		default:
			slow = append(slow, client)
		}
	}
	return slow
}

// GetUserCount: returns the number of clients in the room
func (r *Room) GetUserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients)
}
