package websocket

import (
	"encoding/json"
	"fmt"
	"regexp"

	"bloghub/internal/broadcast"
)

// Message protocol definitions

// MessageType names the control frames a client may send.
type MessageType string

const (
	TypeSubscribe   MessageType = "subscribe"   // start receiving a channel
	TypeUnsubscribe MessageType = "unsubscribe" // stop receiving a channel
	TypeSystem      MessageType = "system"      // server notice, e.g. a rejected subscription
)

// ControlMessage is what clients write on the socket.
type ControlMessage struct {
	Type    MessageType `json:"type"`
	Channel string      `json:"channel"`
}

// SystemMessage is written back to a single client.
type SystemMessage struct {
	Type    MessageType `json:"type"`
	Channel string      `json:"channel,omitempty"`
	Content string      `json:"content"`
}

// ControlFromJSON: unmarshal a client frame
func ControlFromJSON(data []byte) (*ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != TypeSubscribe && msg.Type != TypeUnsubscribe {
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return &msg, nil
}

var postChannel = regexp.MustCompile(`^posts\.[1-9][0-9]*$`)

// AllowedChannel reports whether userID may listen on channel. Private user
// channels are readable by their owner only.
func AllowedChannel(channel, userID string) bool {
	if channel == broadcast.ChannelComments || postChannel.MatchString(channel) {
		return true
	}
	owner, ok := broadcast.UserOfChannel(channel)
	return ok && owner == userID
}
