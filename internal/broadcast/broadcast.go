// Package broadcast pushes real-time events to connected frontends. Events
// travel over Redis pub/sub when it is configured so every API instance can
// forward them to its own websocket clients.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// ChannelComments receives every confirmed comment.
	ChannelComments = "comments"

	EventCommentAdded        = "comment.added"
	EventNotificationCreated = "notification.created"
)

// PostChannel is the per-post channel name.
func PostChannel(postID int64) string {
	return fmt.Sprintf("posts.%d", postID)
}

// UserChannel is the private channel of a single user.
func UserChannel(userID string) string {
	return "users." + userID
}

// UserOfChannel returns the user id of a private channel name.
func UserOfChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, "users.")
	return id, ok && id != ""
}

// Message is the envelope written to subscribers.
type Message struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
	SentAt  time.Time       `json:"sent_at"`
}

func NewMessage(channel, event string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return Message{Channel: channel, Event: event, Data: data, SentAt: time.Now().UTC()}, nil
}

type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// Sink receives messages for local delivery; the websocket hub is one.
type Sink interface {
	Deliver(msg Message)
}

// LocalPublisher hands messages straight to an in-process sink.
type LocalPublisher struct {
	sink Sink
}

func NewLocalPublisher(sink Sink) *LocalPublisher {
	return &LocalPublisher{sink: sink}
}

func (p *LocalPublisher) Publish(_ context.Context, channel, event string, payload any) error {
	msg, err := NewMessage(channel, event, payload)
	if err != nil {
		return err
	}
	p.sink.Deliver(msg)
	return nil
}
