// Package events carries domain events from the services, after their writes
// commit, to the broadcast and notification handlers.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Type string

const (
	// CommentConfirmed fires once per comment, when it enters the confirmed state.
	CommentConfirmed Type = "comment.confirmed"
)

// CommentSnapshot is the committed state of a comment and its post at event time.
type CommentSnapshot struct {
	ID            int64     `json:"id"`
	Body          string    `json:"body"`
	PostID        int64     `json:"post_id"`
	PostSlug      string    `json:"post_slug"`
	PostTitle     string    `json:"post_title"`
	PostAuthorID  string    `json:"post_author_id"`
	AuthorID      string    `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	ConfirmedByID string    `json:"confirmed_by_id"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
	CreatedAt     time.Time `json:"created_at"`
}

type Event struct {
	Type    Type            `json:"type"`
	Comment CommentSnapshot `json:"comment"`
	// Auto is set when the comment was confirmed at creation by its own author.
	Auto       bool      `json:"auto"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher is what services depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Bus fans every event out to all subscribed handlers in subscription order.
// A failing handler is logged and does not stop the others.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	log      *slog.Logger
}

func NewBus(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{log: log}
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			b.log.Error("event handler failed",
				"event", event.Type,
				"comment_id", event.Comment.ID,
				"error", err)
		}
	}
}

// Recorder is a Publisher that keeps every event; used by tests and dry runs.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
