package broadcast

import (
	"context"
	"errors"
	"time"

	"bloghub/internal/events"
)

// CommentAdded is the payload of the comment.added event.
type CommentAdded struct {
	ID          int64     `json:"id"`
	Body        string    `json:"body"`
	PostID      int64     `json:"post_id"`
	PostSlug    string    `json:"post_slug"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// NewEventHandler turns a confirmed comment into comment.added on the global
// comments channel and on the post's own channel.
func NewEventHandler(pub Publisher) events.Handler {
	return events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		if e.Type != events.CommentConfirmed {
			return nil
		}
		c := e.Comment
		payload := CommentAdded{
			ID:          c.ID,
			Body:        c.Body,
			PostID:      c.PostID,
			PostSlug:    c.PostSlug,
			AuthorID:    c.AuthorID,
			AuthorName:  c.AuthorName,
			ConfirmedAt: c.ConfirmedAt.UTC(),
		}
		return errors.Join(
			pub.Publish(ctx, ChannelComments, EventCommentAdded, payload),
			pub.Publish(ctx, PostChannel(c.PostID), EventCommentAdded, payload),
		)
	})
}
