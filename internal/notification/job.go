// Package notification delivers "new comment" and "comment confirmed"
// notices asynchronously, at least once, off the request path.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"bloghub/internal/events"
	"bloghub/internal/microservices/http-api/models"
)

// Job is one notice for one recipient. It is self-contained so it can cross a broker.
type Job struct {
	Kind        models.NotificationType `json:"kind"`
	RecipientID string                  `json:"recipient_id"`
	CommentID   int64                   `json:"comment_id"`
	PostID      int64                   `json:"post_id"`
	PostSlug    string                  `json:"post_slug"`
	PostTitle   string                  `json:"post_title"`
	Commenter   string                  `json:"commenter"`
}

func (j Job) Validate() error {
	switch j.Kind {
	case models.NotificationNewComment, models.NotificationCommentConfirmed:
	default:
		return fmt.Errorf("unknown notification kind %q", j.Kind)
	}
	if j.RecipientID == "" {
		return fmt.Errorf("%s notification has no recipient", j.Kind)
	}
	return nil
}

func (j Job) Marshal() ([]byte, error) {
	return json.Marshal(j)
}

func UnmarshalJob(data []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	return j, j.Validate()
}

// Queue accepts jobs for asynchronous delivery.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// JobsFor maps a confirmation event to its notices: "new comment" to the
// post author always, "comment confirmed" to the commenter on explicit confirms.
func JobsFor(e events.Event) []Job {
	if e.Type != events.CommentConfirmed {
		return nil
	}
	c := e.Comment
	base := Job{
		CommentID: c.ID,
		PostID:    c.PostID,
		PostSlug:  c.PostSlug,
		PostTitle: c.PostTitle,
		Commenter: c.AuthorName,
	}
	var jobs []Job
	if c.PostAuthorID != "" {
		j := base
		j.Kind = models.NotificationNewComment
		j.RecipientID = c.PostAuthorID
		jobs = append(jobs, j)
	}
	if !e.Auto && c.AuthorID != "" {
		j := base
		j.Kind = models.NotificationCommentConfirmed
		j.RecipientID = c.AuthorID
		jobs = append(jobs, j)
	}
	return jobs
}

// NewEventHandler enqueues the notices for every confirmation event.
func NewEventHandler(q Queue) events.Handler {
	return events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		for _, job := range JobsFor(e) {
			if err := q.Enqueue(ctx, job); err != nil {
				return fmt.Errorf("enqueue %s for %s: %w", job.Kind, job.RecipientID, err)
			}
		}
		return nil
	})
}
