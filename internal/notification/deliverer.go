package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bloghub/internal/broadcast"
	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/microservices/http-api/repository"
)

const (
	defaultInitialDelay = 500 * time.Millisecond
	defaultMaxDelay     = 30 * time.Second
)

// Recipients resolves a user id; repository.UserRepository satisfies it.
type Recipients interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Store persists the database copy; repository.NotificationRepository satisfies it.
type Store interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type DelivererConfig struct {
	FrontendURL  string
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Deliverer renders a job, mails it, stores it and pushes it to the
// recipient's private channel.
type Deliverer struct {
	recipients Recipients
	store      Store
	mailer     Mailer
	push       broadcast.Publisher
	cfg        DelivererConfig
	log        *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewDeliverer(recipients Recipients, store Store, mailer Mailer, push broadcast.Publisher, cfg DelivererConfig, log *slog.Logger) *Deliverer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = defaultInitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaultMaxDelay
	}
	return &Deliverer{
		recipients: recipients,
		store:      store,
		mailer:     mailer,
		push:       push,
		cfg:        cfg,
		log:        log,
		sleep:      sleepContext,
	}
}

// Run delivers with exponential backoff. A job that still fails after the
// last attempt is logged and dropped; it never reaches the request that caused it.
func (d *Deliverer) Run(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		d.log.Error("discarding invalid notification job", "error", err)
		return nil
	}

	delay := d.cfg.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		lastErr = d.Deliver(ctx, job)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, errNoRecipient) {
			d.log.Warn("notification recipient gone", "kind", job.Kind, "recipient_id", job.RecipientID)
			return nil
		}
		if attempt == d.cfg.MaxAttempts {
			break
		}
		d.log.Warn("notification delivery failed, retrying",
			"kind", job.Kind,
			"recipient_id", job.RecipientID,
			"attempt", attempt,
			"retry_in", delay,
			"error", lastErr)
		if err := d.sleep(ctx, delay); err != nil {
			return err
		}
		delay = minDuration(delay*2, d.cfg.MaxDelay)
	}

	d.log.Error("notification delivery gave up",
		"kind", job.Kind,
		"recipient_id", job.RecipientID,
		"attempts", d.cfg.MaxAttempts,
		"error", lastErr)
	return nil
}

var errNoRecipient = errors.New("recipient not found")

// Deliver makes a single attempt.
func (d *Deliverer) Deliver(ctx context.Context, job Job) error {
	user, err := d.recipients.FindByID(ctx, job.RecipientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errNoRecipient
		}
		return fmt.Errorf("load recipient: %w", err)
	}

	mail := d.Render(job, user)
	if err := d.mailer.Send(ctx, mail); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	n := &models.Notification{
		UserID:    user.ID,
		Type:      job.Kind,
		PostID:    job.PostID,
		CommentID: job.CommentID,
		Title:     mail.Subject,
		Message:   strings.Join(mail.Lines, " "),
		URL:       mail.ActionURL,
	}
	if err := d.store.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if d.push != nil {
		if err := d.push.Publish(ctx, broadcast.UserChannel(user.ID), broadcast.EventNotificationCreated, n); err != nil {
			// the stored row is the source of truth; the push is best effort
			d.log.Warn("notification push failed", "notification_id", n.ID, "error", err)
		}
	}
	return nil
}

// Render builds the mail for a job.
func (d *Deliverer) Render(job Job, user *models.User) Mail {
	mail := Mail{
		To:         user.Email,
		Greeting:   fmt.Sprintf("Hello %s!", user.Name),
		ActionText: "View comment",
		ActionURL:  d.PostURL(job.PostSlug),
	}
	switch job.Kind {
	case models.NotificationNewComment:
		mail.Subject = "A new comment was posted on your post"
		mail.Lines = []string{fmt.Sprintf("%s commented on %q.", commenter(job), job.PostTitle)}
	case models.NotificationCommentConfirmed:
		mail.Subject = "Your comment was confirmed"
		mail.Lines = []string{fmt.Sprintf("Your comment on %q has been confirmed.", job.PostTitle)}
	}
	return mail
}

// PostURL is the frontend link of a post.
func (d *Deliverer) PostURL(slug string) string {
	return strings.TrimRight(d.cfg.FrontendURL, "/") + "/posts/show/" + slug
}

func commenter(job Job) string {
	if job.Commenter == "" {
		return "Someone"
	}
	return job.Commenter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// minDuration returns the smaller of two durations
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
