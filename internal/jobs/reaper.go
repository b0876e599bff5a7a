// Package jobs holds the background work that runs outside the request path.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxAge is how old an unengaged post must be before it is reaped.
const DefaultMaxAge = 7 * 24 * time.Hour

// StalePostDeleter is the slice of repository.PostRepository the reaper needs.
type StalePostDeleter interface {
	DeleteStale(ctx context.Context, createdBefore time.Time) (int64, error)
}

// Reaper soft-deletes posts older than MaxAge that have no confirmed comment.
type Reaper struct {
	posts  StalePostDeleter
	maxAge time.Duration
	now    func() time.Time
	log    *slog.Logger
}

func NewReaper(posts StalePostDeleter, maxAge time.Duration, log *slog.Logger) *Reaper {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Reaper{
		posts:  posts,
		maxAge: maxAge,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// Run performs one pass. The batch is a single statement, so it either
// removes every matching post or none.
func (r *Reaper) Run(ctx context.Context) (int64, error) {
	cutoff := r.now().Add(-r.maxAge)
	deleted, err := r.posts.DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reap posts created before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	r.log.Info("stale posts reaped", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}
