package jobs

import (
	"context"
	"log/slog"
	"time"
)

// Job is one scheduled unit of work.
type Job interface {
	Run(ctx context.Context) (int64, error)
}

// Scheduler runs a job on a fixed interval. Failures are logged and the next
// tick runs as usual; nothing is returned to a caller.
type Scheduler struct {
	name     string
	job      Job
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger
}

func NewScheduler(name string, job Job, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		name:     name,
		job:      job,
		interval: interval,
		timeout:  5 * time.Minute,
		log:      log,
	}
}

// Start blocks until ctx is cancelled. When runNow is set the first pass
// happens immediately instead of after one interval.
func (s *Scheduler) Start(ctx context.Context, runNow bool) {
	s.log.Info("scheduler started", "job", s.name, "interval", s.interval)
	if runNow {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped", "job", s.name)
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.job.Run(runCtx)
	if err != nil {
		s.log.Error("scheduled job failed", "job", s.name, "error", err)
		return
	}
	s.log.Debug("scheduled job finished", "job", s.name, "affected", n, "took", time.Since(start))
}
