package schedule

import (
	"context"
	"log/slog"
	"time"
)

const defaultInterval = time.Minute

// Job is a unit of periodic work. Run is given the tick's context and should
// return once its batch is handled; errors are logged, never fatal.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner executes a fixed set of jobs on a shared ticker. Jobs run
// sequentially within one tick so they see a consistent view of the window.
type Runner struct {
	interval time.Duration
	jobs     []Job
	logger   *slog.Logger
}

func NewRunner(interval time.Duration, logger *slog.Logger, jobs ...Job) *Runner {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{interval: interval, jobs: jobs, logger: logger}
}

// Start blocks until ctx is cancelled. The first pass runs immediately so a
// restart does not wait out a full interval.
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("schedule runner started", "interval", r.interval, "jobs", len(r.jobs))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runAll(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("schedule runner stopped")
			return
		case <-ticker.C:
			r.runAll(ctx)
		}
	}
}

func (r *Runner) runAll(ctx context.Context) {
	for _, job := range r.jobs {
		if ctx.Err() != nil {
			return
		}
		if err := job.Run(ctx); err != nil {
			r.logger.Error("scheduled job failed", "job", job.Name(), "error", err)
		}
	}
}
