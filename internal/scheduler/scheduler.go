// Package scheduler drives periodic pipeline runs in daemon mode.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// RunFunc executes one full aggregation run.
type RunFunc func(ctx context.Context) error

// Scheduler triggers a run immediately on start and then on a fixed
// interval until the context is cancelled.
type Scheduler struct {
	interval time.Duration
	run      RunFunc
	log      *slog.Logger
}

// New creates a scheduler. A zero interval defaults to 24h.
func New(interval time.Duration, run RunFunc, log *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{interval: interval, run: run, log: log}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled. A failed
// run does not stop the loop; the next tick tries again.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler: initial run")
	if err := s.run(ctx); err != nil {
		s.log.Error("scheduler: run failed", "err", err)
	}

	s.log.Info("scheduler: running", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
			s.log.Info("scheduler: scheduled run")
			if err := s.run(ctx); err != nil {
				s.log.Error("scheduler: run failed", "err", err)
			}
		}
	}
}
