package app

import (
	"context"
	"log"
	"time"

	"github.com/hirecrest/talentline/internal/services/pipeline/domain"
)

const defaultPollInterval = time.Minute

// ReconcileRunner executes one reconciliation pass over open cases.
type ReconcileRunner interface {
	Run(ctx context.Context) ([]domain.ReconcileResult, error)
}

// Scheduler drives periodic background-check reconciliation. One pass runs
// immediately on start, then one per interval until the context is done.
type Scheduler struct {
	runner   ReconcileRunner
	interval time.Duration
	logf     func(format string, args ...any)
}

// NewScheduler constructs a reconciliation scheduler.
func NewScheduler(runner ReconcileRunner, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logf:     log.Printf,
	}
}

// SetLogf overrides the diagnostic log sink, primarily for tests.
func (s *Scheduler) SetLogf(logf func(format string, args ...any)) {
	if s == nil || logf == nil {
		return
	}
	s.logf = logf
}

// Run executes reconciliation passes until ctx is cancelled. A failed pass
// is logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	if s == nil || s.runner == nil {
		return domain.ErrVendorNotConfigured
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	results, err := s.runner.Run(ctx)
	if err != nil {
		s.logf("reconciliation pass failed: %v", err)
		return
	}

	changed := 0
	failed := 0
	for _, result := range results {
		// A result can land in both buckets: the status write stands even
		// when the follow-up notification fails.
		if result.Changed {
			changed++
		}
		if result.Err != nil {
			failed++
		}
	}
	s.logf("reconciliation pass: %d cases polled, %d updated, %d failed", len(results), changed, failed)
}
