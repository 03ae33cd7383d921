// Package retention purges old access logs on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/metrics"
)

// Purger deletes access logs recorded before cutoff.
type Purger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Scheduler struct {
	purger Purger
	keep   time.Duration
	spec   string
	now    func() time.Time
}

// NewScheduler keeps logs for retentionDays. spec is a six field cron
// expression (seconds first).
func NewScheduler(purger Purger, retentionDays int, spec string) *Scheduler {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &Scheduler{
		purger: purger,
		keep:   time.Duration(retentionDays) * 24 * time.Hour,
		spec:   spec,
		now:    time.Now,
	}
}

// RunOnce purges everything older than the retention window.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.keep)
	n, err := s.purger.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge access logs: %w", err)
	}
	metrics.AccessLogsPurged.Add(float64(n))
	logging.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("access log retention run")
	return n, nil
}

// Run starts the cron scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			logging.Error().Err(err).Msg("retention job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule retention job %q: %w", s.spec, err)
	}

	logging.Info().Str("schedule", s.spec).Dur("keep", s.keep).Msg("retention scheduler started")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
