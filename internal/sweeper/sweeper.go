// Package sweeper removes access tokens that can never authenticate
// again. Expired and revoked rows stay around for a retention window
// (audit trails, support lookups) and are then deleted for good.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/talgatov/auth-api/internal/metrics"
	"github.com/talgatov/auth-api/internal/repository"
)

type Sweeper struct {
	tokens    repository.TokenRepository
	schedule  cron.Schedule
	retention time.Duration
	logger    *slog.Logger
}

// New parses the cron expression (standard five-field syntax) and
// builds a sweeper that keeps dead tokens for retention before
// deleting them.
func New(tokens repository.TokenRepository, cronExpr string, retention time.Duration, logger *slog.Logger) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse sweep cron %q: %w", cronExpr, err)
	}
	return &Sweeper{
		tokens:    tokens,
		schedule:  schedule,
		retention: retention,
		logger:    logger.With("component", "sweeper"),
	}, nil
}

// Start blocks, sweeping on the configured schedule until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("sweeper started", "retention", s.retention)

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("sweeper shut down")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single sweep cycle. Start calls it on schedule; it
// is exported so an operator task can trigger it directly.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	start := time.Now()
	cutoff := start.Add(-s.retention)

	deleted, err := s.tokens.DeleteDead(ctx, cutoff)
	if err != nil {
		s.logger.Error("sweep dead tokens", "error", err)
		return
	}

	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	if deleted > 0 {
		metrics.TokensSweptTotal.Add(float64(deleted))
		s.logger.Info("swept dead tokens", "count", deleted)
	}
}
