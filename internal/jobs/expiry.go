// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-quote-backend/internal/services"
)

// DefaultSchedule sweeps once a minute.
const DefaultSchedule = "@every 1m"

// Expirer writes back the expired status of overdue quote requests.
type Expirer interface {
	ExpireOverdue(ctx context.Context) (services.ExpiryResult, error)
}

// Purger drops expired idempotency records.
type Purger interface {
	PurgeIdempotency(ctx context.Context) (int64, error)
}

// ExpirySweeper periodically persists expiry. Reads already treat a sent
// request past its deadline as expired; the sweep makes the stored status
// and any pending responses agree with that view.
type ExpirySweeper struct {
	Expirer  Expirer
	Purger   Purger
	Schedule string
	// Timeout bounds a single sweep; 30s when zero.
	Timeout time.Duration
	Logger  *zerolog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// Start schedules the sweep. It returns an error for an invalid schedule or
// when already started.
func (s *ExpirySweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("expiry sweeper already started")
	}
	if s.Expirer == nil {
		return errors.New("expiry sweeper needs an expirer")
	}

	l := s.logger().With().Str("job", "expiry_sweep").Logger()
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cron.PrintfLogger(&l)),
		cron.WithChain(cron.Recover(cron.PrintfLogger(&l)), cron.SkipIfStillRunning(cron.PrintfLogger(&l))),
	)
	spec := s.Schedule
	if spec == "" {
		spec = DefaultSchedule
	}
	if _, err := c.AddFunc(spec, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	l.Info().Str("schedule", spec).Msg("expiry sweeper started")
	return nil
}

// RunOnce performs a single sweep and returns the request expiry counts.
// Idempotency purge failures are logged but do not fail the sweep.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (services.ExpiryResult, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	l := s.logger()
	res, err := s.Expirer.ExpireOverdue(ctx)
	if err != nil {
		l.Error().Err(err).Msg("expiry sweep failed")
		return res, err
	}
	if res.Requests > 0 {
		l.Info().Int64("requests", res.Requests).Int64("responses", res.Responses).Msg("expired overdue quote requests")
	}

	if s.Purger != nil {
		if n, err := s.Purger.PurgeIdempotency(ctx); err != nil {
			l.Warn().Err(err).Msg("idempotency purge failed")
		} else if n > 0 {
			l.Debug().Int64("purged", n).Msg("purged idempotency records")
		}
	}
	return res, nil
}

// Stop halts scheduling and waits for a running sweep, bounded by ctx.
func (s *ExpirySweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ExpirySweeper) logger() *zerolog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return &log.Logger
}
