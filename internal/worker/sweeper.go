// Package worker runs background jobs of the long-running CLI modes.
package worker

import (
	"context"
	"time"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/domain"
	"ebikerent/internal/models"

	"github.com/rs/zerolog"
)

// Sweeper calls CheckExpired every interval. Failed sweeps back off per the
// retry policy until one succeeds.
type Sweeper struct {
	checker  domain.ExpiredChecker
	interval time.Duration
	retry    apiclient.RetryPolicy
	logger   *zerolog.Logger

	// OnSweep, when set, receives the result of every successful sweep.
	OnSweep func(models.ExpiredCheckResult)
}

func NewSweeper(checker domain.ExpiredChecker, interval time.Duration, logger *zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		checker:  checker,
		interval: interval,
		retry: apiclient.RetryPolicy{
			InitialDelay:  2 * time.Second,
			MaxDelay:      interval,
			BackoffFactor: 2,
		},
		logger: logger,
	}
}

// Run sweeps immediately and then on every tick. It returns when ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("sweeper started")
	defer s.logger.Info().Msg("sweeper stopped")

	failures := 0
	for {
		wait := s.interval
		if err := s.sweep(ctx); err != nil {
			failures++
			wait = s.retry.NextDelay(failures)
			s.logger.Warn().Err(err).Int("attempt", failures).Dur("retry_in", wait).Msg("sweep failed")
		} else {
			failures = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	res, err := s.checker.CheckExpired(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug().Int("started", res.StartedCount).Int("completed", res.CompletedCount).Msg("sweep done")
	if s.OnSweep != nil {
		s.OnSweep(res)
	}
	return nil
}
