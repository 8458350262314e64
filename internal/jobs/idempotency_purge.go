// Package jobs runs the background maintenance tasks of the API server.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/sangkips/dentalbill-api/internal/domain/repository"
)

// IdempotencyPurger deletes idempotency keys whose replay window has passed
type IdempotencyPurger struct {
	repo repository.IdempotencyRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewIdempotencyPurger creates a new purger
func NewIdempotencyPurger(repo repository.IdempotencyRepository, log zerolog.Logger) *IdempotencyPurger {
	return &IdempotencyPurger{
		repo: repo,
		log:  log.With().Str("job", "idempotency_purge").Logger(),
		now:  time.Now,
	}
}

// Purge removes expired keys once and returns how many were deleted
func (p *IdempotencyPurger) Purge(ctx context.Context) (int64, error) {
	deleted, err := p.repo.DeleteExpired(ctx, p.now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.log.Info().Int64("deleted", deleted).Msg("expired idempotency keys purged")
	}
	return deleted, nil
}

// Start schedules Purge every interval and returns the running scheduler.
// Callers stop it with Stop on shutdown.
func (p *IdempotencyPurger) Start(interval time.Duration) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.Local)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := p.Purge(ctx); err != nil {
			p.log.Error().Err(err).Msg("idempotency purge failed")
		}
	})
	if err != nil {
		return nil, err
	}

	scheduler.StartAsync()
	p.log.Info().Dur("interval", interval).Msg("idempotency purge scheduled")
	return scheduler, nil
}
