package movies

import (
	"context"
	"log"
	"time"

	"github.com/sourcegraph/conc/pool"

	"cinehub/models"
)

// errorBackoff is the shortened sleep after a failed warmup sweep.
const errorBackoff = 5 * time.Minute

// Syncer keeps the trending cache warm by sweeping every media kind and time
// window combination on a fixed interval.
type Syncer struct {
	service  *Service
	interval time.Duration
}

// NewSyncer creates a trending warmup task.
func NewSyncer(service *Service, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Syncer{service: service, interval: interval}
}

// Run sweeps until ctx is cancelled. A failed sweep is logged and retried on
// a shortened backoff; it never halts the schedule.
func (s *Syncer) Run(ctx context.Context) {
	for {
		wait := s.interval
		if err := s.sweep(ctx); err != nil {
			log.Printf("[syncer] trending sweep failed: %v", err)
			wait = errorBackoff
		} else {
			log.Printf("[syncer] trending sweep completed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (s *Syncer) sweep(ctx context.Context) error {
	p := pool.New().WithErrors().WithContext(ctx)

	for _, mediaType := range []models.MediaType{models.MediaTypeMovie, models.MediaTypeTV} {
		for _, window := range []models.TimeWindow{models.TimeWindowDay, models.TimeWindowWeek} {
			mediaType, window := mediaType, window
			p.Go(func(ctx context.Context) error {
				_, err := s.service.GetTrending(ctx, mediaType, window, "")
				if err != nil {
					log.Printf("[syncer] warm trending %s/%s: %v", mediaType, window, err)
				}
				return err
			})
		}
	}

	return p.Wait()
}
