package listings

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartSweeper runs the expiration sweep on a ticker until ctx is cancelled.
// Each tick expires due listings and logs how many sellers are inside the
// warning window; the actual notification delivery belongs to the excluded
// messaging layer.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Service) sweep(ctx context.Context) {
	now := s.now()
	expired, err := s.ExpireDue(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("expiration sweep failed")
		return
	}
	soon, err := s.ExpiringSoon(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("expiration warning query failed")
		return
	}
	log.Info().Int64("expired", expired).Int("expiring_soon", len(soon)).Msg("expiration sweep completed")
}
