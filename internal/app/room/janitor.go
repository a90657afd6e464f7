package room

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartJanitor periodically deletes empty rooms idle for longer than ttl.
func (s *Service) StartJanitor(ctx context.Context, ttl, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				_, _ = s.SweepIdle(ctx, now.Add(-ttl))
			}
		}
	}()
}

func (s *Service) SweepIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.store.DeleteIdleRooms(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("sweep idle rooms failed")
		return 0, err
	}
	if n > 0 {
		log.Info().Str("event", "rooms_swept").Int64("count", n).Time("cutoff", cutoff).Msg("idle rooms deleted")
	}
	return n, nil
}
