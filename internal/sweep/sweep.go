// Package sweep runs the background history cleanup.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper deletes records created before a cutoff.
type Sweeper interface {
	SweepOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Start periodically deletes records older than maxAge. It blocks until the
// context is cancelled.
func Start(ctx context.Context, store Sweeper, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.SweepOlderThan(ctx, now.Add(-maxAge))
			if err != nil {
				log.Debug().Err(err).Msg("history sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("history swept")
			}
		}
	}
}
