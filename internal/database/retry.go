package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const retryBaseDelay = 500 * time.Millisecond

// pingWithRetry calls ping until it succeeds, doubling the wait between
// attempts. Containers started together often come up out of order.
func pingWithRetry(ctx context.Context, attempts int, log zerolog.Logger, ping func(context.Context) error) error {
	attempts = max(attempts, 1)
	delay := retryBaseDelay

	var err error
	for i := 1; i <= attempts; i++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		log.Warn().Err(err).Int("attempt", i).Dur("retry_in", delay).Msg("Store not reachable yet")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
