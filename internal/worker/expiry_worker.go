package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpiryBatchSize caps how many expired sessions one poll submits.
const ExpiryBatchSize = 100

// ExpiredSubmitter auto-submits timed sessions whose deadline has passed.
type ExpiredSubmitter interface {
	SubmitExpired(ctx context.Context, limit int64) (int, error)
}

// ExpiryWorker enforces the deadline of timed sessions that no client is
// driving, by polling the deadline index.
type ExpiryWorker struct {
	sessions ExpiredSubmitter
	interval time.Duration
	log      zerolog.Logger
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(sessions ExpiredSubmitter, interval time.Duration, log zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Second
	}
	return &ExpiryWorker{
		sessions: sessions,
		interval: interval,
		log:      log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start begins the polling loop. Call in a goroutine.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("ExpiryWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ExpiryWorker stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll drains expired sessions in batches until a batch comes back short.
func (w *ExpiryWorker) poll(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := w.sessions.SubmitExpired(ctx, ExpiryBatchSize)
		if err != nil {
			if ctx.Err() == nil {
				w.log.Error().Err(err).Msg("Expired session scan failed")
			}
			return
		}
		if n > 0 {
			w.log.Info().Int("count", n).Msg("Auto-submitted expired sessions")
		}
		if n < ExpiryBatchSize {
			return
		}
	}
}
