package worker

import (
	"context"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/config"
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	WarmBatchSize    = 50
	WarmBatchTimeout = 500 * time.Millisecond
	WarmPollTimeout  = 1 * time.Second
)

// ResultsWarmer loads an attempt's stored results into the cache.
type ResultsWarmer interface {
	WarmResults(ctx context.Context, attemptID uuid.UUID) (*model.Results, error)
}

// ResultsCacheWorker consumes warm_results_queue so freshly graded attempts
// are served from Redis on their first results query.
type ResultsCacheWorker struct {
	rdb    *redis.Client
	warmer ResultsWarmer
	log    zerolog.Logger
}

// NewResultsCacheWorker creates a new ResultsCacheWorker.
func NewResultsCacheWorker(rdb *redis.Client, warmer ResultsWarmer, log zerolog.Logger) *ResultsCacheWorker {
	return &ResultsCacheWorker{
		rdb:    rdb,
		warmer: warmer,
		log:    log.With().Str("component", "results_cache_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ResultsCacheWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultsCacheWorker started")

	batch := make([]uuid.UUID, 0, WarmBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= WarmBatchSize || time.Since(lastFlush) >= WarmBatchTimeout) {
			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested, dropping pending warm requests")
			return

		default:
			item, err := w.rdb.BLPop(ctx, WarmPollTimeout, config.WorkerKey.WarmResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			id, err := uuid.Parse(item[1])
			if err != nil {
				w.log.Error().Err(err).Str("payload", item[1]).Msg("Invalid attempt id")
				continue
			}
			batch = append(batch, id)
		}
	}
}

// flush warms each distinct attempt of batch. Failures are logged and
// dropped; Results falls back to the store on a cache miss.
func (w *ResultsCacheWorker) flush(ctx context.Context, batch []uuid.UUID) {
	seen := make(map[uuid.UUID]bool, len(batch))
	warmed := 0
	for _, id := range batch {
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, err := w.warmer.WarmResults(ctx, id); err != nil {
			w.log.Warn().Err(err).Str("attempt_id", id.String()).Msg("Failed to warm results")
			continue
		}
		warmed++
	}
	w.log.Debug().Int("warmed", warmed).Int("batch", len(batch)).Msg("Results batch flushed")
}
