package database

import (
	"context"
	"fmt"

	"github.com/VanAubrey/aws-cert-review/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedisClient connects the client shared by sessions, caches and the
// results queue.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	log = log.With().Str("component", "redis").Logger()
	ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	if err := pingWithRetry(ctx, cfg.ConnectRetries, log, ping); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Int("pool_size", opt.PoolSize).
		Msg("Redis connected")

	return rdb, nil
}
