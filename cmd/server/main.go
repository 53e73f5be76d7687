package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/config"
	"github.com/VanAubrey/aws-cert-review/internal/database"
	"github.com/VanAubrey/aws-cert-review/internal/handler"
	"github.com/VanAubrey/aws-cert-review/internal/logger"
	"github.com/VanAubrey/aws-cert-review/internal/metrics"
	"github.com/VanAubrey/aws-cert-review/internal/middleware"
	"github.com/VanAubrey/aws-cert-review/internal/repository"
	"github.com/VanAubrey/aws-cert-review/internal/repository/memory"
	"github.com/VanAubrey/aws-cert-review/internal/router"
	"github.com/VanAubrey/aws-cert-review/internal/service"
	"github.com/VanAubrey/aws-cert-review/internal/validator"
	"github.com/VanAubrey/aws-cert-review/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// stores bundles the persistence backends chosen by STORE_DRIVER.
type stores struct {
	exams    service.ExamStore
	attempts service.AttemptStore
	sessions service.SessionStore
	cache    service.Cache

	// rdb is nil for the memory driver.
	rdb     *redis.Client
	deps    map[string]handler.Pinger
	closers []func()
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting cert review backend")

	// ─── Initialize Validator & Metrics ────────────────────────────────
	validator.Setup()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect Stores ────────────────────────────────────────────────
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open stores")
	}
	defer func() {
		for _, closeFn := range st.closers {
			closeFn()
		}
	}()

	// ─── Initialize Services ──────────────────────────────────────────
	examService := service.NewExamService(st.exams, st.cache, log)
	attemptService := service.NewAttemptService(examService, st.attempts, st.cache, cfg.ResultsCacheTTL, log)
	sessionService := service.NewSessionService(examService, attemptService, st.sessions, service.SessionOptions{
		DefaultQuestionCount: cfg.DefaultQuestionCount,
		UntimedTTL:           cfg.UntimedSessionTTL,
		Grace:                cfg.SessionGrace,
	}, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Exam:    handler.NewExamHandler(examService, sessionService, attemptService, log),
		Session: handler.NewSessionHandler(sessionService, log),
		Result:  handler.NewResultHandler(attemptService, log),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(st.deps, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	expiryWorker := worker.NewExpiryWorker(sessionService, cfg.ExpiryPollInterval, log)
	workers.Go(func() { expiryWorker.Start(workerCtx) })

	if st.rdb != nil {
		resultsWorker := worker.NewResultsCacheWorker(st.rdb, attemptService, log)
		workers.Go(func() { resultsWorker.Start(workerCtx) })
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	stopCleanup := make(chan struct{})
	go limiter.Cleanup(stopCleanup)

	// ─── Prewarm Caches ───────────────────────────────────────────────
	// Load the catalog and every exam into the cache BEFORE accepting traffic.
	if err := examService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, limiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the results queue to drain.
	close(stopCleanup)
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// openStores connects the backends for cfg.StoreDriver.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("Using in-memory stores; data is lost on restart")
		return &stores{
			exams:    memory.NewExamStore(),
			attempts: memory.NewAttemptStore(),
			sessions: memory.NewSessionStore(),
			cache:    memory.NewCache(),
			deps:     map[string]handler.Pinger{},
		}, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &stores{
		exams:    repository.NewExamRepository(pool),
		attempts: repository.NewAttemptRepository(pool),
		sessions: repository.NewSessionRepository(rdb),
		cache:    repository.NewCacheRepository(rdb),
		rdb:      rdb,
		deps: map[string]handler.Pinger{
			"postgres": handler.PingFunc(pool.Ping),
			"redis":    handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		closers: []func(){
			func() { _ = rdb.Close() },
			pool.Close,
		},
	}, nil
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
