package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/luxaccount/media-platform/internal/adapter/repo"
	"github.com/luxaccount/media-platform/internal/generator"
	"github.com/luxaccount/media-platform/internal/infra"
	"github.com/luxaccount/media-platform/internal/lifecycle"
	"github.com/luxaccount/media-platform/internal/queue"
	"github.com/luxaccount/media-platform/internal/storage"
	"github.com/luxaccount/media-platform/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer dbpool.Close()

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: redis connection failed")
	}
	defer redisClient.Close()

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	requests := repo.NewRequestRepository(dbpool)
	users := repo.NewUserRepository(dbpool)
	assets := repo.NewAssetRepository(dbpool)
	analytics := repo.NewAnalyticsRepository(dbpool)

	jobs := queue.NewRedisQueue(redisClient, cfg.QueueName)
	engine := lifecycle.NewEngine(requests, users, jobs, logger)

	var gen generator.Generator = generator.NewSynthetic(cfg.GenerationDelay, logger)
	if cfg.GenerationAPIURL != "" {
		gen = generator.NewRemote(generator.RemoteOptions{
			BaseURL: cfg.GenerationAPIURL,
			APIKey:  cfg.GenerationAPIKey,
			Timeout: cfg.GenerationTimeout,
		})
		logger.Info().Str("backend", cfg.GenerationAPIURL).Msg("worker: using remote generation backend")
	} else {
		logger.Warn().Msg("worker: no generation backend configured, using synthetic assets")
	}

	w := worker.New(worker.Config{
		Engine:     engine,
		Consumer:   jobs,
		Publisher:  jobs,
		Generator:  gen,
		Assets:     assets,
		Analytics:  analytics,
		Store:      fileStore,
		Logger:     logger,
		GenTimeout: cfg.GenerationTimeout,
	})

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
