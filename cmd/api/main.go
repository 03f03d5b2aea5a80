package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/luxaccount/media-platform/internal/adapter/repo"
	"github.com/luxaccount/media-platform/internal/http/handlers"
	"github.com/luxaccount/media-platform/internal/http/httpapi"
	"github.com/luxaccount/media-platform/internal/infra"
	"github.com/luxaccount/media-platform/internal/infra/geoip"
	"github.com/luxaccount/media-platform/internal/lifecycle"
	"github.com/luxaccount/media-platform/internal/middleware"
	"github.com/luxaccount/media-platform/internal/queue"
	"github.com/luxaccount/media-platform/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to connect database")
	}
	defer dbpool.Close()

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to connect redis")
	}
	defer redisClient.Close()

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure storage")
	}

	requests := repo.NewRequestRepository(dbpool)
	users := repo.NewUserRepository(dbpool)
	payments := repo.NewPaymentRepository(dbpool)
	assets := repo.NewAssetRepository(dbpool)
	analytics := repo.NewAnalyticsRepository(dbpool)

	publisher := queue.NewRedisQueue(redisClient, cfg.QueueName)
	engine := lifecycle.NewEngine(requests, users, publisher, logger)

	app := &handlers.App{
		Engine:    engine,
		Users:     users,
		Payments:  payments,
		Assets:    assets,
		Analytics: analytics,
		Store:     fileStore,
		DB:        dbpool,
		Redis:     redisClient,
		Validate:  validator.New(),
		Logger:    logger,
		Config:    cfg,
	}

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("api: geoip database unavailable, country detection disabled")
	} else if resolver != nil {
		defer resolver.Close()
		countryLookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		JWTSecret:       cfg.JWTSecret,
		CORSOrigins:     cfg.CORSOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   countryLookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("api: listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("api: http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: failed to shutdown server")
	}
	logger.Info().Msg("api: stopped")
}
