package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/gosplit/internal/adapter/http"
	"github.com/iho/gosplit/internal/adapter/http/handler"
	"github.com/iho/gosplit/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/gosplit/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gosplit/internal/adapter/repository/redis"
	"github.com/iho/gosplit/internal/infrastructure/config"
	"github.com/iho/gosplit/internal/infrastructure/logger"
	"github.com/iho/gosplit/internal/infrastructure/metrics"
	"github.com/iho/gosplit/internal/infrastructure/postgres"
	"github.com/iho/gosplit/internal/infrastructure/rates"
	"github.com/iho/gosplit/internal/infrastructure/redis"
	"github.com/iho/gosplit/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Exchange rates: static table, cached in Redis per pivot
	var rateSource usecase.RateSource
	staticSource, err := newRateSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build rate table")
	}
	rateSource = redisRepo.NewRateCache(redisClient, staticSource, cfg.RatesCacheTTL, log.Logger)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	eventRepo := postgresRepo.NewEventRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log.Logger)

	// Initialize use cases
	appMetrics := metrics.New()
	userUC := usecase.NewUserUseCase(userRepo, idGen)
	eventUC := usecase.NewEventUseCase(txManager, eventRepo, userRepo, rateSource, idGen, appMetrics).
		WithRetrier(retrier)
	settlementUC := usecase.NewSettlementUseCase(eventRepo, rateSource, eventUC, appMetrics)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userUC)
	eventHandler := handler.NewEventHandler(eventUC)
	expenseHandler := handler.NewExpenseHandler(eventUC)
	settlementHandler := handler.NewSettlementHandler(settlementUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		UserHandler:       userHandler,
		EventHandler:      eventHandler,
		ExpenseHandler:    expenseHandler,
		SettlementHandler: settlementHandler,
		HealthHandler:     healthHandler,
		Logger:            log.Logger,
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		RateLimiter:       rateLimiter,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func newRateSource(cfg *config.Config) (*rates.StaticSource, error) {
	if cfg.RatesTable != "" {
		return rates.NewStaticSourceFromSpec(cfg.RatesPivot, cfg.RatesTable)
	}
	return rates.NewStaticSource(cfg.RatesPivot)
}
