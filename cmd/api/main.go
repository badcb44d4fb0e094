package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-ledger/config"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	"wallet-ledger/internal/adapter/http/middleware"
	kafkaMessaging "wallet-ledger/internal/adapter/messaging/kafka"
	memStorage "wallet-ledger/internal/adapter/storage/memory"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting wallet ledger")

	ctx := context.Background()
	var checkers []ports.HealthChecker

	// Initialize transaction store
	var store ports.TransactionStore
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		mem := memStorage.NewTransactionStore()
		store = mem
		checkers = append(checkers, mem)
		log.Warn().Msg("Using in-memory transaction store, data is lost on exit")
	default:
		if cfg.Database.Migrate {
			if err := pgStorage.Migrate(cfg.Database.DSN(), logger.Component(log, "migrate")); err != nil {
				log.Fatal().Err(err).Msg("Failed to apply migrations")
			}
		}

		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		log.Info().Msg("PostgreSQL connected")

		store = pgStorage.NewTransactionRepo(pool)
		checkers = append(checkers, pgStorage.NewHealthCheck(pool))
	}

	// Initialize Redis stores
	var (
		idempotencyCache ports.IdempotencyCache
		rateLimitStore   ports.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		idempotencyCache = redisStorage.NewIdempotencyCache(rdb)
		if cfg.RateLimit.Enabled {
			rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		}
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
	}

	// Initialize ledger event publisher
	var publisher ports.TransactionPublisher
	if cfg.Kafka.Enabled {
		kp := kafkaMessaging.NewPublisher(kafkaMessaging.NewWriter(cfg.Kafka))
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close Kafka writer")
			}
		}()
		publisher = kp
		checkers = append(checkers, kafkaMessaging.NewHealthCheck(cfg.Kafka.Brokers))
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publisher enabled")
	}

	// Initialize business services
	walletSvc := service.NewWalletService(
		store,
		publisher,
		service.NewRetryPolicy(cfg.Retry.MaxRetries, cfg.Retry.BaseDelay),
		logger.Component(log, "wallet_service"),
	)

	// Load OpenAPI spec for the docs UI
	var spec []byte
	if cfg.Server.EnableDocs {
		if spec, err = os.ReadFile(cfg.Server.DocsPath); err == nil {
			log.Info().Msg("OpenAPI spec loaded for docs UI at /docs")
		} else {
			log.Warn().Err(err).Msg("OpenAPI spec not found, docs UI will be unavailable")
		}
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:        walletSvc,
		IdempotencyCache: idempotencyCache,
		IdempotencyTTL:   cfg.Idempotency.TTL,
		RateLimitStore:   rateLimitStore,
		RateLimit: middleware.RateLimitRule{
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		},
		HealthCheckers: checkers,
		Server:         cfg.Server,
		OpenAPISpec:    spec,
		Logger:         logger.Component(log, "http"),
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
