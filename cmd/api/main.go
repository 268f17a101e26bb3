package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/safiripay/payment-core/internal/domain/entity"
	"github.com/safiripay/payment-core/internal/domain/usecase/health"
	"github.com/safiripay/payment-core/internal/domain/usecase/lock"
	paymentUseCase "github.com/safiripay/payment-core/internal/domain/usecase/payment"
	"github.com/safiripay/payment-core/internal/domain/usecase/ratelimit"
	"github.com/safiripay/payment-core/internal/domain/usecase/readcache"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/api/handler"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/api/routes"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/cache"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/database"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/logger"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/notify"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/provider"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/repository"
	timeProvider "github.com/safiripay/payment-core/internal/infrastructure/adapter/time"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/walletledger"
	"github.com/safiripay/payment-core/internal/infrastructure/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production, cfg.Logger.Level)
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	// Durable storage
	conn, err := database.NewConnection(cfg.Database, cfg.Logger.Level)
	if err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer conn.Close()

	if err := conn.Migrate(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	// Cache store
	redisClient := cache.NewRedisClient(cfg.Redis)
	store := cache.NewRedisStore(redisClient)
	if err := store.Ping(context.Background()); err != nil {
		appLogger.Error("Failed to connect to redis", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer redisClient.Close()

	// Repositories
	paymentRepo := repository.NewPaymentRepository(conn.DB, appLogger)
	healthRepo := repository.NewProviderHealthRepository(conn.DB, appLogger)
	methodRepo := repository.NewPaymentMethodRepository(conn.DB, appLogger)

	// External collaborators
	ledgerClient := walletledger.NewHTTPClient(cfg.Ledger, appLogger)
	notifier := notify.NewHTTPNotifier(cfg.Notifier, appLogger)

	// Core primitives
	locks := lock.NewDistributedLock(store, tp, appLogger)
	lockOpts := lock.Options{
		TTL:        cfg.Lock.TTL,
		Retries:    cfg.Lock.Retries,
		RetryDelay: cfg.Lock.RetryDelay,
	}
	limiter := ratelimit.NewLimiter(store, tp, appLogger)
	healthTracker := health.NewTracker(store, healthRepo, tp, appLogger, health.Config{
		StatusTTL:         cfg.Health.StatusTTL,
		LatencyWindowSize: cfg.Health.LatencyWindowSize,
		LatencyTTL:        cfg.Health.LatencyTTL,
		ResultTTL:         cfg.Health.ResultTTL,
		Policy: entity.HealthPolicy{
			FailureThreshold:   cfg.Health.FailureThreshold,
			StaleBadSignalHold: cfg.Health.StaleBadSignalHold,
		},
	})

	// Read-through caches
	balanceCache := readcache.NewWalletBalanceCache(store, ledgerClient, appLogger, cfg.Cache.BalanceTTL, cfg.Currencies)
	methodCache := readcache.NewPaymentMethodCache(store, methodRepo, appLogger, cfg.Cache.MethodTTL)

	// Orchestrator
	paymentService := paymentUseCase.NewService(
		paymentRepo,
		paymentUseCase.DefaultRoutingTable(),
		healthTracker,
		locks,
		lockOpts,
		ledgerClient,
		balanceCache,
		methodCache,
		notifier,
		tp,
		appLogger,
	)
	if cfg.Providers.Mpesa.Enabled {
		paymentService.RegisterAdapter(provider.NewMpesaAdapter(cfg.Providers.Mpesa, appLogger))
	}
	if cfg.Providers.Paystack.Enabled {
		paymentService.RegisterAdapter(provider.NewPaystackAdapter(cfg.Providers.Paystack, appLogger))
	}

	// HTTP layer
	paymentHandler := handler.NewPaymentHandler(paymentService, appLogger)
	healthHandler := handler.NewHealthHandler(paymentService, store, appLogger)

	router := gin.New()
	routes.SetupMiddlewares(router, limiter, cfg.RateLimit, appLogger)
	routes.SetupRoutes(router, paymentHandler, healthHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{"error": err.Error()})
	}

	appLogger.Info("Server exited gracefully", nil)
}
