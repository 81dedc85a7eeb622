package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/richxcame/invoice-insights/internal/analytics"
	"github.com/richxcame/invoice-insights/internal/currency"
	"github.com/richxcame/invoice-insights/internal/invoices"
	"github.com/richxcame/invoice-insights/migrations"
	"github.com/richxcame/invoice-insights/pkg/config"
	"github.com/richxcame/invoice-insights/pkg/database"
	"github.com/richxcame/invoice-insights/pkg/health"
	"github.com/richxcame/invoice-insights/pkg/logger"
	"github.com/richxcame/invoice-insights/pkg/redis"
	"github.com/richxcame/invoice-insights/pkg/storage"
)

const (
	serviceName = "invoice-insights"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sentryEnabled := cfg.Sentry.DSN != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Environment,
			Release:     serviceName + "@" + version,
		}); err != nil {
			logger.Warn("Failed to initialize Sentry, continuing without error reporting", zap.Error(err))
			sentryEnabled = false
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	db := database.OpenDB(pool)
	defer db.Close()
	logger.Info("Connected to PostgreSQL database")

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg.Database.URL()); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	checkerCfg := health.DefaultCheckerConfig()
	checks := map[string]func() error{
		"database": health.DatabaseChecker(db, checkerCfg),
	}

	var snapshotStore currency.SnapshotStore
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, exchange rates will not be shared", zap.Error(err))
		} else {
			defer redisClient.Close()
			snapshotStore = currency.NewRedisSnapshotStore(redisClient, cfg.Currency.RatesTTL)
			checks["redis"] = health.RedisChecker(redisClient.Client, checkerCfg)
			logger.Info("Connected to Redis")
		}
	}

	provider := currency.NewCurrencyFreaksProvider(cfg.Currency.APIURL, cfg.Currency.APIKey, cfg.Currency.HTTPTimeout)
	rates := currency.NewRateCache(provider, snapshotStore, currency.CacheOptions{
		BaseCurrency: cfg.Currency.BaseCurrency,
		TTL:          cfg.Currency.RatesTTL,
		ServeStale:   cfg.Currency.ServeStale,
	})

	var archiver invoices.Archiver
	if cfg.Archive.Enabled {
		store, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
		})
		if err != nil {
			logger.Fatal("Failed to initialize upload archive", zap.Error(err))
		}
		archiver = invoices.NewStorageArchiver(store, cfg.Archive.Prefix)
		logger.Info("Upload archiving enabled", zap.String("bucket", cfg.Archive.Bucket))
	}

	rounding, err := currency.ParseRoundingMode(cfg.Currency.RoundingMode)
	if err != nil {
		logger.Fatal("Invalid rounding mode", zap.Error(err))
	}

	invoiceService := invoices.NewService(invoices.NewRepository(db), archiver)
	analyticsService := analytics.NewService(
		analytics.NewRepository(db),
		rates,
		analytics.UnknownCurrencyPolicy(cfg.Currency.UnknownPolicy),
	).WithRounding(rounding)

	router := setupRouter(routerDeps{
		cfg:       cfg,
		invoices:  invoices.NewHandler(invoiceService, cfg.Import.Timeout),
		analytics: analytics.NewHandler(analyticsService),
		currency:  currency.NewHandler(rates),
		checks:    checks,
		sentry:    sentryEnabled,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Starting invoice insights service",
			zap.String("port", cfg.Server.Port),
			zap.String("base_currency", cfg.Currency.BaseCurrency),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

func migrateUp(databaseURL string) error {
	migrator, err := database.NewMigrator(migrations.FS, databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close()
	return migrator.Up()
}
