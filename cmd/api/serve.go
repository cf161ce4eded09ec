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

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-events-api/internal/cache"
	"campus-events-api/internal/client"
	"campus-events-api/internal/config"
	"campus-events-api/internal/database"
	"campus-events-api/internal/job"
	"campus-events-api/internal/lock"
	"campus-events-api/internal/metrics"
	"campus-events-api/internal/repository"
	"campus-events-api/internal/router"
	"campus-events-api/internal/service"
	"campus-events-api/internal/tracing"
)

const dbStatsInterval = 15 * time.Second

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	return database.New(database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.SafeAutoMigrate(db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Campus Events API",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("db_driver", cfg.Database.Driver),
	)

	if cfg.JWT.Secret == "" {
		logger.Warn("JWT secret is empty, every authenticated request will be rejected")
	}

	ctx := context.Background()

	tracerProvider, err := tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	logger.Info("Database connected successfully")

	if err := database.SafeAutoMigrateWithRetry(db, logger, 3); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	m := metrics.NewWithLogger(logger)
	database.RegisterMetricsCallbacks(db, m)
	statsDone := database.StartDBStatsCollector(db, m, dbStatsInterval)
	defer close(statsDone)

	redisClient := connectRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	locker := lock.New(cfg.Lock, redisClient, logger)

	var storage service.ImageStorage
	if cfg.S3.Bucket != "" && cfg.S3.Region != "" {
		s3Client, err := client.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, event images disabled", zap.Error(err))
		} else {
			storage = s3Client
			logger.Info("S3 client initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Warn("S3 configuration incomplete, event images disabled")
	}

	var notifier client.NotificationClient
	if cfg.Notification.BaseURL != "" {
		notifier = client.NewNotificationClient(
			cfg.Notification.BaseURL,
			cfg.Notification.InternalAPIKey,
			cfg.Notification.Timeout,
			logger,
			m,
		)
	} else {
		notifier = client.NewNoOpNotificationClient()
	}

	collector := metrics.NewBusinessMetricsCollector(
		repository.NewEventRepository(db).Count,
		repository.NewParticipationRepository(db).CountAll,
		m,
		cfg.Jobs.MetricsSchedule,
		logger,
	)
	if err := collector.Start(); err != nil {
		logger.Warn("Failed to start business metrics collector", zap.Error(err))
	} else {
		defer collector.Stop()
	}

	eventCache := cache.NewEventCache(cfg.Cache.EventTTL, cfg.Cache.CleanupInterval)

	if storage != nil {
		eventRepo := repository.NewEventRepository(db)
		eventService := service.NewEventService(
			eventRepo,
			repository.NewParticipationRepository(db),
			repository.NewUnitOfWork(db),
			locker,
			eventCache,
			storage,
			m,
			tracerProvider.Tracer(),
			logger,
		)
		cleanupJob := job.NewCleanupJob(eventRepo, eventService, storage, cfg.Jobs.ImageCleanupSchedule, logger)
		if err := cleanupJob.Start(); err != nil {
			logger.Warn("Failed to start image cleanup job", zap.Error(err))
		} else {
			defer cleanupJob.Stop()
			logger.Info("Image cleanup job started", zap.String("schedule", cfg.Jobs.ImageCleanupSchedule))
		}
	}

	r := router.Setup(router.Config{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		JWTSecret:      cfg.JWT.Secret,
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        m,
		Tracer:         tracerProvider.Tracer(),
		Locker:         locker,
		EventCache:     eventCache,
		Storage:        storage,
		Notifier:       notifier,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Campus Events API started",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Server.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
	return nil
}

// connectRedis returns nil when redis is not configured or unreachable;
// locks then fall back to the in-process implementation
func connectRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	if !cfg.Redis.Enabled() {
		logger.Info("Redis not configured")
		return nil
	}
	rdb, err := database.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unreachable, using in-process locks", zap.Error(err))
		return nil
	}
	return rdb
}
