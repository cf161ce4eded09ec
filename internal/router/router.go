package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "campus-events-api/docs" // Swagger docs

	"campus-events-api/internal/cache"
	"campus-events-api/internal/client"
	"campus-events-api/internal/handler"
	"campus-events-api/internal/lock"
	"campus-events-api/internal/metrics"
	"campus-events-api/internal/middleware"
	"campus-events-api/internal/repository"
	"campus-events-api/internal/service"
)

const defaultLockWait = 10 * time.Second

// Config holds router configuration
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	JWTSecret      string
	BasePath       string
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	Tracer         trace.Tracer
	Locker         lock.Locker
	EventCache     *cache.EventCache
	Storage        service.ImageStorage
	Notifier       client.NotificationClient
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewWithRegistry(prometheus.NewRegistry(), cfg.Logger)
	}
	if cfg.Locker == nil {
		cfg.Locker = lock.NewKeyedMutex(defaultLockWait)
	}

	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))
	if cfg.Tracer != nil {
		r.Use(middleware.Tracing(cfg.Tracer))
	}

	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)
	metricsHandler := gin.WrapH(promhttp.Handler())

	// Ops endpoints at the root for health checks and scrapers
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", metricsHandler)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Initialize repositories
	eventRepo := repository.NewEventRepository(cfg.DB)
	participationRepo := repository.NewParticipationRepository(cfg.DB)
	uow := repository.NewUnitOfWork(cfg.DB)

	// Initialize services
	registrationService := service.NewRegistrationService(
		eventRepo,
		participationRepo,
		uow,
		cfg.Locker,
		cfg.EventCache,
		cfg.Storage,
		cfg.Notifier,
		cfg.Metrics,
		cfg.Tracer,
		cfg.Logger,
	)
	eventService := service.NewEventService(
		eventRepo,
		participationRepo,
		uow,
		cfg.Locker,
		cfg.EventCache,
		cfg.Storage,
		cfg.Metrics,
		cfg.Tracer,
		cfg.Logger,
	)

	// Initialize handlers
	participationHandler := handler.NewParticipationHandler(registrationService, cfg.Logger)
	eventHandler := handler.NewEventHandler(eventService, registrationService, cfg.Logger)

	api := r.Group(cfg.BasePath)

	if cfg.BasePath != "" && cfg.BasePath != "/" {
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)
		api.GET("/metrics", metricsHandler)
		api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// ============================================================
	// Event routes
	// ============================================================
	events := api.Group("/events")
	events.Use(authMiddleware)
	{
		events.POST("", eventHandler.CreateEvent)
		events.GET("", eventHandler.ListEvents)
		events.GET("/:eventId", eventHandler.GetEvent)
		events.PUT("/:eventId", eventHandler.UpdateEvent)
		events.PATCH("/:eventId/capacity", eventHandler.UpdateCapacity)
		events.DELETE("/:eventId", eventHandler.DeleteEvent)
		events.POST("/:eventId/image/presigned-url", eventHandler.CreateImageUploadURL)
		events.PUT("/:eventId/image/confirm", eventHandler.ConfirmImageUpload)
		events.DELETE("/:eventId/image", eventHandler.DeleteEventImage)
	}

	// ============================================================
	// Participation routes
	// ============================================================
	participations := api.Group("/participations")
	participations.Use(authMiddleware)
	{
		participations.POST("", participationHandler.Register)
		participations.GET("", participationHandler.ListParticipations)
		participations.GET("/check", participationHandler.Check)
		participations.GET("/event/:eventId", participationHandler.GetEventParticipants)
		participations.GET("/event/:eventId/count", participationHandler.GetCount)
		participations.DELETE("/event/:eventId/user/:userId", participationHandler.Cancel)
		participations.GET("/user/:userId", participationHandler.GetUserParticipations)
		participations.GET("/user/:userId/count", participationHandler.GetUserEventCount)
	}

	return r
}
