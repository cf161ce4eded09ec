package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"campus-events-api/internal/database"
)

const serviceName = "campus-events-api"

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandler creates a HealthHandler. redis may be nil when not configured.
func NewHealthHandler(db *gorm.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
	}
}

// Health godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
	})
}

// Ready godoc
// @Summary      Readiness check
// @Description  Pings the database and, when configured, Redis
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.db == nil {
		notReady(c, "database not configured")
		return
	}
	if err := database.Ping(ctx, h.db); err != nil {
		notReady(c, "database not reachable")
		return
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			notReady(c, "redis not reachable")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": serviceName,
	})
}

func notReady(c *gin.Context, reason string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":  "not ready",
		"service": serviceName,
		"error":   reason,
	})
}
