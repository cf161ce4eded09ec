package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"campus-events-api/internal/metrics"
)

// Metrics returns a middleware that records HTTP metrics
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip metrics and health endpoints
		if metrics.ShouldSkipEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		m.RecordHTTPRequest(
			c.Request.Method,
			c.FullPath(), // route pattern keeps label cardinality bounded
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
