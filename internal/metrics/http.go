package metrics

import (
	"strings"
	"time"
)

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := categorizeStatus(statusCode)
		m.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	})
}

// categorizeStatus converts status code to category (2xx, 3xx, 4xx, 5xx)
func categorizeStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// ShouldSkipEndpoint checks if endpoint should be excluded from metrics.
// Ops endpoints are skipped both at the root and under the base path.
func ShouldSkipEndpoint(path string) bool {
	for _, suffix := range []string{"/metrics", "/health", "/ready"} {
		if path == suffix || strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return strings.Contains(path, "/swagger/")
}
