package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"syscall"
	"time"
)

var uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// statusFailures names the HTTP statuses we alert on individually
var statusFailures = map[int]string{
	http.StatusBadRequest:          "bad_request",
	http.StatusUnauthorized:        "unauthorized",
	http.StatusForbidden:           "forbidden",
	http.StatusNotFound:            "not_found",
	http.StatusTooManyRequests:     "too_many_requests",
	http.StatusInternalServerError: "internal_server_error",
	http.StatusBadGateway:          "bad_gateway",
	http.StatusServiceUnavailable:  "service_unavailable",
	http.StatusGatewayTimeout:      "gateway_timeout",
}

// RecordNotificationCall records one request to the notification service.
// statusCode is 0 when the request never got a response.
func (m *Metrics) RecordNotificationCall(path, method string, statusCode int, duration time.Duration, err error) {
	m.safeExecute("RecordNotificationCall", func() {
		path = uuidPattern.ReplaceAllString(path, "{id}")
		status := strconv.Itoa(statusCode)

		m.NotificationRequestsTotal.WithLabelValues(path, method, status).Inc()
		m.NotificationRequestDuration.WithLabelValues(path, status).Observe(duration.Seconds())

		if reason := failureReason(statusCode, err); reason != "" {
			m.NotificationFailures.WithLabelValues(path, reason).Inc()
		}
	})
}

// failureReason returns "" for a successful call
func failureReason(statusCode int, err error) string {
	if err != nil {
		return transportFailure(err)
	}
	if statusCode < 400 {
		return ""
	}
	if reason, ok := statusFailures[statusCode]; ok {
		return reason
	}
	if statusCode < 500 {
		return "client_error"
	}
	return "server_error"
}

func transportFailure(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection_refused"
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "connection_reset"
	case errors.As(err, &dnsErr):
		return "dns_error"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	}
	return "network_error"
}
