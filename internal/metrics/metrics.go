package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "campus_events"
)

// Registration outcomes used as the "result" label
const (
	ResultSuccess           = "success"
	ResultEventFull         = "event_full"
	ResultAlreadyRegistered = "already_registered"
	ResultEventEnded        = "event_ended"
	ResultError             = "error"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBConnectionsOpen        prometheus.Gauge
	DBConnectionsInUse       prometheus.Gauge
	DBConnectionsIdle        prometheus.Gauge
	DBConnectionsMax         prometheus.Gauge
	DBConnectionWaitTotal    prometheus.Counter
	DBConnectionWaitDuration prometheus.Counter
	DBQueryDuration          *prometheus.HistogramVec
	DBQueryErrors            *prometheus.CounterVec

	// Notification service metrics
	NotificationRequestDuration *prometheus.HistogramVec
	NotificationRequestsTotal   *prometheus.CounterVec
	NotificationFailures        *prometheus.CounterVec

	// Business metrics
	EventsTotal         prometheus.Gauge
	ParticipationsTotal prometheus.Gauge
	EventCreatedTotal   prometheus.Counter
	RegistrationsTotal  *prometheus.CounterVec
	CancellationsTotal  prometheus.Counter

	// Lock metrics
	LockWaitDuration  prometheus.Histogram
	LockTimeoutsTotal prometheus.Counter

	statsMu          sync.Mutex
	lastWaitCount    int64
	lastWaitDuration time.Duration

	logger *zap.Logger
}

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, nil)
}

// NewWithLogger creates and registers all metrics with the default registry and a logger
func NewWithLogger(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),

		DBConnectionsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_open",
				Help:      "Current number of open database connections",
			},
		),
		DBConnectionsInUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_in_use",
				Help:      "Current number of in-use database connections",
			},
		),
		DBConnectionsIdle: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_idle",
				Help:      "Current number of idle database connections",
			},
		),
		DBConnectionsMax: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_max",
				Help:      "Maximum number of open database connections configured",
			},
		),
		DBConnectionWaitTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_connection_wait_total",
				Help:      "Total number of times waited for a database connection",
			},
		),
		DBConnectionWaitDuration: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_connection_wait_duration_seconds_total",
				Help:      "Total duration waited for database connections in seconds",
			},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation", "table"},
		),
		DBQueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_query_errors_total",
				Help:      "Total number of database query errors",
			},
			[]string{"operation", "table"},
		),

		NotificationRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "notification_request_duration_seconds",
				Help:      "Notification service request duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"path", "status"},
		),
		NotificationRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_requests_total",
				Help:      "Total number of requests sent to the notification service",
			},
			[]string{"path", "method", "status"},
		),
		NotificationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_failures_total",
				Help:      "Total number of failed notification deliveries by reason",
			},
			[]string{"path", "reason"},
		),

		EventsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of events",
			},
		),
		ParticipationsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "participations_total",
				Help:      "Total number of registrations across all events",
			},
		),
		EventCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_created_total",
				Help:      "Total number of event creation events",
			},
		),
		RegistrationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total number of registration attempts by result",
			},
			[]string{"result"},
		),
		CancellationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cancellations_total",
				Help:      "Total number of cancelled registrations",
			},
		),

		LockWaitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_lock_wait_duration_seconds",
				Help:      "Time spent waiting for the per-event lock in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
		),
		LockTimeoutsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_lock_timeouts_total",
				Help:      "Total number of per-event lock acquisitions that timed out",
			},
		),

		logger: logger,
	}
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
