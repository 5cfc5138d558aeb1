package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// Database metrics
	dbConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		},
	)

	dbConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Business metrics
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Total number of public form submissions",
		},
		[]string{"kind"}, // contact, quote
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of notification emails attempted",
		},
		[]string{"kind", "status"}, // status: sent, failed
	)

	quoteStatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_status_changes_total",
			Help: "Total number of quote status transitions",
		},
		[]string{"status"},
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status"}, // success, failure
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Total number of stored upload files",
		},
		[]string{"field"},
	)

	digestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_runs_total",
			Help: "Total number of pending-inquiry digest runs",
		},
		[]string{"result"}, // sent, empty, skipped, failed
	)
)

// Middleware records request count and latency per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		// errors are rendered here so the recorded status is the one sent
		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()

		route := c.Route().Path
		code := strconv.Itoa(status)
		httpRequestsTotal.WithLabelValues(c.Method(), route, code).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route, code).Observe(time.Since(start).Seconds())
		return nil
	}
}

func RecordSubmission(kind string) {
	submissionsTotal.WithLabelValues(kind).Inc()
}

// RecordNotification records one notification attempt.
func RecordNotification(kind string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	notificationsTotal.WithLabelValues(kind, status).Inc()
}

func RecordQuoteStatusChange(status string) {
	quoteStatusChangesTotal.WithLabelValues(status).Inc()
}

// RecordAuthAttempt records an authentication attempt
func RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	authAttemptsTotal.WithLabelValues(status).Inc()
}

func RecordUpload(field string) {
	uploadsTotal.WithLabelValues(field).Inc()
}

func RecordDigestRun(result string) {
	digestRunsTotal.WithLabelValues(result).Inc()
}

// UpdateDBConnections updates database connection metrics
func UpdateDBConnections(open, idle int) {
	dbConnectionsOpen.Set(float64(open))
	dbConnectionsIdle.Set(float64(idle))
}
