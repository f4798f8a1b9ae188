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
			Name: "credocarbon_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credocarbon_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Domain metrics
	registryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credocarbon_registry_operations_total",
			Help: "Total number of registry document operations",
		},
		[]string{"operation"}, // create, update, delete, replace
	)

	documentStoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credocarbon_document_store_errors_total",
			Help: "Total number of document store failures",
		},
		[]string{"document"},
	)

	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credocarbon_login_attempts_total",
			Help: "Total number of admin login attempts",
		},
		[]string{"status"}, // success, failure
	)
)

// PrometheusMiddleware creates a Fiber middleware for Prometheus metrics
func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		method := c.Method()
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		statusCode := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// IncrementRegistryOperation increments the registry operation counter
func IncrementRegistryOperation(operation string) {
	registryOperationsTotal.WithLabelValues(operation).Inc()
}

// IncrementDocumentStoreError increments the document store failure counter
func IncrementDocumentStoreError(document string) {
	documentStoreErrorsTotal.WithLabelValues(document).Inc()
}

// IncrementLoginAttempt increments the login attempt counter
func IncrementLoginAttempt(status string) {
	loginAttemptsTotal.WithLabelValues(status).Inc()
}
