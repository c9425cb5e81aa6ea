// Package metrics defines the Prometheus collectors for the service and an
// echo middleware that records per-request HTTP metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Graph rendering metrics
	GraphsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphs_rendered_total",
			Help: "Total number of graphs rendered successfully",
		},
		[]string{"macro_type"},
	)

	GraphRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graph_render_duration_seconds",
			Help:    "Graph rendering duration in seconds, parse included",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"macro_type"},
	)

	GraphRenderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graph_render_errors_total",
			Help: "Total number of failed graph render attempts",
		},
		[]string{"macro_type", "reason"},
	)

	UploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upload_size_bytes",
			Help:    "Size distribution of uploaded measurement files",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB .. 16MiB
		},
	)
)

// RecordRender records the outcome of one render attempt. reason is empty on
// success.
func RecordRender(macroType string, duration time.Duration, reason string) {
	if reason == "" {
		GraphsRendered.WithLabelValues(macroType).Inc()
	} else {
		GraphRenderErrors.WithLabelValues(macroType, reason).Inc()
	}
	GraphRenderDuration.WithLabelValues(macroType).Observe(duration.Seconds())
}

// Middleware returns an echo middleware that records request count, latency
// and in-flight gauge for every route. The route template (e.g.
// /process/:macro_type) is used as the path label to keep cardinality low.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			HTTPActiveRequests.Inc()
			defer HTTPActiveRequests.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				// The error handler has not run yet; derive the status it
				// will write.
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()

			return err
		}
	}
}
