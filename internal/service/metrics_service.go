package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-cover-api/internal/dto"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the coverage engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	runsTotal       prometheus.Counter
	needsTotal      *prometheus.CounterVec
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	runsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverage_runs_total",
		Help: "Total number of coverage runs generated",
	})

	needsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_needs_total",
		Help: "Coverage needs by terminal status",
	}, []string{"status"})

	registry.MustRegister(requestDuration, requestTotal, runsTotal, needsTotal)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runsTotal:       runsTotal,
		needsTotal:      needsTotal,
	}
}

// Handler exposes the /metrics endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// GinMiddleware observes request counts and latencies.
func (m *MetricsService) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// ObserveRun records the outcome of one generate call.
func (m *MetricsService) ObserveRun(summary dto.CoverageSummary) {
	m.runsTotal.Inc()
	m.needsTotal.WithLabelValues("resolved").Add(float64(summary.Resolved))
	m.needsTotal.WithLabelValues("auto_covered").Add(float64(summary.AutoCovered))
	m.needsTotal.WithLabelValues("unresolved").Add(float64(summary.Unresolved))
}
