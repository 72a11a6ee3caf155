package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService exposes Prometheus collectors for the HTTP surface and the
// catalog cache.
type MetricsService struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService constructs and registers the collectors on a dedicated
// registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enroll_api",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "enroll_api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "enroll_api",
			Name:      "catalog_cache_hits_total",
			Help:      "Catalog availability cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "enroll_api",
			Name:      "catalog_cache_misses_total",
			Help:      "Catalog availability cache misses.",
		}),
	}

	registry.MustRegister(m.requestTotal, m.requestDuration, m.cacheHits, m.cacheMisses)
	return m
}

// ObserveRequest records one completed HTTP request.
func (m *MetricsService) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveCacheLookup records a catalog cache hit or miss.
func (m *MetricsService) ObserveCacheLookup(hit bool) {
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

// Handler serves the scrape endpoint for this service's registry.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
