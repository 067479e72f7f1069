package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the catalog and object endpoints.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	aclDecisions    *prometheus.CounterVec
	objectBytes     prometheus.Counter
	catalogWrites   *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	httpLabels := []string{"method", "path", "status"}

	m := &MetricsService{
		registry: registry,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "http_request_duration_seconds", Help: "Duration of HTTP requests in seconds", Buckets: prometheus.DefBuckets,
		}, httpLabels),
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total", Help: "Total number of HTTP requests",
		}, httpLabels),
		cacheLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "catalog_cache_latency_seconds", Help: "Latency of catalog cache lookups", Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "catalog_cache_write_seconds", Help: "Latency of catalog cache writes", Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: factory.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_cache_hit_ratio", Help: "Ratio of catalog cache hits to lookups",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "catalog_cache_hits_total", Help: "Catalog cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "catalog_cache_misses_total", Help: "Catalog cache misses",
		}),
		aclDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "object_acl_decisions_total", Help: "Object access decisions by permission and outcome",
		}, []string{"permission", "outcome"}),
		objectBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "object_download_bytes_total", Help: "Bytes streamed to clients from object storage",
		}),
		catalogWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_writes_total", Help: "Catalog mutations by operation",
		}, []string{"operation"}),
	}
	factory.NewGaugeFunc(prometheus.GaugeOpts{Name: "goroutines_total", Help: "Total number of goroutines"}, func() float64 {
		return float64(runtime.NumGoroutine())
	})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordACLDecision counts an access check outcome.
func (m *MetricsService) RecordACLDecision(permission string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.aclDecisions.WithLabelValues(permission, outcome).Inc()
}

// AddDownloadedBytes accumulates streamed object bytes.
func (m *MetricsService) AddDownloadedBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.objectBytes.Add(float64(n))
}

// RecordCatalogWrite counts create, update and delete operations.
func (m *MetricsService) RecordCatalogWrite(operation string) {
	if m == nil {
		return
	}
	m.catalogWrites.WithLabelValues(operation).Inc()
}
