package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"trainlog/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	SetRecordsTotal(kind string, count int)
	ObserveDashboardDuration(period string, duration time.Duration)
	IncSkippedResponses(reason string, count int)
	IncDashboardFailures()
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	recordsTotal        *prometheus.GaugeVec
	dashboardDuration   *prometheus.HistogramVec
	skippedResponses    *prometheus.CounterVec
	dashboardFailures   prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

// SetRecordsTotal sets the stored record gauge; kind is questions, entries or responses.
func (m *MetricsProvider) SetRecordsTotal(kind string, count int) {
	m.recordsTotal.WithLabelValues(kind).Set(float64(count))
}

func (m *MetricsProvider) ObserveDashboardDuration(period string, duration time.Duration) {
	m.dashboardDuration.WithLabelValues(period).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncSkippedResponses(reason string, count int) {
	if count <= 0 {
		return
	}
	m.skippedResponses.WithLabelValues(reason).Add(float64(count))
}

func (m *MetricsProvider) IncDashboardFailures() {
	m.dashboardFailures.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trainlog_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trainlog_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainlog_cache_hits_total",
			Help: "Total number of dashboard cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainlog_cache_misses_total",
			Help: "Total number of dashboard cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trainlog_persistence_duration_seconds",
			Help:    "Duration of snapshot save operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		recordsTotal: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trainlog_records_total",
			Help: "Number of stored journal records by kind",
		}, []string{"kind"}),

		dashboardDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trainlog_dashboard_compute_seconds",
			Help:    "Dashboard aggregation duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"period"}),

		skippedResponses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trainlog_skipped_responses_total",
			Help: "Responses left out of aggregation, by reason",
		}, []string{"reason"}),

		dashboardFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trainlog_dashboard_failures_total",
			Help: "Dashboard computations that fell back to the empty report",
		}),
	}
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                   {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)   {}
func (n *noopMetrics) IncCacheHits()                                      {}
func (n *noopMetrics) IncCacheMisses()                                    {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)         {}
func (n *noopMetrics) SetRecordsTotal(_ string, _ int)                    {}
func (n *noopMetrics) ObserveDashboardDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncSkippedResponses(_ string, _ int)                {}
func (n *noopMetrics) IncDashboardFailures()                              {}
