package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects service metrics. It satisfies weather.Recorder.
type Recorder interface {
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	FetchCompleted(provider, outcome string, elapsed time.Duration)
}

type promRecorder struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	fetchesTotal    *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
}

// New registers collectors on reg. With enabled false it returns a no-op recorder.
func New(enabled bool, reg prometheus.Registerer) Recorder {
	if !enabled {
		return Noop()
	}
	f := promauto.With(reg)

	return &promRecorder{
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "snowhound_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snowhound_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "snowhound_cache_hits_total",
			Help: "Total number of forecast cache hits",
		}),

		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "snowhound_cache_misses_total",
			Help: "Total number of forecast cache misses",
		}),

		fetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "snowhound_provider_fetches_total",
			Help: "Provider fetches by outcome (live, mock, failed, backend)",
		}, []string{"provider", "outcome"}),

		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snowhound_provider_fetch_duration_seconds",
			Help:    "Upstream fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}
}

func (m *promRecorder) IncRequestsTotal(route string, status int) {
	m.requestsTotal.WithLabelValues(route, httpStatusBucket(status)).Inc()
}

func (m *promRecorder) ObserveRequestDuration(route string, duration time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *promRecorder) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *promRecorder) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *promRecorder) FetchCompleted(provider, outcome string, elapsed time.Duration) {
	m.fetchesTotal.WithLabelValues(provider, outcome).Inc()
	if elapsed > 0 {
		m.fetchDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	}
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

// Noop returns a recorder that discards everything.
func Noop() Recorder { return noopMetrics{} }

type noopMetrics struct{}

func (noopMetrics) IncRequestsTotal(string, int)                 {}
func (noopMetrics) ObserveRequestDuration(string, time.Duration) {}
func (noopMetrics) IncCacheHits()                                {}
func (noopMetrics) IncCacheMisses()                              {}
func (noopMetrics) FetchCompleted(string, string, time.Duration) {}
