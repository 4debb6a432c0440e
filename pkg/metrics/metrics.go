package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// External API metrics
	ExternalAPICalls    *prometheus.CounterVec
	ExternalAPIDuration *prometheus.HistogramVec
	ExternalAPIFailures *prometheus.CounterVec
	RangeCacheLookups   *prometheus.CounterVec
	RangeCacheHitRatio  prometheus.Gauge

	// Dashboard metrics
	DatasetLoads        *prometheus.CounterVec
	StaleResultsDropped *prometheus.CounterVec
	Resolutions         *prometheus.CounterVec
	Comparisons         *prometheus.CounterVec
	ActiveSessions      prometheus.Gauge
}

// New registers collectors on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers collectors on reg. Tests pass a private registry
// so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		ExternalAPICalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_api_calls_total",
				Help: "Total number of calls to the remote analytics service",
			},
			[]string{"api", "status"},
		),

		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analytics_api_duration_seconds",
				Help:    "Remote analytics call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"api"},
		),

		ExternalAPIFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_api_failures_total",
				Help: "Total number of remote analytics failures",
			},
			[]string{"api", "error_type"},
		),

		RangeCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "range_cache_lookups_total",
				Help: "Range rollup cache lookups by outcome",
			},
			[]string{"outcome"},
		),

		RangeCacheHitRatio: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "range_cache_hit_ratio",
				Help: "Hit ratio reported by the range rollup cache",
			},
		),

		DatasetLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_dataset_loads_total",
				Help: "Dataset slot loads by slot and outcome",
			},
			[]string{"slot", "outcome"},
		),

		StaleResultsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_stale_results_dropped_total",
				Help: "Fetch results discarded because a newer request superseded them",
			},
			[]string{"slot"},
		),

		Resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_resolutions_total",
				Help: "View model resolutions by range and drill-down rule",
			},
			[]string{"range", "rule"},
		),

		Comparisons: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_week_comparisons_total",
				Help: "Week-over-week comparisons by outcome",
			},
			[]string{"outcome"},
		),

		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_sessions_active",
				Help: "Number of dashboard sessions held in memory",
			},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// External API call metrics
func (m *Metrics) RecordExternalAPICall(api, status string, duration time.Duration) {
	m.ExternalAPICalls.WithLabelValues(api, status).Inc()
	m.ExternalAPIDuration.WithLabelValues(api).Observe(duration.Seconds())
}

// External API failure metrics
func (m *Metrics) RecordExternalAPIFailure(api, errorType string) {
	m.ExternalAPIFailures.WithLabelValues(api, errorType).Inc()
}

func (m *Metrics) RecordRangeCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.RangeCacheLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetRangeCacheHitRatio(ratio float64) {
	m.RangeCacheHitRatio.Set(ratio)
}

// Dataset slot load outcome
func (m *Metrics) RecordDatasetLoad(slot, outcome string) {
	m.DatasetLoads.WithLabelValues(slot, outcome).Inc()
}

func (m *Metrics) RecordStaleResult(slot string) {
	m.StaleResultsDropped.WithLabelValues(slot).Inc()
}

func (m *Metrics) RecordResolution(timeRange, rule string) {
	m.Resolutions.WithLabelValues(timeRange, rule).Inc()
}

func (m *Metrics) RecordComparison(outcome string) {
	m.Comparisons.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
