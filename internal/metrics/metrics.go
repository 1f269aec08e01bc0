// Package metrics exposes prometheus instrumentation for the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's prometheus collectors. A single instance
// is created in main and injected where needed.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	ReportsBuilt   prometheus.Counter
	ReportDuration prometheus.Histogram
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter

	CompletionCalls  prometheus.Counter
	CompletionErrors prometheus.Counter

	ScheduledRuns     prometheus.Counter
	ScheduledFailures prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "healthai_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthai_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		ReportsBuilt: factory.NewCounter(prometheus.CounterOpts{
			Name: "healthai_weekly_reports_built_total",
			Help: "Weekly reports computed (cache misses and scheduled runs).",
		}),
		ReportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "healthai_weekly_report_duration_seconds",
			Help:    "Weekly report build latency.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "healthai_report_cache_hits_total",
			Help: "Weekly report cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "healthai_report_cache_misses_total",
			Help: "Weekly report cache misses.",
		}),

		CompletionCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "healthai_completion_calls_total",
			Help: "Calls to the completion service.",
		}),
		CompletionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "healthai_completion_errors_total",
			Help: "Failed completion calls, including breaker rejections.",
		}),

		ScheduledRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "healthai_scheduled_runs_total",
			Help: "Scheduled weekly precompute runs.",
		}),
		ScheduledFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "healthai_scheduled_failures_total",
			Help: "Per-user failures during scheduled precompute.",
		}),
	}
}

// Handler serves the prometheus exposition endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
