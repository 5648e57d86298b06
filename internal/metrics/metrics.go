// Package metrics provides Prometheus metrics for the swap quote engine:
// quote cycle outcomes, chosen routes, per-source fetch errors, and pipeline
// latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	quoteCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_quote_cycles_total",
			Help: "Quote pipeline runs by terminal state",
		},
		[]string{"state"},
	)

	quoteRouteTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_quote_route_total",
			Help: "Winning route per composed quote",
		},
		[]string{"route"},
	)

	sourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_source_errors_total",
			Help: "Transient fetch failures per quote source",
		},
		[]string{"source"},
	)

	quoteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swap_quote_duration_seconds",
			Help:    "End-to-end quote pipeline latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	staleResultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swap_stale_results_total",
			Help: "Quote completions discarded because inputs changed mid-flight",
		},
	)
)

// ObserveCycle records the terminal state and latency of one pipeline run.
func ObserveCycle(state string, seconds float64) {
	quoteCyclesTotal.WithLabelValues(state).Inc()
	quoteDuration.Observe(seconds)
}

// ObserveRoute records the winning route of a composed quote.
func ObserveRoute(route string) {
	quoteRouteTotal.WithLabelValues(route).Inc()
}

// ObserveSourceError records a transient failure from one quote source.
func ObserveSourceError(source string) {
	sourceErrorsTotal.WithLabelValues(source).Inc()
}

// ObserveStaleResult records a discarded out-of-date completion.
func ObserveStaleResult() {
	staleResultsTotal.Inc()
}
