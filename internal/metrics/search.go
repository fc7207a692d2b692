package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search engine Prometheus metrics.
var (
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sphinxsuggest",
			Name:      "search_queries_total",
			Help:      "Total number of SphinxQL find calls",
		},
		[]string{"kind", "status"}, // kind: find / find_many / count
	)

	SearchQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sphinxsuggest",
			Name:      "search_query_duration_seconds",
			Help:      "SphinxQL find call duration in seconds, compile included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 3},
		},
		[]string{"kind"},
	)

	SuggestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sphinxsuggest",
			Name:      "suggestions_total",
			Help:      "Suggestion passes by outcome",
		},
		[]string{"outcome"}, // corrected / unchanged / throttled
	)

	SuggestionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sphinxsuggest",
			Name:      "suggestion_errors_total",
			Help:      "Per-word suggestion sub-query failures that degraded to no suggestion",
		},
		[]string{"stage"}, // lookup / probe
	)

	IndexingWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sphinxsuggest",
			Name:      "indexing_writes_total",
			Help:      "Real-time index writes",
		},
		[]string{"op", "status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(SearchQueryDuration)
	prometheus.MustRegister(SuggestionsTotal)
	prometheus.MustRegister(SuggestionErrorsTotal)
	prometheus.MustRegister(IndexingWritesTotal)
	searchMetricsRegistered = true
}

// ObserveQuery records one find call of the given kind.
func ObserveQuery(kind string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SearchQueriesTotal.WithLabelValues(kind, status).Inc()
	SearchQueryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
