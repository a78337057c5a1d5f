package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cycle outcome label values.
const (
	CycleApplied    = "applied"
	CycleSuperseded = "superseded"
	CycleSkipped    = "skipped"
)

// Fallback result label values.
const (
	FallbackApplied = "applied"
	FallbackEmpty   = "empty"
	FallbackFailed  = "failed"
)

// Search Prometheus metrics.
var (
	SearchCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetsync",
			Name:      "search_cycles_total",
			Help:      "Search cycles by outcome (applied, superseded, skipped)",
		},
		[]string{"outcome"},
	)

	SearchCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "facetsync",
			Name:      "search_cycle_duration_seconds",
			Help:      "Duration of a full search cycle (all three sub-queries settled)",
			Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	SearchSubQueryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetsync",
			Name:      "search_subquery_errors_total",
			Help:      "Failed sub-queries by name (cancellations excluded)",
		},
		[]string{"query"},
	)

	RatingFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetsync",
			Name:      "rating_fallback_total",
			Help:      "Rating fallback re-queries by result",
		},
		[]string{"result"},
	)

	TagCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facetsync",
			Name:      "tag_cache_total",
			Help:      "Facet tag cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search metrics on the given registerer.
// Pass nil for the default registry. Must be called once.
func RegisterSearchMetrics(reg prometheus.Registerer) {
	if searchMetricsRegistered {
		return
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(SearchCyclesTotal)
	reg.MustRegister(SearchCycleDuration)
	reg.MustRegister(SearchSubQueryErrorsTotal)
	reg.MustRegister(RatingFallbackTotal)
	reg.MustRegister(TagCacheTotal)
	searchMetricsRegistered = true
}
