package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_requests_total",
			Help:      "Total number of searches by the stage that produced the result",
		},
		[]string{"stage"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds, including result assembly",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"},
	)

	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_errors_total",
			Help:      "Total search failures by the stage that failed",
		},
		[]string{"stage"},
	)

	MatchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "match_cache_total",
			Help:      "Match cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SegmenterRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "segmenter_requests_total",
			Help:      "Total number of segmentation requests",
		},
		[]string{"provider", "status"},
	)

	SegmenterRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "segmenter_request_duration_seconds",
			Help:      "Segmentation request duration in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers search metrics with the default registry. Safe to call repeatedly.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(SearchErrorsTotal)
		prometheus.MustRegister(MatchCacheTotal)
		prometheus.MustRegister(SegmenterRequestsTotal)
		prometheus.MustRegister(SegmenterRequestDuration)
	})
}
