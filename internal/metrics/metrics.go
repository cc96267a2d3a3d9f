package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	UpstreamRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_upstream_requests_total",
			Help: "Total number of requests sent to the open-data feed.",
		},
		[]string{"endpoint", "outcome"},
	)
	CacheLookupsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_cache_lookups_total",
			Help: "Total number of cache lookups by cache and result.",
		},
		[]string{"cache", "result"},
	)
	SearchStrategyCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_search_strategy_total",
			Help: "Total number of searches by the strategy that produced the result.",
		},
		[]string{"strategy"},
	)
	DatasetRefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobs_dataset_refresh_duration_seconds",
			Help:    "Duration of each full dataset ingestion in seconds.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)
	DatasetSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobs_dataset_records",
			Help: "Number of records in the current dataset snapshot.",
		},
	)
)

// Register adds all collectors to the default registry. It panics when called twice.
func Register() {
	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(UpstreamRequestsCounter)
	prometheus.MustRegister(CacheLookupsCounter)
	prometheus.MustRegister(SearchStrategyCounter)
	prometheus.MustRegister(DatasetRefreshDuration)
	prometheus.MustRegister(DatasetSize)
}
