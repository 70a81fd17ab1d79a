package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load status label values
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// CacheLoadsTotal tracks the total number of cache load operations
	CacheLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lakeview_cache_loads_total",
			Help: "Total number of history cache load operations",
		},
		[]string{"status"},
	)

	// CacheLoadDuration measures cache load duration in seconds
	CacheLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lakeview_cache_load_duration_seconds",
			Help:    "History cache load duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
	)

	// TablesLoaded tracks the number of distinct tables held in the cache
	TablesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lakeview_tables_loaded",
			Help: "Number of distinct tables loaded into the history cache",
		},
	)

	// RecordsCached tracks the number of version records held in the cache
	RecordsCached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lakeview_records_cached",
			Help: "Number of version records held in the history cache",
		},
	)

	// ProviderFetchDuration measures transaction log fetch duration
	ProviderFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lakeview_provider_fetch_duration_seconds",
			Help:    "Transaction log fetch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	// MalformedRecordsTotal counts version records dropped during parsing
	MalformedRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lakeview_malformed_records_total",
			Help: "Total number of version records dropped as malformed",
		},
	)
)
