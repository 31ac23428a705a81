package pager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// PagesFetchedTotal tracks pages appended to a controller.
	PagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_pager_pages_fetched_total",
		Help: "Total number of market pages appended",
	})

	// PageFetchErrorsTotal tracks failed page fetches.
	PageFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_pager_page_fetch_errors_total",
		Help: "Total number of failed market page fetches",
	})

	// StaleDiscardsTotal tracks responses dropped because the filter changed.
	StaleDiscardsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_pager_stale_discards_total",
		Help: "Total number of page responses discarded as stale",
	})

	// InconsistentPagesTotal tracks pages whose hasNext disagrees with
	// page < totalPages.
	InconsistentPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_pager_inconsistent_pages_total",
		Help: "Total number of pages with contradictory pagination fields",
	})

	// SuppressedFetchesTotal tracks FetchNext calls ignored while in flight.
	SuppressedFetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_pager_suppressed_fetches_total",
		Help: "Total number of next-page requests suppressed by an in-flight fetch",
	})

	// FilterResetsTotal tracks filter changes.
	FilterResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_pager_filter_resets_total",
		Help: "Total number of filter changes that restarted pagination",
	})

	// PageFetchDurationSeconds tracks page load latency, cache hits included.
	PageFetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gasfutures_pager_page_fetch_duration_seconds",
		Help:    "Duration of market page loads",
		Buckets: prometheus.DefBuckets,
	})
)
