package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_cache_hits_total",
		Help: "Total number of page cache hits",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_cache_misses_total",
		Help: "Total number of page cache misses",
	})

	CacheSetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_cache_sets_total",
		Help: "Total number of page cache sets",
	})

	CacheRejectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_cache_rejects_total",
		Help: "Total number of page cache sets refused by admission",
	})

	CacheDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_cache_deletes_total",
		Help: "Total number of page cache deletes",
	})

	CacheClearsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_cache_clears_total",
		Help: "Total number of page cache clears",
	})
)
