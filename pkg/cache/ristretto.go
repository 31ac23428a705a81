package cache

import (
	"errors"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

const defaultBufferItems = 64

// RistrettoCache keeps fetched pages in a Ristretto cache. A page costs 1
// regardless of its size, so the cost budget is a page count.
type RistrettoCache struct {
	cache      *ristretto.Cache
	defaultTTL time.Duration
	logger     *zap.Logger
}

// RistrettoConfig sizes the cache. MaxCost is required; NumCounters defaults
// to 10x MaxCost and BufferItems to 64.
type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	// DefaultTTL applies when Set is called with a non-positive ttl. Zero
	// keeps such entries until evicted.
	DefaultTTL time.Duration
	Logger     *zap.Logger
}

// NewRistrettoCache builds the cache from cfg.
func NewRistrettoCache(cfg *RistrettoConfig) (*RistrettoCache, error) {
	if cfg.MaxCost <= 0 {
		return nil, errors.New("max cost must be positive")
	}

	counters := cfg.NumCounters
	if counters <= 0 {
		counters = 10 * cfg.MaxCost
	}

	buffer := cfg.BufferItems
	if buffer <= 0 {
		buffer = defaultBufferItems
	}

	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: counters,
		MaxCost:     cfg.MaxCost,
		BufferItems: buffer,
	})
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RistrettoCache{cache: rc, defaultTTL: cfg.DefaultTTL, logger: logger}, nil
}

func (r *RistrettoCache) Get(key string) (interface{}, bool) {
	value, ok := r.cache.Get(key)
	if !ok {
		CacheMissesTotal.Inc()
		return nil, false
	}

	CacheHitsTotal.Inc()
	r.logger.Debug("cache-hit", zap.String("key", key))
	return value, true
}

// Set queues value under key. A nil value is never stored. Admission is
// asynchronous and may be refused under pressure, in which case Set returns
// false and the caller simply refetches next time.
func (r *RistrettoCache) Set(key string, value interface{}, ttl time.Duration) bool {
	if value == nil {
		return false
	}

	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	if !r.cache.SetWithTTL(key, value, 1, ttl) {
		CacheRejectsTotal.Inc()
		r.logger.Debug("cache-set-rejected", zap.String("key", key))
		return false
	}

	CacheSetsTotal.Inc()
	return true
}

func (r *RistrettoCache) Delete(key string) {
	r.cache.Del(key)
	CacheDeletesTotal.Inc()
}

// Clear drops every page, e.g. after a chain refresh.
func (r *RistrettoCache) Clear() {
	r.cache.Clear()
	CacheClearsTotal.Inc()
	r.logger.Debug("cache-cleared")
}

func (r *RistrettoCache) Close() {
	r.cache.Close()
}

// Wait blocks until queued sets are applied. Tests use it to make
// admission observable.
func (r *RistrettoCache) Wait() {
	r.cache.Wait()
}
