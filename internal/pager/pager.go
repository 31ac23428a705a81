// Package pager aggregates successive pages of the market list into one
// ordered sequence for a single filter at a time.
package pager

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mselser95/gasfutures/internal/filters"
	"github.com/mselser95/gasfutures/pkg/cache"
	"github.com/mselser95/gasfutures/pkg/types"
	"go.uber.org/zap"
)

// PageFetcher fetches one page of market summaries.
type PageFetcher interface {
	FetchMarkets(ctx context.Context, q *types.MarketsQuery) (*types.MarketsResponse, error)
}

// Controller owns the accumulated pages for the current filter. Pages are
// requested strictly in increasing order and never concurrently: FetchNext is
// a no-op while a fetch is in flight or once the list is exhausted.
//
// Changing the filter bumps a generation counter instead of resetting in
// place, so a response that resolves for an older generation is discarded.
type Controller struct {
	fetcher   PageFetcher
	cache     cache.Cache
	cacheTTL  time.Duration
	networkID int
	limit     int
	logger    *zap.Logger

	mu         sync.Mutex
	filter     filters.Filter
	key        string
	generation uint64
	pages      []*types.MarketsResponse
	inFlight   bool
	lastErr    error
}

// Config holds controller configuration.
type Config struct {
	Fetcher   PageFetcher
	Cache     cache.Cache // optional, keyed by filter key + page
	CacheTTL  time.Duration
	NetworkID int
	Limit     int
	Filter    filters.Filter
	Logger    *zap.Logger
}

// Snapshot is a consistent view of the controller state.
type Snapshot struct {
	Key        string
	Filter     filters.Filter
	Items      []types.MarketSummary
	Pagination *types.Pagination
	Pages      int
	Pending    bool
	HasMore    bool
	Err        error
}

// New creates a controller positioned before page 1 of cfg.Filter.
func New(cfg *Config) (*Controller, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Limit < 1 || cfg.Limit > types.MaxPageLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d, got %d", types.MaxPageLimit, cfg.Limit)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Controller{
		fetcher:   cfg.Fetcher,
		cache:     cfg.Cache,
		cacheTTL:  ttl,
		networkID: cfg.NetworkID,
		limit:     cfg.Limit,
		logger:    cfg.Logger,
		filter:    cfg.Filter,
		key:       cfg.Filter.Key(),
	}, nil
}

// SetFilter switches to a new filter. If the key differs from the current one,
// every accumulated page is dropped and the next FetchNext requests page 1.
// Returns false when the filter is unchanged.
func (c *Controller) SetFilter(f filters.Filter) bool {
	key := f.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	if key == c.key {
		return false
	}

	c.filter = f
	c.key = key
	c.restartLocked()
	FilterResetsTotal.Inc()

	c.logger.Debug("filter-changed", zap.String("key", key))

	return true
}

// Reset restarts the current filter from page 1, bypassing cached pages.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache != nil {
		for page := 1; page <= len(c.pages); page++ {
			c.cache.Delete(c.cacheKey(c.key, page))
		}
	}

	c.restartLocked()
}

func (c *Controller) restartLocked() {
	c.generation++
	c.pages = nil
	c.inFlight = false
	c.lastErr = nil
}

// FetchNext fetches the next page. It returns (true, nil) when a page was
// appended and (false, nil) when the call was a no-op: a fetch is already in
// flight, the list is exhausted, or the response belonged to a filter that is
// no longer current. A failed fetch leaves accumulated pages untouched; the
// next call retries the same page.
func (c *Controller) FetchNext(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		SuppressedFetchesTotal.Inc()
		return false, nil
	}

	if !c.hasMoreLocked() {
		c.mu.Unlock()
		return false, nil
	}

	page := len(c.pages) + 1
	generation := c.generation
	key := c.key
	query := c.filter.Query(c.networkID, c.limit, page)
	c.inFlight = true
	c.mu.Unlock()

	start := time.Now()
	resp, err := c.load(ctx, key, query)
	PageFetchDurationSeconds.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		StaleDiscardsTotal.Inc()
		c.logger.Debug("stale-page-discarded",
			zap.String("key", key),
			zap.Int("page", page))
		return false, nil
	}

	c.inFlight = false

	if err != nil {
		PageFetchErrorsTotal.Inc()
		c.lastErr = fmt.Errorf("fetch page %d: %w", page, err)
		c.logger.Warn("page-fetch-failed",
			zap.String("key", key),
			zap.Int("page", page),
			zap.Error(err))
		return false, c.lastErr
	}

	if resp.Pagination.Page != 0 && resp.Pagination.Page != page {
		c.logger.Warn("page-number-mismatch",
			zap.Int("requested", page),
			zap.Int("received", resp.Pagination.Page))
	}

	// hasNext stays authoritative.
	if !resp.Pagination.Consistent() {
		InconsistentPagesTotal.Inc()
		c.logger.Warn("pagination-inconsistent",
			zap.Int("page", resp.Pagination.Page),
			zap.Int("total-pages", resp.Pagination.TotalPages),
			zap.Bool("has-next", resp.Pagination.HasNext))
	}

	c.pages = append(c.pages, resp)
	c.lastErr = nil
	PagesFetchedTotal.Inc()

	c.logger.Debug("page-fetched",
		zap.String("key", key),
		zap.Int("page", page),
		zap.Int("items", len(resp.Data)),
		zap.Bool("has-next", resp.Pagination.HasNext))

	return true, nil
}

// load serves a page from cache or from the fetcher.
func (c *Controller) load(ctx context.Context, key string, q *types.MarketsQuery) (*types.MarketsResponse, error) {
	cacheKey := c.cacheKey(key, q.Page)

	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if resp, ok := cached.(*types.MarketsResponse); ok {
				return resp, nil
			}
		}
	}

	resp, err := c.fetcher.FetchMarkets(ctx, q)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, resp, c.cacheTTL)
	}

	return resp, nil
}

func (c *Controller) cacheKey(filterKey string, page int) string {
	return "markets|net=" + strconv.Itoa(c.networkID) +
		"|limit=" + strconv.Itoa(c.limit) +
		"|" + filterKey +
		"|page=" + strconv.Itoa(page)
}

func (c *Controller) hasMoreLocked() bool {
	if len(c.pages) == 0 {
		return true
	}

	last := c.pages[len(c.pages)-1]

	// An empty page ends the sequence even if the server claims otherwise.
	return last.Pagination.HasNext && len(last.Data) > 0
}

// HasMore reports whether another page can be requested.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMoreLocked()
}

// Pending reports whether a fetch is in flight for the current filter.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Err returns the error of the last failed fetch, cleared by a success or a
// filter change.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Filter returns the current filter.
func (c *Controller) Filter() filters.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Items returns the accumulated items in page order.
func (c *Controller) Items() []types.MarketSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsLocked()
}

func (c *Controller) itemsLocked() []types.MarketSummary {
	n := 0
	for _, p := range c.pages {
		n += len(p.Data)
	}

	items := make([]types.MarketSummary, 0, n)
	for _, p := range c.pages {
		items = append(items, p.Data...)
	}

	return items
}

// Snapshot returns the full controller state under a single lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Key:     c.key,
		Filter:  c.filter,
		Items:   c.itemsLocked(),
		Pages:   len(c.pages),
		Pending: c.inFlight,
		HasMore: c.hasMoreLocked(),
		Err:     c.lastErr,
	}

	if len(c.pages) > 0 {
		p := c.pages[len(c.pages)-1].Pagination
		snap.Pagination = &p
	}

	return snap
}

// Collect fetches pages until maxPages have been accumulated or the list is
// exhausted. maxPages <= 0 means no limit.
func (c *Controller) Collect(ctx context.Context, maxPages int) error {
	for c.HasMore() {
		if maxPages > 0 && c.Snapshot().Pages >= maxPages {
			return nil
		}

		fetched, err := c.FetchNext(ctx)
		if err != nil {
			return err
		}

		if !fetched && c.Pending() {
			return errors.New("another fetch is in flight")
		}
	}

	return nil
}
