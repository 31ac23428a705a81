package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/mselser95/gasfutures/internal/chain"
	"github.com/mselser95/gasfutures/internal/filters"
	"github.com/mselser95/gasfutures/internal/pager"
	"github.com/mselser95/gasfutures/internal/portfolio"
	"github.com/mselser95/gasfutures/internal/view"
	"github.com/mselser95/gasfutures/pkg/types"
	"go.uber.org/zap"
)

const defaultMaxPages = 10

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MarketsResponse is the aggregated market list for one filter.
type MarketsResponse struct {
	Filter     FilterInfo        `json:"filter"`
	Markets    []view.MarketRow  `json:"markets"`
	Pages      int               `json:"pages"`
	HasMore    bool              `json:"hasMore"`
	Pagination *types.Pagination `json:"pagination,omitempty"`
}

// FilterInfo echoes the filter a list was built for.
type FilterInfo struct {
	Keyword string            `json:"keyword,omitempty"`
	Topic   string            `json:"topic"`
	Sort    types.SortKey     `json:"sort"`
	State   types.MarketState `json:"state"`
}

// ChainMarketsResponse is the projected on-chain market list.
type ChainMarketsResponse struct {
	Address  string          `json:"address,omitempty"`
	PolledAt time.Time       `json:"polledAt"`
	Markets  []view.ChainRow `json:"markets"`
}

// PortfolioResponse is the position list of one address.
type PortfolioResponse struct {
	Address   string            `json:"address"`
	Summary   portfolio.Summary `json:"summary"`
	Positions []types.Position  `json:"positions"`
}

type handlers struct {
	markets  MarketSource
	cfg      *Config
	maxPages int
	pageSize int
	now      func() time.Time
	logger   *zap.Logger
}

func newHandlers(cfg *Config) *handlers {
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 12
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &handlers{
		markets:  cfg.Markets,
		cfg:      cfg,
		maxPages: maxPages,
		pageSize: pageSize,
		now:      now,
		logger:   cfg.Logger,
	}
}

// handleMarkets handles GET /api/markets?keyword=&topic=&sort=&state=&limit=&pages=
func (h *handlers) handleMarkets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f, err := filters.New(q.Get("keyword"), q.Get("topic"), q.Get("sort"), q.Get("state"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit, err := intParam(q.Get("limit"), h.pageSize, 1, types.MaxPageLimit)
	if err != nil {
		h.writeError(w, "limit: "+err.Error(), http.StatusBadRequest)
		return
	}

	pages, err := intParam(q.Get("pages"), 1, 1, h.maxPages)
	if err != nil {
		h.writeError(w, "pages: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctrl, err := pager.New(&pager.Config{
		Fetcher:   h.markets,
		Cache:     h.cfg.PageCache,
		CacheTTL:  h.cfg.CacheTTL,
		NetworkID: h.cfg.NetworkID,
		Limit:     limit,
		Filter:    f,
		Logger:    h.logger,
	})
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = ctrl.Collect(r.Context(), pages)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	snap := ctrl.Snapshot()

	h.writeJSON(w, http.StatusOK, MarketsResponse{
		Filter: FilterInfo{
			Keyword: f.Keyword(),
			Topic:   f.Topic(),
			Sort:    f.Sort(),
			State:   f.State(),
		},
		Markets:    view.ProjectMarkets(snap.Items, h.now()),
		Pages:      snap.Pages,
		HasMore:    snap.HasMore,
		Pagination: snap.Pagination,
	})
}

// handleMarket handles GET /api/markets/{id}. The id may also be a slug.
func (h *handlers) handleMarket(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.writeError(w, "missing market id", http.StatusBadRequest)
		return
	}

	market, err := h.markets.FetchMarket(r.Context(), id)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, market)
}

// handleChainMarkets handles GET /api/chain/markets.
func (h *handlers) handleChainMarkets(w http.ResponseWriter, r *http.Request) {
	snap := h.cfg.Chain.Snapshot()
	if snap == nil {
		h.writeError(w, "chain markets not loaded yet", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, http.StatusOK, projectSnapshot(snap, h.now()))
}

// handlePortfolio handles GET /api/portfolio/{address}.
func (h *handlers) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !common.IsHexAddress(address) {
		h.writeError(w, "invalid address", http.StatusBadRequest)
		return
	}

	positions, err := h.cfg.Portfolio.FetchAll(r.Context(), address, types.PortfolioQuery{
		NetworkID: h.cfg.NetworkID,
	})
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, PortfolioResponse{
		Address:   address,
		Summary:   portfolio.Summarize(positions),
		Positions: positions,
	})
}

// handleTransactions handles GET /api/transactions?limit=
func (h *handlers) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"), 20, 1, types.MaxPageLimit)
	if err != nil {
		h.writeError(w, "limit: "+err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.cfg.Transactions.RecentTransactions(r.Context(), limit)
	if err != nil {
		h.logger.Error("list-transactions-failed", zap.Error(err))
		h.writeError(w, "list transactions failed", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []types.TxRecord{}
	}

	h.writeJSON(w, http.StatusOK, records)
}

func (h *handlers) writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *types.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 600 {
		h.writeError(w, apiErr.Message, apiErr.StatusCode)
		return
	}

	h.logger.Warn("upstream-request-failed", zap.Error(err))
	h.writeError(w, err.Error(), http.StatusBadGateway)
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *handlers) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, statusCode, ErrorResponse{Error: message})
}

func projectSnapshot(snap *chain.Snapshot, now time.Time) ChainMarketsResponse {
	return ChainMarketsResponse{
		Address:  snap.Address,
		PolledAt: snap.PolledAt,
		Markets:  view.ProjectChain(snap.Markets, now),
	}
}

func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("not a number")
	}

	if n < lo || n > hi {
		return 0, fmt.Errorf("must be between %d and %d", lo, hi)
	}

	return n, nil
}
