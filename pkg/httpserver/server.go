package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mselser95/gasfutures/internal/chain"
	"github.com/mselser95/gasfutures/internal/pager"
	"github.com/mselser95/gasfutures/pkg/cache"
	"github.com/mselser95/gasfutures/pkg/healthprobe"
	"github.com/mselser95/gasfutures/pkg/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MarketSource serves the remote market list and market details.
type MarketSource interface {
	pager.PageFetcher
	FetchMarket(ctx context.Context, idOrSlug string) (*types.Market, error)
}

// ChainSource publishes on-chain market snapshots.
type ChainSource interface {
	Snapshot() *chain.Snapshot
	Subscribe() (<-chan *chain.Snapshot, func())
}

// PortfolioSource returns every position held by an address.
type PortfolioSource interface {
	FetchAll(ctx context.Context, address string, q types.PortfolioQuery) ([]types.Position, error)
}

// TransactionLister returns the most recent journaled transactions.
type TransactionLister interface {
	RecentTransactions(ctx context.Context, limit int) ([]types.TxRecord, error)
}

// Server provides HTTP endpoints for metrics, health checks and the market
// views.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	hub           *Hub
}

// Config holds server configuration. Markets, Chain and Portfolio are
// optional; the routes backed by a nil source are not registered.
type Config struct {
	Port          string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker

	Markets   MarketSource
	PageCache cache.Cache
	CacheTTL  time.Duration
	NetworkID int
	PageSize  int
	MaxPages  int

	Chain        ChainSource
	Portfolio    PortfolioSource
	Transactions TransactionLister

	// Now defaults to time.Now.
	Now func() time.Time
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	h := newHandlers(cfg)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		if cfg.Markets != nil {
			r.Get("/api/markets", h.handleMarkets)
			r.Get("/api/markets/{id}", h.handleMarket)
		}

		if cfg.Chain != nil {
			r.Get("/api/chain/markets", h.handleChainMarkets)
		}

		if cfg.Portfolio != nil {
			r.Get("/api/portfolio/{address}", h.handlePortfolio)
		}

		if cfg.Transactions != nil {
			r.Get("/api/transactions", h.handleTransactions)
		}
	})

	var hub *Hub
	if cfg.Chain != nil {
		hub = NewHub(cfg.Chain, h.now, cfg.Logger)
		r.Get("/ws/chain", hub.HandleWS)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server:        server,
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
		hub:           hub,
	}
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server stops or encounters an error.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// RunPush forwards chain snapshots to websocket clients until ctx is done.
// It returns immediately when no chain source is configured.
func (s *Server) RunPush(ctx context.Context) error {
	if s.hub == nil {
		return nil
	}

	return s.hub.Run(ctx)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
