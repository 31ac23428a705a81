package wallet

import (
	"context"
	"errors"
	"math/big"
	"time"

	"go.uber.org/zap"
)

// Holdings is the aggregate of a user's market positions.
type Holdings struct {
	Positions int
	Value     float64
	Invested  float64
	Profit    float64
	Claimable int
}

// HoldingsSource summarizes the positions of an address.
type HoldingsSource interface {
	Holdings(ctx context.Context, address string) (*Holdings, error)
}

// Tracker periodically records the connected wallet's balances and holdings
// as Prometheus metrics.
type Tracker struct {
	client       *Client
	session      *Session
	holdings     HoldingsSource
	pollInterval time.Duration
	logger       *zap.Logger
}

// Config holds tracker configuration.
type Config struct {
	Client  *Client
	Session *Session
	// Holdings is optional; without it only balances are tracked.
	Holdings     HoldingsSource
	PollInterval time.Duration
	Logger       *zap.Logger
}

// New creates a new wallet tracker.
func New(cfg *Config) (t *Tracker, err error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Client == nil {
		return nil, errors.New("client cannot be nil")
	}

	if cfg.Session == nil {
		return nil, errors.New("session cannot be nil")
	}

	if cfg.PollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}

	tracker := &Tracker{
		client:       cfg.Client,
		session:      cfg.Session,
		holdings:     cfg.Holdings,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
	}

	return tracker, nil
}

// Run starts the tracker polling loop (blocking).
func (t *Tracker) Run(ctx context.Context) (err error) {
	t.logger.Info("wallet-tracker-starting",
		zap.Duration("poll-interval", t.pollInterval))

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	changes, unsubscribe := t.session.Subscribe()
	defer unsubscribe()

	t.pollAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("wallet-tracker-stopping")
			return ctx.Err()
		case <-changes:
			t.pollAndLog(ctx)
		case <-ticker.C:
			t.pollAndLog(ctx)
		}
	}
}

func (t *Tracker) pollAndLog(ctx context.Context) {
	err := t.poll(ctx)
	if errors.Is(err, ErrNotConnected) {
		t.logger.Debug("wallet-not-connected")
		return
	}

	if err != nil && ctx.Err() == nil {
		t.logger.Error("poll-failed", zap.Error(err))
		UpdateErrorsTotal.Inc()
	}
}

// poll performs a single polling cycle.
func (t *Tracker) poll(ctx context.Context) (err error) {
	address, err := t.session.RequireAddress()
	if err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		UpdateDuration.Observe(time.Since(start).Seconds())
	}()

	balCtx, balCancel := context.WithTimeout(ctx, 15*time.Second)
	defer balCancel()

	balances, err := t.client.GetBalances(balCtx, address)
	if err != nil {
		return err
	}

	var holdings *Holdings
	if t.holdings != nil {
		posCtx, posCancel := context.WithTimeout(ctx, 15*time.Second)
		defer posCancel()

		holdings, err = t.holdings.Holdings(posCtx, address.Hex())
		if err != nil {
			return err
		}
	}

	t.updateMetrics(balances, holdings)
	LastUpdateTimestamp.Set(float64(time.Now().Unix()))

	t.logger.Debug("poll-complete",
		zap.String("address", address.Hex()),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// updateMetrics updates Prometheus gauges with wallet data.
func (t *Tracker) updateMetrics(balances *Balances, holdings *Holdings) {
	nativeVal := toFloat(balances.Native, 1e18)
	NativeBalance.Set(nativeVal)

	stableVal := toFloat(balances.Stable, 1e6)
	StableBalance.Set(stableVal)

	if holdings == nil {
		PortfolioValue.Set(stableVal)
		return
	}

	ActivePositions.Set(float64(holdings.Positions))
	ClaimablePositions.Set(float64(holdings.Claimable))
	TotalPositionValue.Set(holdings.Value)
	TotalPositionCost.Set(holdings.Invested)
	UnrealizedPnL.Set(holdings.Profit)

	pnlPct := 0.0
	if holdings.Invested > 0 {
		pnlPct = (holdings.Profit / holdings.Invested) * 100
	}
	UnrealizedPnLPercent.Set(pnlPct)

	// Portfolio value = stable balance + positions
	PortfolioValue.Set(stableVal + holdings.Value)
}

func toFloat(v *big.Int, scale float64) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), big.NewFloat(scale)).Float64()
	return f
}
