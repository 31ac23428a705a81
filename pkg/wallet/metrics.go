package wallet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ConnectedGauge is 1 while a wallet address is connected.
	ConnectedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_connected",
		Help: "1 if a wallet address is connected, 0 otherwise",
	})

	// NativeBalance tracks the native balance used for gas.
	NativeBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_native_balance",
		Help: "Current native balance in wallet (ether units)",
	})

	// StableBalance tracks the stable-token balance used for bets.
	StableBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_stable_balance",
		Help: "Current stable-token balance in wallet",
	})

	// ActivePositions tracks the number of positions.
	ActivePositions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_positions",
		Help: "Number of market positions",
	})

	// ClaimablePositions tracks positions with unclaimed winnings.
	ClaimablePositions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_claimable_positions",
		Help: "Number of positions with winnings to claim",
	})

	// TotalPositionValue tracks the sum of all position current values.
	TotalPositionValue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_total_position_value",
		Help: "Sum of all position current values",
	})

	// TotalPositionCost tracks the sum of all position cost bases.
	TotalPositionCost = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_total_position_cost",
		Help: "Sum of all position invested amounts",
	})

	// UnrealizedPnL tracks the total profit/loss from positions.
	UnrealizedPnL = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_unrealized_pnl",
		Help: "Total P&L from positions",
	})

	// UnrealizedPnLPercent tracks the total P&L as a percentage.
	UnrealizedPnLPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_unrealized_pnl_percent",
		Help: "Total P&L as percentage of invested",
	})

	// PortfolioValue tracks the total portfolio value (stable + positions).
	PortfolioValue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_portfolio_value",
		Help: "Total portfolio value: stable balance + positions",
	})

	// UpdateErrorsTotal tracks the number of failed update attempts.
	UpdateErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_wallet_update_errors_total",
		Help: "Total number of failed wallet update attempts",
	})

	// UpdateDuration tracks the time taken to fetch wallet data.
	UpdateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gasfutures_wallet_update_duration_seconds",
		Help:    "Time taken to fetch wallet data (seconds)",
		Buckets: prometheus.DefBuckets,
	})

	// LastUpdateTimestamp tracks the Unix timestamp of the last successful update.
	LastUpdateTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_wallet_last_update_timestamp",
		Help: "Unix timestamp of last successful wallet update",
	})
)
