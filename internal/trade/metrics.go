package trade

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// TxSubmittedTotal tracks transactions accepted by the node.
	TxSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gasfutures_trade_tx_submitted_total",
		Help: "Total number of submitted contract writes",
	}, []string{"method"})

	// TxConfirmedTotal tracks successful transactions.
	TxConfirmedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gasfutures_trade_tx_confirmed_total",
		Help: "Total number of confirmed contract writes",
	}, []string{"method"})

	// TxFailedTotal tracks rejected, reverted or unconfirmed transactions.
	TxFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gasfutures_trade_tx_failed_total",
		Help: "Total number of failed contract writes",
	}, []string{"method"})

	// ValidationRejectsTotal tracks writes rejected before submission.
	ValidationRejectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gasfutures_trade_validation_rejects_total",
		Help: "Total number of writes rejected by input validation",
	}, []string{"method"})

	// TxConfirmationSeconds tracks time from submission to receipt.
	TxConfirmationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gasfutures_trade_tx_confirmation_seconds",
		Help:    "Time from submission to receipt",
		Buckets: []float64{1, 2, 5, 10, 15, 30, 60, 120, 300},
	})
)
