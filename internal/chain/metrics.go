package chain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContractCallDurationSeconds tracks eth_call latency by method.
	ContractCallDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gasfutures_chain_call_duration_seconds",
		Help:    "Duration of contract read calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// ContractCallErrorsTotal tracks failed contract reads by method.
	ContractCallErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gasfutures_chain_call_errors_total",
		Help: "Total number of failed contract read calls",
	}, []string{"method"})

	// PollsTotal tracks published poll batches.
	PollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_chain_polls_total",
		Help: "Total number of published on-chain poll batches",
	})

	// PollErrorsTotal tracks failed polls.
	PollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_chain_poll_errors_total",
		Help: "Total number of failed on-chain polls",
	})

	// StalePollsTotal tracks poll batches discarded as stale.
	StalePollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_chain_stale_polls_total",
		Help: "Total number of poll batches discarded after a refresh or address change",
	})

	// RefreshesTotal tracks refresh token increments.
	RefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_chain_refreshes_total",
		Help: "Total number of explicit refreshes",
	})

	// PollDurationSeconds tracks full batch duration.
	PollDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gasfutures_chain_poll_duration_seconds",
		Help:    "Duration of a full on-chain poll batch",
		Buckets: prometheus.DefBuckets,
	})

	// MarketsGauge is the number of markets in the published snapshot.
	MarketsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_chain_markets",
		Help: "Number of on-chain markets in the current snapshot",
	})
)
