package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// Connected is 1 while the client holds an open connection.
	Connected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_ws_client_connected",
		Help: "Whether the push client is connected",
	})

	// ReconnectAttemptsTotal tracks reconnection attempts.
	ReconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_ws_client_reconnect_attempts_total",
		Help: "Total number of push client reconnection attempts",
	})

	// ReconnectFailuresTotal tracks reconnection failures.
	ReconnectFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_ws_client_reconnect_failures_total",
		Help: "Total number of push client reconnection failures",
	})

	// MessagesReceivedTotal tracks messages received by type.
	MessagesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gasfutures_ws_client_messages_received_total",
			Help: "Total number of push messages received",
		},
		[]string{"type"},
	)

	// MessagesDroppedTotal tracks messages the client could not deliver.
	MessagesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gasfutures_ws_client_messages_dropped_total",
			Help: "Total number of push messages dropped",
		},
		[]string{"reason"},
	)

	// ConnectionDuration tracks connection lifetime.
	ConnectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gasfutures_ws_client_connection_duration_seconds",
		Help:    "Duration of push connections before disconnect",
		Buckets: []float64{60, 300, 600, 1800, 3600, 7200, 14400, 28800, 43200, 86400},
	})
)
