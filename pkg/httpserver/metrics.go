package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// WSClients tracks connected websocket clients.
	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gasfutures_ws_clients",
		Help: "Number of connected websocket clients",
	})

	// WSBroadcastsTotal counts chain snapshots pushed to clients.
	WSBroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_ws_broadcasts_total",
		Help: "Total number of chain snapshots broadcast to websocket clients",
	})

	// WSDroppedTotal counts frames dropped for slow clients.
	WSDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_ws_dropped_total",
		Help: "Total number of websocket frames dropped because a client buffer was full",
	})

	// WSStaleDroppedTotal counts frames skipped because the client already
	// has a newer snapshot.
	WSStaleDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gasfutures_ws_stale_dropped_total",
		Help: "Total number of websocket frames skipped because they were older than the last frame sent",
	})
)
