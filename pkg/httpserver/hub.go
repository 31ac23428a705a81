package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/mselser95/gasfutures/internal/chain"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

// MessageTypeChainMarkets tags a pushed chain snapshot.
const MessageTypeChainMarkets = "chain-markets"

//nolint:gochecknoglobals // websocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PushMessage is the envelope of every websocket frame.
type PushMessage struct {
	Type string               `json:"type"`
	Data ChainMarketsResponse `json:"data"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// last is the PolledAt of the newest frame queued, guarded by hub.mu.
	last time.Time
}

// Hub fans chain snapshots out to websocket clients. Each client gets the
// current snapshot on connect and every later poll result after that, never
// a frame older than one it already has. A client whose buffer is full misses
// frames instead of blocking the hub.
type Hub struct {
	source ChainSource
	now    func() time.Time
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a hub reading from source.
func NewHub(source ChainSource, now func() time.Time, logger *zap.Logger) *Hub {
	if now == nil {
		now = time.Now
	}

	return &Hub{
		source:  source,
		now:     now,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Run forwards published snapshots until ctx is done, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) error {
	updates, cancel := h.source.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case snap, ok := <-updates:
			if !ok {
				h.closeAll()
				return nil
			}
			if snap == nil {
				continue
			}

			msg, err := h.encode(snap)
			if err != nil {
				h.logger.Error("ws-encode-failed", zap.Error(err))
				continue
			}

			h.broadcast(msg, snap.PolledAt)
		}
	}
}

// HandleWS upgrades the request and registers the connection.
// GET /ws/chain
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws-upgrade-failed", zap.Error(err))
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	if !h.register(c) {
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) encode(snap *chain.Snapshot) ([]byte, error) {
	return json.Marshal(PushMessage{
		Type: MessageTypeChainMarkets,
		Data: projectSnapshot(snap, h.now()),
	})
}

// register adds c and queues the current snapshot for it. Both happen under
// the write lock, so no broadcast can slip in between reading the snapshot and
// queueing it.
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)

	if snap := h.source.Snapshot(); snap != nil {
		msg, err := h.encode(snap)
		if err != nil {
			h.logger.Error("ws-encode-failed", zap.Error(err))
		} else {
			c.trySend(msg, snap.PolledAt)
		}
	}
	h.mu.Unlock()

	WSClients.Set(float64(count))
	h.logger.Info("ws-client-connected", zap.Int("total-clients", count))

	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()

	WSClients.Set(float64(count))
	h.logger.Info("ws-client-disconnected", zap.Int("total-clients", count))
}

// broadcast is only called from Run, so client.last has a single writer
// while the read lock is held.
func (h *Hub) broadcast(msg []byte, polledAt time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		c.trySend(msg, polledAt)
	}

	WSBroadcastsTotal.Inc()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}

	WSClients.Set(0)
}

// trySend must be called with the hub lock held and c registered. A frame
// polled before the last one queued is dropped.
func (c *client) trySend(msg []byte, polledAt time.Time) {
	if polledAt.Before(c.last) {
		WSStaleDroppedTotal.Inc()
		return
	}

	select {
	case c.send <- msg:
		c.last = polledAt
	default:
		WSDroppedTotal.Inc()
		c.hub.logger.Warn("ws-dropping-message-for-slow-client")
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("ws-unexpected-close", zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			err := c.conn.WriteMessage(websocket.TextMessage, msg)
			if err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}
