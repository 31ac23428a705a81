// Package websocket is a reconnecting client for the server's push stream.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Message is one frame of the push stream: a type tag and its payload.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client keeps one connection to a push endpoint open, reconnecting with
// backoff whenever it drops, and delivers decoded frames on Messages.
type Client struct {
	config   Config
	logger   *zap.Logger
	backoff  *Backoff
	messages chan Message

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	mu        sync.Mutex
	conn      *websocket.Conn
	connected atomic.Bool
}

// Config holds push client configuration.
type Config struct {
	URL         string
	DialTimeout time.Duration
	// ReadTimeout is the longest silence, pings included, before the
	// connection is considered dead.
	ReadTimeout       time.Duration
	Reconnect         ReconnectConfig
	MessageBufferSize int
	Logger            *zap.Logger
}

// New creates a client. Nothing is dialed until Start.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("url cannot be empty")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 90 * time.Second
	}
	if cfg.MessageBufferSize <= 0 {
		cfg.MessageBufferSize = 16
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:   cfg,
		logger:   cfg.Logger,
		backoff:  NewBackoff(cfg.Reconnect),
		messages: make(chan Message, cfg.MessageBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start dials the endpoint and starts reading. A failed first dial is
// returned; later drops are retried until Close.
func (c *Client) Start() error {
	c.logger.Info("push-client-starting", zap.String("url", c.config.URL))

	err := c.connect(c.ctx)
	if err != nil {
		return fmt.Errorf("initial connection: %w", err)
	}

	c.wg.Add(1)
	go c.run()

	return nil
}

// Messages returns the channel of received frames. It is closed by Close.
func (c *Client) Messages() <-chan Message {
	return c.messages
}

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.DialTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.config.URL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if c.ctx.Err() != nil {
		conn.Close()
		return c.ctx.Err()
	}

	c.connected.Store(true)
	Connected.Set(1)

	c.logger.Info("push-client-connected")

	return nil
}

func (c *Client) run() {
	defer c.wg.Done()

	for {
		c.readLoop()

		if c.ctx.Err() != nil {
			return
		}

		c.logger.Warn("connection-lost-initiating-reconnect")

		err := Retry(c.ctx, c.backoff, c.logger, c.connect)
		if err != nil {
			return
		}
	}
}

// readLoop reads the current connection until it fails.
func (c *Client) readLoop() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	start := time.Now()
	defer func() {
		ConnectionDuration.Observe(time.Since(start).Seconds())
		c.connected.Store(false)
		Connected.Set(0)
		conn.Close()
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				c.logger.Warn("read-error", zap.Error(err))
			}
			return
		}

		var msg Message
		err = json.Unmarshal(data, &msg)
		if err != nil || msg.Type == "" {
			MessagesDroppedTotal.WithLabelValues("malformed").Inc()
			c.logger.Debug("push-message-unparseable",
				zap.Int("bytes", len(data)),
				zap.Error(err))
			continue
		}

		MessagesReceivedTotal.WithLabelValues(msg.Type).Inc()

		select {
		case c.messages <- msg:
		case <-c.ctx.Done():
			return
		default:
			MessagesDroppedTotal.WithLabelValues("channel_full").Inc()
			c.logger.Warn("message-channel-full", zap.String("type", msg.Type))
		}
	}
}

// Close stops reconnecting, closes the connection and then Messages.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.logger.Info("closing-push-client")

		c.cancel()

		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()

		c.wg.Wait()

		close(c.messages)
		Connected.Set(0)
	})

	return nil
}
