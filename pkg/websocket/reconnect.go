package websocket

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReconnectConfig holds the configuration for exponential backoff reconnection.
type ReconnectConfig struct {
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterPercent     float64 // 0.2 = 20%
}

// Backoff hands out reconnect delays: InitialDelay, growing by
// BackoffMultiplier after every failure up to MaxDelay, each stretched by a
// random jitter of up to JitterPercent.
type Backoff struct {
	config  ReconnectConfig
	mu      sync.Mutex
	current time.Duration
}

// NewBackoff creates a backoff positioned at the initial delay.
func NewBackoff(cfg ReconnectConfig) *Backoff {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = time.Second
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 1
	}

	return &Backoff{
		config:  cfg,
		current: cfg.InitialDelay,
	}
}

// Next returns the delay before the next attempt and grows the base delay.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	jitter := rand.Float64() * b.config.JitterPercent //nolint:gosec // jitter only
	delay := time.Duration(float64(b.current) * (1.0 + jitter))

	grown := time.Duration(float64(b.current) * b.config.BackoffMultiplier)
	if grown > b.config.MaxDelay {
		grown = b.config.MaxDelay
	}
	b.current = grown

	return delay
}

// Reset returns the backoff to the initial delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.config.InitialDelay
}

// Retry calls connect until it succeeds or ctx is done, sleeping a backoff
// delay before every attempt. The backoff is reset on success.
func Retry(ctx context.Context, b *Backoff, logger *zap.Logger, connect func(context.Context) error) error {
	for {
		delay := b.Next()

		logger.Info("attempting-reconnection", zap.Duration("backoff", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		ReconnectAttemptsTotal.Inc()

		err := connect(ctx)
		if err == nil {
			b.Reset()
			logger.Info("reconnection-successful")
			return nil
		}

		logger.Warn("reconnection-failed", zap.Error(err))
		ReconnectFailuresTotal.Inc()
	}
}
