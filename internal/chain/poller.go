package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/gasfutures/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxMarkets bounds the market count a poll will allocate for. The count is
// read from the contract and is not trusted.
const maxMarkets = 10000

// AddressSource reports the connected wallet address, if any.
type AddressSource interface {
	Address() (common.Address, bool)
}

// Snapshot is one complete poll result. It is never modified after being
// published.
type Snapshot struct {
	Markets      []types.ChainMarket `json:"markets"`
	Address      string              `json:"address,omitempty"`
	RefreshToken uint64              `json:"refreshToken"`
	PolledAt     time.Time           `json:"polledAt"`
}

// Poller assembles the on-chain market list. Every poll is one batch: market
// count, then each market record and, with a connected address, its
// balances. The batch result replaces the published snapshot as a whole, and
// only if the refresh token and address it started with are still current.
type Poller struct {
	reader      Reader
	wallet      AddressSource
	changes     <-chan struct{}
	interval    time.Duration
	concurrency int
	logger      *zap.Logger

	// pollMu serializes batches.
	pollMu sync.Mutex

	mu          sync.RWMutex
	token       uint64
	snapshot    *Snapshot
	subscribers map[int]chan *Snapshot
	nextSubID   int

	refreshCh chan struct{}
}

// PollerConfig holds poller configuration.
type PollerConfig struct {
	Reader Reader
	// Wallet may be nil, in which case no balances are read.
	Wallet AddressSource
	// AddressChanges, if set, triggers a poll on every receive.
	AddressChanges <-chan struct{}
	Interval       time.Duration
	Concurrency    int
	Logger         *zap.Logger
}

// NewPoller creates a poller.
func NewPoller(cfg *PollerConfig) (*Poller, error) {
	if cfg.Reader == nil {
		return nil, errors.New("reader cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Poller{
		reader:      cfg.Reader,
		wallet:      cfg.Wallet,
		changes:     cfg.AddressChanges,
		interval:    cfg.Interval,
		concurrency: concurrency,
		logger:      cfg.Logger,
		subscribers: make(map[int]chan *Snapshot),
		refreshCh:   make(chan struct{}, 1),
	}, nil
}

// Refresh invalidates the current snapshot and asks Run to re-poll. It returns
// the new refresh token.
func (p *Poller) Refresh() uint64 {
	p.mu.Lock()
	p.token++
	token := p.token
	p.mu.Unlock()

	RefreshesTotal.Inc()

	select {
	case p.refreshCh <- struct{}{}:
	default:
	}

	return token
}

// RefreshToken returns the current refresh token.
func (p *Poller) RefreshToken() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Snapshot returns the last published snapshot, or nil before the first poll.
func (p *Poller) Snapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Subscribe returns a channel receiving every published snapshot. A slow
// subscriber misses intermediate snapshots rather than blocking the poller.
func (p *Poller) Subscribe() (<-chan *Snapshot, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSubID
	p.nextSubID++

	ch := make(chan *Snapshot, 1)
	p.subscribers[id] = ch

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if sub, ok := p.subscribers[id]; ok {
			delete(p.subscribers, id)
			close(sub)
		}
	}
}

func (p *Poller) address() (common.Address, bool) {
	if p.wallet == nil {
		return common.Address{}, false
	}
	return p.wallet.Address()
}

// Poll runs one batch. It returns true if the result was published and false
// if it was discarded because the refresh token or address changed while it
// ran.
func (p *Poller) Poll(ctx context.Context) (bool, error) {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	token := p.RefreshToken()
	owner, connected := p.address()

	start := time.Now()
	markets, err := p.collect(ctx, owner, connected)
	PollDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		PollErrorsTotal.Inc()
		return false, err
	}

	snap := &Snapshot{
		Markets:      markets,
		RefreshToken: token,
		PolledAt:     time.Now(),
	}
	if connected {
		snap.Address = owner.Hex()
	}

	currentOwner, currentConnected := p.address()

	p.mu.Lock()
	if token != p.token || currentOwner != owner || currentConnected != connected {
		p.mu.Unlock()
		StalePollsTotal.Inc()
		p.logger.Debug("stale-poll-discarded",
			zap.Uint64("token", token),
			zap.Bool("connected", connected))
		return false, nil
	}

	p.snapshot = snap
	subs := make([]chan *Snapshot, 0, len(p.subscribers))
	for _, ch := range p.subscribers {
		subs = append(subs, ch)
	}

	// Deliver under the lock so an unsubscribe cannot close a channel mid-send.
	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	p.mu.Unlock()

	MarketsGauge.Set(float64(len(markets)))
	PollsTotal.Inc()

	p.logger.Debug("poll-complete",
		zap.Int("markets", len(markets)),
		zap.Uint64("token", token),
		zap.Bool("connected", connected),
		zap.Duration("duration", time.Since(start)))

	return true, nil
}

// collect reads every market in index order. Reads run concurrently; results
// are placed by index.
func (p *Poller) collect(ctx context.Context, owner common.Address, connected bool) ([]types.ChainMarket, error) {
	count, err := p.reader.MarketCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("read market count: %w", err)
	}

	if count > maxMarkets {
		return nil, fmt.Errorf("market count %d exceeds limit %d", count, maxMarkets)
	}

	markets := make([]types.ChainMarket, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := uint64(0); i < count; i++ {
		g.Go(func() error {
			m, err := p.reader.Market(gctx, i)
			if err != nil {
				return fmt.Errorf("read market %d: %w", i, err)
			}

			record := *m
			record.ID = i
			record.UserLong = new(big.Int)
			record.UserShort = new(big.Int)

			if connected {
				long, short, err := p.reader.Balances(gctx, i, owner)
				if err != nil {
					return fmt.Errorf("read balances %d: %w", i, err)
				}
				record.UserLong = long
				record.UserShort = short
			}

			markets[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return markets, nil
}

// Run polls once immediately, then on every refresh, address change, or tick
// on which the market count differs from the snapshot. It returns when ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.pollAndLog(ctx, "start")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-p.refreshCh:
			p.pollAndLog(ctx, "refresh")

		case _, ok := <-p.changes:
			if !ok {
				p.changes = nil
				continue
			}
			p.pollAndLog(ctx, "address-changed")

		case <-ticker.C:
			if p.countChanged(ctx) {
				p.pollAndLog(ctx, "count-changed")
			}
		}
	}
}

func (p *Poller) countChanged(ctx context.Context) bool {
	snap := p.Snapshot()
	if snap == nil {
		return true
	}

	count, err := p.reader.MarketCount(ctx)
	if err != nil {
		PollErrorsTotal.Inc()
		p.logger.Warn("market-count-read-failed", zap.Error(err))
		return false
	}

	return count != uint64(len(snap.Markets))
}

func (p *Poller) pollAndLog(ctx context.Context, reason string) {
	applied, err := p.Poll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("poll-failed", zap.String("reason", reason), zap.Error(err))
		}
		return
	}

	if applied {
		p.logger.Info("chain-markets-updated", zap.String("reason", reason))
	}
}
