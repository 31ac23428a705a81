package pager

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Loader is the part of a Controller the trigger drives.
type Loader interface {
	HasMore() bool
	Pending() bool
	FetchNext(ctx context.Context) (bool, error)
}

// Trigger turns sentinel visibility into next-page requests. A visible
// sentinel starts at most one load at a time, and only when the loader has
// more pages and nothing pending.
type Trigger struct {
	loader Loader
	onLoad func(fetched bool, err error)
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	busy   bool
	closed bool
	wg     sync.WaitGroup
}

// NewTrigger creates a trigger. onLoad, if set, runs after every load the
// trigger started, on the loading goroutine.
func NewTrigger(loader Loader, onLoad func(fetched bool, err error), logger *zap.Logger) *Trigger {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Trigger{
		loader: loader,
		onLoad: onLoad,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Observe reports a visibility change of the sentinel. It returns true if a
// load was started.
func (t *Trigger) Observe(visible bool) bool {
	if !visible {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.busy {
		return false
	}

	if !t.loader.HasMore() || t.loader.Pending() {
		return false
	}

	t.busy = true
	t.wg.Add(1)

	go t.load()

	return true
}

func (t *Trigger) load() {
	defer t.wg.Done()

	fetched, err := t.loader.FetchNext(t.ctx)

	t.mu.Lock()
	t.busy = false
	closed := t.closed
	t.mu.Unlock()

	if closed {
		return
	}

	if err != nil {
		t.logger.Warn("sentinel-load-failed", zap.Error(err))
	}

	if t.onLoad != nil {
		t.onLoad(fetched, err)
	}
}

// Wait blocks until any load started by Observe has finished.
func (t *Trigger) Wait() {
	t.wg.Wait()
}

// Close stops observing and cancels an in-flight load. Once Close returns no
// further onLoad callback runs and Observe is a no-op.
func (t *Trigger) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}
