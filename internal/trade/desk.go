// Package trade runs contract writes: create market, bet long, bet short and
// redeem. Inputs are validated before anything is sent, and a confirmed write
// refreshes the on-chain market list.
package trade

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/mselser95/gasfutures/internal/chain"
	"github.com/mselser95/gasfutures/pkg/types"
	"go.uber.org/zap"
)

// Submitter sends signed contract calls. *chain.Transactor satisfies it.
type Submitter interface {
	Submit(ctx context.Context, method string, args ...interface{}) (*gethtypes.Transaction, error)
	Wait(ctx context.Context, tx *gethtypes.Transaction) (*gethtypes.Receipt, error)
	From() common.Address
}

// Refresher invalidates the on-chain market list. *chain.Poller satisfies it.
type Refresher interface {
	Refresh() uint64
}

// Recorder journals transactions.
type Recorder interface {
	RecordTransaction(ctx context.Context, rec *types.TxRecord) error
}

// Desk owns the pending transaction and the create-market dialog state.
// Only one write can be confirming at a time.
type Desk struct {
	submitter Submitter
	refresher Refresher
	recorder  Recorder
	timeout   time.Duration
	logger    *zap.Logger

	mu         sync.Mutex
	busy       bool
	pending    *types.PendingTransaction
	createOpen bool
}

// Config holds desk configuration.
type Config struct {
	Submitter Submitter
	Refresher Refresher // optional
	Recorder  Recorder  // optional
	// Timeout bounds the wait for a receipt. Zero means no bound beyond ctx.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewDesk creates a desk.
func NewDesk(cfg *Config) (*Desk, error) {
	if cfg.Submitter == nil {
		return nil, errors.New("submitter cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Desk{
		submitter: cfg.Submitter,
		refresher: cfg.Refresher,
		recorder:  cfg.Recorder,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}, nil
}

// OpenCreate opens the create-market dialog.
func (d *Desk) OpenCreate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.createOpen = true
}

// CloseCreate closes the create-market dialog without submitting.
func (d *Desk) CloseCreate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.createOpen = false
}

// CreateOpen reports whether the create-market dialog is open.
func (d *Desk) CreateOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createOpen
}

// Pending returns a copy of the pending transaction, or nil.
func (d *Desk) Pending() *types.PendingTransaction {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil {
		return nil
	}

	p := *d.pending
	return &p
}

// CreateMarket creates a market with the target fee given in gwei and an
// expiry in whole days. The dialog closes only once the transaction succeeds.
func (d *Desk) CreateMarket(ctx context.Context, targetGwei string, days string) (*types.PendingTransaction, error) {
	target, err := ParseGwei(targetGwei)
	if err != nil {
		ValidationRejectsTotal.WithLabelValues(chain.MethodCreateMarket).Inc()
		return nil, err
	}

	n, err := ParseDays(days)
	if err != nil {
		ValidationRejectsTotal.WithLabelValues(chain.MethodCreateMarket).Inc()
		return nil, err
	}

	return d.execute(ctx, chain.MethodCreateMarket, d.CloseCreate, target, n)
}

// BetLong stakes amount on the market settling above its target fee.
func (d *Desk) BetLong(ctx context.Context, marketID uint64, amount string) (*types.PendingTransaction, error) {
	return d.bet(ctx, chain.MethodBetLong, marketID, amount)
}

// BetShort stakes amount on the market settling at or below its target fee.
func (d *Desk) BetShort(ctx context.Context, marketID uint64, amount string) (*types.PendingTransaction, error) {
	return d.bet(ctx, chain.MethodBetShort, marketID, amount)
}

func (d *Desk) bet(ctx context.Context, method string, marketID uint64, amount string) (*types.PendingTransaction, error) {
	value, err := ParseAmount(amount)
	if err != nil {
		ValidationRejectsTotal.WithLabelValues(method).Inc()
		return nil, err
	}

	return d.execute(ctx, method, nil, new(big.Int).SetUint64(marketID), value)
}

// Redeem claims the caller's winnings from a resolved market.
func (d *Desk) Redeem(ctx context.Context, marketID uint64) (*types.PendingTransaction, error) {
	return d.execute(ctx, chain.MethodRedeem, nil, new(big.Int).SetUint64(marketID))
}

// execute submits a write and waits for it. On success the refresher is
// invoked once, onSuccess runs, and the pending transaction is cleared. On
// failure the pending transaction stays with Success false.
func (d *Desk) execute(
	ctx context.Context,
	method string,
	onSuccess func(),
	args ...interface{},
) (*types.PendingTransaction, error) {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.busy = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.busy = false
		d.mu.Unlock()
	}()

	tx, err := d.submitter.Submit(ctx, method, args...)
	if err != nil {
		TxFailedTotal.WithLabelValues(method).Inc()
		d.logger.Warn("tx-submit-failed", zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("submit %s: %w", method, err)
	}

	submittedAt := time.Now()
	TxSubmittedTotal.WithLabelValues(method).Inc()

	d.mu.Lock()
	d.pending = &types.PendingTransaction{
		Hash:       tx.Hash().Hex(),
		Method:     method,
		Confirming: true,
	}
	d.mu.Unlock()

	rec := &types.TxRecord{
		ID:          uuid.NewString(),
		Hash:        tx.Hash().Hex(),
		Method:      method,
		Args:        formatArgs(args),
		From:        d.submitter.From().Hex(),
		Status:      types.TxStatusSubmitted,
		SubmittedAt: submittedAt,
	}
	d.record(ctx, rec)

	d.logger.Info("tx-confirming",
		zap.String("method", method),
		zap.String("tx-hash", rec.Hash))

	waitCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	receipt, err := d.submitter.Wait(waitCtx, tx)
	TxConfirmationSeconds.Observe(time.Since(submittedAt).Seconds())

	if err == nil && receipt.Status != gethtypes.ReceiptStatusSuccessful {
		err = &TxError{Hash: rec.Hash, Method: method}
	} else if err != nil {
		err = &TxError{Hash: rec.Hash, Method: method, Err: err}
	}

	confirmedAt := time.Now()
	rec.ConfirmedAt = &confirmedAt
	if receipt != nil {
		rec.GasUsed = receipt.GasUsed
	}

	if err != nil {
		TxFailedTotal.WithLabelValues(method).Inc()
		rec.Status = types.TxStatusFailed
		d.record(ctx, rec)

		d.mu.Lock()
		d.pending.Confirming = false
		d.pending.Success = false
		result := *d.pending
		d.mu.Unlock()

		d.logger.Warn("tx-failed",
			zap.String("method", method),
			zap.String("tx-hash", rec.Hash),
			zap.Error(err))

		return &result, err
	}

	TxConfirmedTotal.WithLabelValues(method).Inc()
	rec.Status = types.TxStatusConfirmed
	d.record(ctx, rec)

	d.mu.Lock()
	result := types.PendingTransaction{Hash: rec.Hash, Method: method, Success: true}
	d.pending = nil
	d.mu.Unlock()

	if d.refresher != nil {
		d.refresher.Refresh()
	}

	if onSuccess != nil {
		onSuccess()
	}

	d.logger.Info("tx-confirmed",
		zap.String("method", method),
		zap.String("tx-hash", rec.Hash),
		zap.Uint64("gas-used", rec.GasUsed))

	return &result, nil
}

func (d *Desk) record(ctx context.Context, rec *types.TxRecord) {
	if d.recorder == nil {
		return
	}

	// The journal is best-effort; a failed write never fails the trade.
	if err := d.recorder.RecordTransaction(context.WithoutCancel(ctx), rec); err != nil {
		d.logger.Warn("tx-journal-failed",
			zap.String("tx-hash", rec.Hash),
			zap.Error(err))
	}
}

func formatArgs(args []interface{}) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, ",")
}
