package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mselser95/gasfutures/pkg/types"
	"go.uber.org/zap"
)

// ConsoleStorage implements Journal by printing to the console.
type ConsoleStorage struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage writing to stdout.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		out:    os.Stdout,
		logger: logger,
	}
}

// RecordTransaction prints one line per status change.
func (c *ConsoleStorage) RecordTransaction(ctx context.Context, rec *types.TxRecord) error {
	var marker string
	switch rec.Status {
	case types.TxStatusConfirmed:
		marker = "✅"
	case types.TxStatusFailed:
		marker = "❌"
	default:
		marker = "⏳"
	}

	line := fmt.Sprintf("%s %-9s %-12s %s args=[%s]",
		marker, rec.Status, rec.Method, rec.Hash, rec.Args)
	if rec.ConfirmedAt != nil {
		line += fmt.Sprintf(" gas=%d after=%s",
			rec.GasUsed, rec.ConfirmedAt.Sub(rec.SubmittedAt).Round(time.Millisecond))
	}

	_, err := fmt.Fprintln(c.out, line)
	return err
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
