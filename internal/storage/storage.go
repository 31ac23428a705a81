package storage

import (
	"context"

	"github.com/mselser95/gasfutures/pkg/types"
)

// Journal is the interface for recording contract writes.
type Journal interface {
	// RecordTransaction stores a transaction record. Recording the same ID
	// again updates status, gas used and confirmation time.
	RecordTransaction(ctx context.Context, rec *types.TxRecord) error

	// Close closes the storage connection.
	Close() error
}
