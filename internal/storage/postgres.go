package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/mselser95/gasfutures/pkg/types"
	"go.uber.org/zap"
)

const schema = `
	CREATE TABLE IF NOT EXISTS gasfutures_transactions (
		id           UUID PRIMARY KEY,
		tx_hash      TEXT NOT NULL,
		method       TEXT NOT NULL,
		args         TEXT NOT NULL,
		from_address TEXT NOT NULL,
		status       TEXT NOT NULL,
		gas_used     BIGINT NOT NULL DEFAULT 0,
		submitted_at TIMESTAMPTZ NOT NULL,
		confirmed_at TIMESTAMPTZ
	)
`

// PostgresStorage implements Journal using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage and ensures the
// journal table exists.
func NewPostgresStorage(ctx context.Context, cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	storage := &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}

	err = storage.EnsureSchema(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return storage, nil
}

// EnsureSchema creates the journal table if it does not exist.
func (p *PostgresStorage) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// RecordTransaction upserts a transaction record by ID.
func (p *PostgresStorage) RecordTransaction(ctx context.Context, rec *types.TxRecord) error {
	query := `
		INSERT INTO gasfutures_transactions (
			id, tx_hash, method, args, from_address,
			status, gas_used, submitted_at, confirmed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			gas_used = EXCLUDED.gas_used,
			confirmed_at = EXCLUDED.confirmed_at
	`

	var confirmedAt sql.NullTime
	if rec.ConfirmedAt != nil {
		confirmedAt = sql.NullTime{Time: *rec.ConfirmedAt, Valid: true}
	}

	_, err := p.db.ExecContext(ctx, query,
		rec.ID,
		rec.Hash,
		rec.Method,
		rec.Args,
		rec.From,
		string(rec.Status),
		int64(rec.GasUsed),
		rec.SubmittedAt,
		confirmedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}

	p.logger.Debug("transaction-recorded",
		zap.String("id", rec.ID),
		zap.String("tx-hash", rec.Hash),
		zap.String("status", string(rec.Status)))

	return nil
}

// RecentTransactions returns the newest records first.
func (p *PostgresStorage) RecentTransactions(ctx context.Context, limit int) ([]types.TxRecord, error) {
	query := `
		SELECT id, tx_hash, method, args, from_address,
			status, gas_used, submitted_at, confirmed_at
		FROM gasfutures_transactions
		ORDER BY submitted_at DESC
		LIMIT $1
	`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var records []types.TxRecord
	for rows.Next() {
		var (
			rec         types.TxRecord
			status      string
			gasUsed     int64
			confirmedAt sql.NullTime
		)

		err = rows.Scan(&rec.ID, &rec.Hash, &rec.Method, &rec.Args, &rec.From,
			&status, &gasUsed, &rec.SubmittedAt, &confirmedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		rec.Status = types.TxStatus(status)
		rec.GasUsed = uint64(gasUsed)
		if confirmedAt.Valid {
			t := confirmedAt.Time.In(time.UTC)
			rec.ConfirmedAt = &t
		}

		records = append(records, rec)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return records, nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
