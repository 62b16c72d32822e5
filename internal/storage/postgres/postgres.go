package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool shared by the stores.
type DB struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool for the given DSN.
func Connect(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the underlying pool.
func (d *DB) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

// Events returns an event store backed by this pool.
func (d *DB) Events() *EventStore {
	return &EventStore{pool: d.pool}
}

// Transactions returns a transaction store backed by this pool.
func (d *DB) Transactions() *TransactionStore {
	return &TransactionStore{pool: d.pool}
}

// Wallets returns a wallet store backed by this pool.
func (d *DB) Wallets() *WalletStore {
	return &WalletStore{pool: d.pool}
}

// Profiles returns a profile store backed by this pool.
func (d *DB) Profiles() *ProfileStore {
	return &ProfileStore{pool: d.pool}
}
