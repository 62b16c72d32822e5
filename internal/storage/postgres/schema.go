package postgres

import (
	"context"
	"fmt"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS profiles (
	id              TEXT PRIMARY KEY,
	email           TEXT NOT NULL DEFAULT '',
	total_earnings  DOUBLE PRECISION NOT NULL DEFAULT 0,
	is_admin        BOOLEAN NOT NULL DEFAULT FALSE,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS wallet_bindings (
	user_id         TEXT PRIMARY KEY,
	email           TEXT NOT NULL DEFAULT '',
	wallet_address  TEXT NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id                       TEXT PRIMARY KEY,
	user_id                  TEXT NOT NULL,
	event_name               TEXT NOT NULL,
	metric_1                 DOUBLE PRECISION NOT NULL,
	metric_2                 DOUBLE PRECISION NOT NULL,
	calculated_score         DOUBLE PRECISION NOT NULL,
	calculated_token_amount  DOUBLE PRECISION NOT NULL,
	is_redeemed              BOOLEAN NOT NULL DEFAULT FALSE,
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_events_user_created ON events (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS transactions (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	event_id          TEXT NOT NULL REFERENCES events (id),
	amount            DOUBLE PRECISION NOT NULL,
	transaction_hash  TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_event ON transactions (event_id);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id, created_at DESC);
`

// Migrate applies the schema. Statements are idempotent so repeated runs are
// safe.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
