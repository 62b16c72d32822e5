package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

// TransactionStore is a Postgres implementation of storage.TransactionStore.
type TransactionStore struct {
	pool *pgxpool.Pool
}

// Insert adds a new settlement receipt.
func (s *TransactionStore) Insert(ctx context.Context, rec *model.TransactionRecord) error {
	if rec == nil || rec.ID == "" || rec.EventID == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (id, user_id, event_id, amount, transaction_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		rec.ID,
		rec.UserID,
		rec.EventID,
		rec.Amount,
		rec.TransactionHash,
		rec.CreatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateKey
	}
	return err
}

// GetByEvent retrieves receipts referencing an event.
func (s *TransactionStore) GetByEvent(ctx context.Context, eventID string) ([]*model.TransactionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, event_id, amount, transaction_hash, created_at
		FROM transactions WHERE event_id = $1
		ORDER BY created_at DESC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// GetByUser retrieves receipts for a user, newest first.
func (s *TransactionStore) GetByUser(ctx context.Context, userID string) ([]*model.TransactionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, event_id, amount, transaction_hash, created_at
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]*model.TransactionRecord, error) {
	out := make([]*model.TransactionRecord, 0)
	for rows.Next() {
		var rec model.TransactionRecord
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.EventID, &rec.Amount, &rec.TransactionHash, &rec.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
