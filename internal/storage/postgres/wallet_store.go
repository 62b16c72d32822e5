package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

// WalletStore is a Postgres implementation of storage.WalletStore.
type WalletStore struct {
	pool *pgxpool.Pool
}

// Upsert creates or overwrites the binding for binding.UserID.
func (s *WalletStore) Upsert(ctx context.Context, binding *model.WalletBinding) error {
	if binding == nil || binding.UserID == "" || binding.WalletAddress == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO wallet_bindings (user_id, email, wallet_address, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			wallet_address = EXCLUDED.wallet_address,
			updated_at = now()
	`, binding.UserID, binding.Email, binding.WalletAddress)
	return err
}

// Get retrieves the binding for a user.
func (s *WalletStore) Get(ctx context.Context, userID string) (*model.WalletBinding, error) {
	var binding model.WalletBinding
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, email, wallet_address, updated_at
		FROM wallet_bindings WHERE user_id = $1
	`, userID)
	err := row.Scan(&binding.UserID, &binding.Email, &binding.WalletAddress, &binding.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &binding, nil
}
