package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

// ProfileStore is a Postgres implementation of storage.ProfileStore.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates a profile.
func (s *ProfileStore) Upsert(ctx context.Context, profile *model.Profile) error {
	if profile == nil || profile.ID == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (id, email, total_earnings, is_admin, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			total_earnings = EXCLUDED.total_earnings,
			is_admin = EXCLUDED.is_admin
	`, profile.ID, profile.Email, profile.TotalEarnings, profile.IsAdmin)
	return err
}

// Get retrieves a profile by user ID.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, total_earnings, is_admin, created_at
		FROM profiles WHERE id = $1
	`, userID)
	err := row.Scan(&profile.ID, &profile.Email, &profile.TotalEarnings, &profile.IsAdmin, &profile.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// AddEarnings accumulates amount onto the profile's total earnings, creating
// the profile if needed.
func (s *ProfileStore) AddEarnings(ctx context.Context, userID, email string, amount float64) error {
	if userID == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (id, email, total_earnings, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			total_earnings = profiles.total_earnings + EXCLUDED.total_earnings,
			email = CASE WHEN EXCLUDED.email <> '' THEN EXCLUDED.email ELSE profiles.email END
	`, userID, email, amount)
	return err
}
