package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

// EventStore is a Postgres implementation of storage.EventStore.
type EventStore struct {
	pool *pgxpool.Pool
}

// Insert adds a new event.
func (s *EventStore) Insert(ctx context.Context, ev *model.Event) error {
	if ev == nil || ev.ID == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (
			id, user_id, event_name, metric_1, metric_2,
			calculated_score, calculated_token_amount, is_redeemed, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		ev.ID,
		ev.UserID,
		ev.EventName,
		ev.Metric1,
		ev.Metric2,
		ev.CalculatedScore,
		ev.CalculatedTokenAmount,
		ev.IsRedeemed,
		ev.CreatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateKey
	}
	return err
}

// GetByID retrieves an event by ID.
func (s *EventStore) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, event_name, metric_1, metric_2,
		       calculated_score, calculated_token_amount, is_redeemed, created_at
		FROM events WHERE id = $1
	`, id)
	return scanEvent(row)
}

// GetByUser retrieves a user's events, newest first.
func (s *EventStore) GetByUser(ctx context.Context, userID string) ([]*model.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, event_name, metric_1, metric_2,
		       calculated_score, calculated_token_amount, is_redeemed, created_at
		FROM events WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListAll retrieves every event, newest first.
func (s *EventStore) ListAll(ctx context.Context) ([]*model.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, event_name, metric_1, metric_2,
		       calculated_score, calculated_token_amount, is_redeemed, created_at
		FROM events ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// MarkRedeemed flips is_redeemed false->true as a compare-and-set. The WHERE
// clause is the only guard against concurrent redemptions of the same event.
func (s *EventStore) MarkRedeemed(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE events SET is_redeemed = TRUE
		WHERE id = $1 AND is_redeemed = FALSE
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check event: %w", err)
		}
		if !exists {
			return storage.ErrNotFound
		}
		return storage.ErrAlreadyRedeemed
	}
	return nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var ev model.Event
	err := row.Scan(
		&ev.ID,
		&ev.UserID,
		&ev.EventName,
		&ev.Metric1,
		&ev.Metric2,
		&ev.CalculatedScore,
		&ev.CalculatedTokenAmount,
		&ev.IsRedeemed,
		&ev.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func collectEvents(rows pgx.Rows) ([]*model.Event, error) {
	out := make([]*model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
