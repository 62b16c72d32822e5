package storage

import (
	"context"

	"github.com/communal-score/communityd/internal/model"
)

// EventStore provides access to event records.
type EventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, ev *model.Event) error

	// GetByID retrieves an event. Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*model.Event, error)

	// GetByUser retrieves a user's events, newest first.
	GetByUser(ctx context.Context, userID string) ([]*model.Event, error)

	// ListAll retrieves every event, newest first.
	ListAll(ctx context.Context) ([]*model.Event, error)

	// MarkRedeemed flips is_redeemed false->true as a compare-and-set.
	// Returns ErrAlreadyRedeemed if the flag was already set and ErrNotFound
	// if the event does not exist.
	MarkRedeemed(ctx context.Context, id string) error
}

// TransactionStore provides access to settlement receipts.
type TransactionStore interface {
	// Insert adds a new receipt. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, rec *model.TransactionRecord) error

	// GetByEvent retrieves receipts referencing an event.
	GetByEvent(ctx context.Context, eventID string) ([]*model.TransactionRecord, error)

	// GetByUser retrieves receipts for a user, newest first.
	GetByUser(ctx context.Context, userID string) ([]*model.TransactionRecord, error)
}

// WalletStore provides access to user wallet bindings.
type WalletStore interface {
	// Upsert creates or overwrites the binding for binding.UserID.
	Upsert(ctx context.Context, binding *model.WalletBinding) error

	// Get retrieves the binding for a user. Returns ErrNotFound if the user
	// has never connected a wallet.
	Get(ctx context.Context, userID string) (*model.WalletBinding, error)
}

// ProfileStore provides access to user profiles.
type ProfileStore interface {
	// Upsert creates or updates a profile.
	Upsert(ctx context.Context, profile *model.Profile) error

	// Get retrieves a profile. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, userID string) (*model.Profile, error)

	// AddEarnings accumulates amount onto the profile's total earnings,
	// creating the profile if needed.
	AddEarnings(ctx context.Context, userID, email string, amount float64) error
}
