package model

import "time"

// TransactionRecord is one settlement receipt, written strictly after the
// on-chain transfer confirmed. Immutable once inserted.
type TransactionRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	EventID         string    `json:"event_id"`
	Amount          float64   `json:"amount"`
	TransactionHash string    `json:"transaction_hash"`
	CreatedAt       time.Time `json:"created_at"`
}
