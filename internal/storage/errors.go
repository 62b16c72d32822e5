package storage

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates an insert collided with an existing key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrAlreadyRedeemed indicates the redeemed flag was already set when a
	// compare-and-set mark was attempted.
	ErrAlreadyRedeemed = errors.New("event already redeemed")

	// ErrInvalidInput indicates a malformed record was passed to a store.
	ErrInvalidInput = errors.New("invalid input")
)
