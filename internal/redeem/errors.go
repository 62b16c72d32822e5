package redeem

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRedeemed indicates the event's redeemed flag was already set.
	// No on-chain call is made.
	ErrAlreadyRedeemed = errors.New("event already redeemed")

	// ErrUnboundWallet indicates the event's user has no wallet binding.
	// No on-chain call is made.
	ErrUnboundWallet = errors.New("user has no bound wallet")

	// ErrNoReward indicates the event carries no positive token amount.
	ErrNoReward = errors.New("event has no token reward")
)

// PersistError reports a record-store failure that happened after the
// on-chain transfer confirmed. The transfer is irreversible while the local
// bookkeeping was not updated; TxHash identifies the confirmed transfer for
// manual reconciliation.
type PersistError struct {
	EventID string
	TxHash  string
	Stage   string // "record" or "finalize"
	Err     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("transfer %s confirmed for event %s but %s persistence failed: %v",
		e.TxHash, e.EventID, e.Stage, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
