package redeem

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/communal-score/communityd/internal/chain"
	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

// Submitter is the on-chain transfer layer consumed by the coordinator.
type Submitter interface {
	// SubmitRedeem requests an on-chain transfer and returns its tx hash.
	SubmitRedeem(ctx context.Context, to string, amount *big.Int, reason string) (string, error)

	// AwaitConfirmation blocks until the transfer is mined or fails.
	AwaitConfirmation(ctx context.Context, txHash string) (chain.Confirmation, error)
}

// Coordinator settles one event at a time: resolve the recipient wallet,
// submit the transfer, await confirmation, record the receipt, and mark the
// event redeemed. It holds no state between invocations; authorization is the
// caller's responsibility.
type Coordinator struct {
	events       storage.EventStore
	transactions storage.TransactionStore
	wallets      storage.WalletStore
	submitter    Submitter
	logger       *zap.Logger
}

// NewCoordinator builds a Coordinator with its dependencies.
func NewCoordinator(
	events storage.EventStore,
	transactions storage.TransactionStore,
	wallets storage.WalletStore,
	submitter Submitter,
	logger *zap.Logger,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		events:       events,
		transactions: transactions,
		wallets:      wallets,
		submitter:    submitter,
		logger:       logger,
	}
}

// Redeem transfers an event's computed token reward to its user's bound
// wallet and records the settlement. Re-invocation is allowed while the event
// is still unredeemed; there is no automatic retry. A *PersistError after
// on-chain confirmation means the transfer happened but local bookkeeping did
// not complete, which requires manual reconciliation.
func (c *Coordinator) Redeem(ctx context.Context, eventID string) (*model.TransactionRecord, error) {
	ev, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}
	if ev.IsRedeemed {
		return nil, ErrAlreadyRedeemed
	}
	if ev.CalculatedTokenAmount <= 0 {
		return nil, ErrNoReward
	}

	binding, err := c.wallets.Get(ctx, ev.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnboundWallet
		}
		return nil, fmt.Errorf("resolve wallet for user %s: %w", ev.UserID, err)
	}

	amount := chain.ToWei(ev.CalculatedTokenAmount)
	reason := "Event: " + ev.EventName

	txHash, err := c.submitter.SubmitRedeem(ctx, binding.WalletAddress, amount, reason)
	if err != nil {
		return nil, fmt.Errorf("submit transfer: %w", err)
	}

	c.logger.Info("transfer submitted",
		zap.String("event_id", ev.ID),
		zap.String("user_id", ev.UserID),
		zap.String("to", binding.WalletAddress),
		zap.Float64("amount", ev.CalculatedTokenAmount),
		zap.String("tx_hash", txHash),
	)

	conf, err := c.submitter.AwaitConfirmation(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("await confirmation: %w", err)
	}

	// The transfer is now irreversible. Any failure past this point leaves
	// the event unredeemed locally and must surface loudly.
	rec := &model.TransactionRecord{
		ID:              uuid.NewString(),
		UserID:          ev.UserID,
		EventID:         ev.ID,
		Amount:          ev.CalculatedTokenAmount,
		TransactionHash: conf.TxHash,
		CreatedAt:       time.Now().UTC(),
	}
	if err := c.transactions.Insert(ctx, rec); err != nil {
		perr := &PersistError{EventID: ev.ID, TxHash: conf.TxHash, Stage: "record", Err: err}
		c.logger.Error("settlement receipt not persisted after confirmed transfer", zap.Error(perr))
		return nil, perr
	}

	if err := c.events.MarkRedeemed(ctx, ev.ID); err != nil {
		perr := &PersistError{EventID: ev.ID, TxHash: conf.TxHash, Stage: "finalize", Err: err}
		c.logger.Error("redeemed flag not set after confirmed transfer", zap.Error(perr))
		return nil, perr
	}

	c.logger.Info("event redeemed",
		zap.String("event_id", ev.ID),
		zap.String("tx_hash", conf.TxHash),
		zap.Uint64("block", conf.BlockNumber),
	)
	return rec, nil
}
