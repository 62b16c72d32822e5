package redeem

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/communal-score/communityd/internal/chain"
	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
	"github.com/communal-score/communityd/internal/storage/memory"
)

type submitCall struct {
	To     string
	Amount *big.Int
	Reason string
}

// mockSubmitter records submissions and confirms them unless told to fail.
type mockSubmitter struct {
	mu         sync.Mutex
	submits    []submitCall
	confirmed  []string
	submitErr  error
	confirmErr error
	onSubmit   func()
}

func (m *mockSubmitter) SubmitRedeem(_ context.Context, to string, amount *big.Int, reason string) (string, error) {
	m.mu.Lock()
	m.submits = append(m.submits, submitCall{To: to, Amount: amount, Reason: reason})
	n := len(m.submits)
	m.mu.Unlock()

	if m.onSubmit != nil {
		m.onSubmit()
	}
	if m.submitErr != nil {
		return "", m.submitErr
	}
	return "0xhash" + string(rune('0'+n)), nil
}

func (m *mockSubmitter) AwaitConfirmation(_ context.Context, txHash string) (chain.Confirmation, error) {
	if m.confirmErr != nil {
		return chain.Confirmation{}, m.confirmErr
	}
	m.mu.Lock()
	m.confirmed = append(m.confirmed, txHash)
	m.mu.Unlock()
	return chain.Confirmation{TxHash: txHash, BlockNumber: 42}, nil
}

func (m *mockSubmitter) submitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.submits)
}

type fixture struct {
	events       *memory.EventStore
	transactions *memory.TransactionStore
	wallets      *memory.WalletStore
	submitter    *mockSubmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		events:       memory.NewEventStore(),
		transactions: memory.NewTransactionStore(),
		wallets:      memory.NewWalletStore(),
		submitter:    &mockSubmitter{},
	}
}

func (f *fixture) coordinator() *Coordinator {
	return NewCoordinator(f.events, f.transactions, f.wallets, f.submitter, nil)
}

func (f *fixture) seedEvent(t *testing.T, id string, tokens float64, redeemed bool) *model.Event {
	t.Helper()
	ev := &model.Event{
		ID:                    id,
		UserID:                "user1",
		EventName:             "Community Cleanup",
		Metric1:               50,
		Metric2:               50,
		CalculatedScore:       55,
		CalculatedTokenAmount: tokens,
		IsRedeemed:            redeemed,
		CreatedAt:             time.Now().UTC(),
	}
	require.NoError(t, f.events.Insert(context.Background(), ev))
	return ev
}

func (f *fixture) seedWallet(t *testing.T, address string) {
	t.Helper()
	require.NoError(t, f.wallets.Upsert(context.Background(), &model.WalletBinding{
		UserID:        "user1",
		Email:         "user1@example.com",
		WalletAddress: address,
	}))
}

const wallet = "0x1111111111111111111111111111111111111111"

func TestRedeemSuccess(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 5.5, false)
	f.seedWallet(t, wallet)

	rec, err := f.coordinator().Redeem(context.Background(), "ev1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "ev1", rec.EventID)
	require.Equal(t, "user1", rec.UserID)
	require.Equal(t, 5.5, rec.Amount)
	require.NotEmpty(t, rec.TransactionHash)

	// Submit carried the resolved wallet, the scaled amount, and the reason.
	require.Len(t, f.submitter.submits, 1)
	call := f.submitter.submits[0]
	require.Equal(t, wallet, call.To)
	require.Zero(t, call.Amount.Cmp(chain.ToWei(5.5)))
	require.Equal(t, "Event: Community Cleanup", call.Reason)

	ev, err := f.events.GetByID(context.Background(), "ev1")
	require.NoError(t, err)
	require.True(t, ev.IsRedeemed)

	records, err := f.transactions.GetByEvent(context.Background(), "ev1")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestRedeemAlreadyRedeemed(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 5.5, true)
	f.seedWallet(t, wallet)

	_, err := f.coordinator().Redeem(context.Background(), "ev1")
	require.ErrorIs(t, err, ErrAlreadyRedeemed)
	require.Zero(t, f.submitter.submitCount(), "no on-chain call for a redeemed event")
}

func TestRedeemUnboundWallet(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 5.5, false)

	_, err := f.coordinator().Redeem(context.Background(), "ev1")
	require.ErrorIs(t, err, ErrUnboundWallet)
	require.Zero(t, f.submitter.submitCount(), "no on-chain call without a wallet binding")
}

func TestRedeemNoReward(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 0, false)
	f.seedWallet(t, wallet)

	_, err := f.coordinator().Redeem(context.Background(), "ev1")
	require.ErrorIs(t, err, ErrNoReward)
	require.Zero(t, f.submitter.submitCount())
}

func TestRedeemMissingEvent(t *testing.T) {
	f := newFixture(t)
	_, err := f.coordinator().Redeem(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRedeemSubmitRejected(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 5.5, false)
	f.seedWallet(t, wallet)
	netErr := &chain.NetworkError{Op: "redeem", Err: errors.New("insufficient gas")}
	f.submitter.submitErr = netErr

	_, err := f.coordinator().Redeem(context.Background(), "ev1")
	var got *chain.NetworkError
	require.ErrorAs(t, err, &got)

	// Aborted with no partial effect.
	ev, _ := f.events.GetByID(context.Background(), "ev1")
	require.False(t, ev.IsRedeemed)
	records, _ := f.transactions.GetByEvent(context.Background(), "ev1")
	require.Empty(t, records)
}

func TestRedeemContractReverted(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 5.5, false)
	f.seedWallet(t, wallet)
	f.submitter.confirmErr = &chain.RevertError{TxHash: "0xdead", Reason: "Insufficient balance"}

	_, err := f.coordinator().Redeem(context.Background(), "ev1")
	var got *chain.RevertError
	require.ErrorAs(t, err, &got)
	require.Equal(t, "Insufficient balance", got.Reason)

	ev, _ := f.events.GetByID(context.Background(), "ev1")
	require.False(t, ev.IsRedeemed)
	records, _ := f.transactions.GetByEvent(context.Background(), "ev1")
	require.Empty(t, records)
}

// failingTransactionStore rejects every insert.
type failingTransactionStore struct {
	storage.TransactionStore
	err error
}

func (f *failingTransactionStore) Insert(context.Context, *model.TransactionRecord) error {
	return f.err
}

func TestRedeemRecordPersistFailure(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 5.5, false)
	f.seedWallet(t, wallet)

	storeErr := errors.New("connection reset")
	c := NewCoordinator(f.events, &failingTransactionStore{TransactionStore: f.transactions, err: storeErr}, f.wallets, f.submitter, nil)

	_, err := c.Redeem(context.Background(), "ev1")

	// The failure is loud and typed, never swallowed.
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "record", perr.Stage)
	require.NotEmpty(t, perr.TxHash)
	require.ErrorIs(t, err, storeErr)

	// The documented inconsistent state: transfer confirmed on-chain, local
	// bookkeeping untouched.
	require.Len(t, f.submitter.confirmed, 1)
	ev, _ := f.events.GetByID(context.Background(), "ev1")
	require.False(t, ev.IsRedeemed)
	records, _ := f.transactions.GetByEvent(context.Background(), "ev1")
	require.Empty(t, records)
}

// failingMarkStore fails only the redeemed-flag update.
type failingMarkStore struct {
	storage.EventStore
	err error
}

func (f *failingMarkStore) MarkRedeemed(context.Context, string) error {
	return f.err
}

func TestRedeemFinalizePersistFailure(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 5.5, false)
	f.seedWallet(t, wallet)

	storeErr := errors.New("connection reset")
	c := NewCoordinator(&failingMarkStore{EventStore: f.events, err: storeErr}, f.transactions, f.wallets, f.submitter, nil)

	_, err := c.Redeem(context.Background(), "ev1")
	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "finalize", perr.Stage)

	// The receipt was written before finalize failed.
	records, _ := f.transactions.GetByEvent(context.Background(), "ev1")
	require.Len(t, records, 1)
	ev, _ := f.events.GetByID(context.Background(), "ev1")
	require.False(t, ev.IsRedeemed)
}

// Two concurrent redemptions of the same unredeemed event can both pass the
// precondition check and both submit transfers. The compare-and-set on the
// redeemed flag makes the second invocation fail afterwards, but the double
// payout has already happened; this is the expected behavior absent
// store-level locking.
func TestRedeemConcurrentDoubleSubmitRace(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 5.5, false)
	f.seedWallet(t, wallet)

	var arrived sync.WaitGroup
	arrived.Add(2)
	f.submitter.onSubmit = func() {
		// Hold both invocations at the suspension point until each has
		// passed the precondition check and submitted.
		arrived.Done()
		arrived.Wait()
	}

	c := f.coordinator()
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := c.Redeem(context.Background(), "ev1")
			errs <- err
		}()
	}

	var failures []error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failures = append(failures, err)
		}
	}

	require.Equal(t, 2, f.submitter.submitCount(), "both invocations submitted a transfer")
	require.Len(t, failures, 1, "exactly one invocation wins the compare-and-set")
	var perr *PersistError
	require.ErrorAs(t, failures[0], &perr)
	require.ErrorIs(t, failures[0], storage.ErrAlreadyRedeemed)

	ev, _ := f.events.GetByID(context.Background(), "ev1")
	require.True(t, ev.IsRedeemed)
}
