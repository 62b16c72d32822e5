package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

func TestEventStoreInsertAndGet(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	ev := &model.Event{
		ID:                    "ev1",
		UserID:                "user1",
		EventName:             "Community Cleanup",
		Metric1:               50,
		Metric2:               50,
		CalculatedScore:       55,
		CalculatedTokenAmount: 5.5,
		CreatedAt:             time.Now().UTC(),
	}

	if err := store.Insert(ctx, ev); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "ev1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CalculatedScore != 55 {
		t.Errorf("score mismatch: got %v, want 55", got.CalculatedScore)
	}
	if got.IsRedeemed {
		t.Errorf("new event should not be redeemed")
	}
}

func TestEventStoreDuplicateKey(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	ev := &model.Event{ID: "ev1", UserID: "user1", EventName: "e"}
	if err := store.Insert(ctx, ev); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := store.Insert(ctx, ev); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestEventStoreGetByUserOrder(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()
	base := time.Now().UTC()

	for i, id := range []string{"a", "b", "c"} {
		ev := &model.Event{ID: id, UserID: "user1", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Insert(ctx, ev); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	if err := store.Insert(ctx, &model.Event{ID: "other", UserID: "user2", CreatedAt: base}); err != nil {
		t.Fatalf("insert other: %v", err)
	}

	events, err := store.GetByUser(ctx, "user1")
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].ID != "c" || events[2].ID != "a" {
		t.Errorf("events not newest first: %s, %s, %s", events[0].ID, events[1].ID, events[2].ID)
	}
}

func TestEventStoreMarkRedeemedCAS(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &model.Event{ID: "ev1", UserID: "u"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.MarkRedeemed(ctx, "ev1"); err != nil {
		t.Fatalf("first MarkRedeemed failed: %v", err)
	}

	got, err := store.GetByID(ctx, "ev1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsRedeemed {
		t.Fatalf("event should be redeemed")
	}

	if err := store.MarkRedeemed(ctx, "ev1"); !errors.Is(err, storage.ErrAlreadyRedeemed) {
		t.Errorf("expected ErrAlreadyRedeemed, got %v", err)
	}
	if err := store.MarkRedeemed(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
