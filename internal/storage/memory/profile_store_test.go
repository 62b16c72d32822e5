package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

func TestProfileStoreAddEarningsAccumulates(t *testing.T) {
	store := NewProfileStore()
	ctx := context.Background()

	if err := store.AddEarnings(ctx, "user1", "a@example.com", 5.5); err != nil {
		t.Fatalf("AddEarnings failed: %v", err)
	}
	if err := store.AddEarnings(ctx, "user1", "a@example.com", 6.6); err != nil {
		t.Fatalf("AddEarnings failed: %v", err)
	}

	profile, err := store.Get(ctx, "user1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if math.Abs(profile.TotalEarnings-12.1) > 1e-9 {
		t.Errorf("TotalEarnings = %v, want 12.1", profile.TotalEarnings)
	}
}

func TestProfileStoreGetMissing(t *testing.T) {
	store := NewProfileStore()
	if _, err := store.Get(context.Background(), "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileStoreUpsertKeepsAdminFlag(t *testing.T) {
	store := NewProfileStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &model.Profile{ID: "admin1", Email: "admin@example.com", IsAdmin: true}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	profile, err := store.Get(ctx, "admin1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !profile.IsAdmin {
		t.Errorf("admin flag lost on upsert")
	}
}
