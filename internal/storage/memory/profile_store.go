package memory

import (
	"context"
	"sync"
	"time"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

// ProfileStore is an in-memory implementation of storage.ProfileStore.
type ProfileStore struct {
	mu   sync.RWMutex
	data map[string]*model.Profile
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{data: make(map[string]*model.Profile)}
}

// Upsert creates or updates a profile.
func (s *ProfileStore) Upsert(_ context.Context, profile *model.Profile) error {
	if profile == nil || profile.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *profile
	s.data[profile.ID] = &copied
	return nil
}

// Get retrieves a profile by user ID.
func (s *ProfileStore) Get(_ context.Context, userID string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.data[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

// AddEarnings accumulates amount onto the profile's total earnings, creating
// the profile if needed.
func (s *ProfileStore) AddEarnings(_ context.Context, userID, email string, amount float64) error {
	if userID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.data[userID]
	if !ok {
		s.data[userID] = &model.Profile{
			ID:            userID,
			Email:         email,
			TotalEarnings: amount,
			CreatedAt:     time.Now().UTC(),
		}
		return nil
	}
	profile.TotalEarnings += amount
	if email != "" {
		profile.Email = email
	}
	return nil
}
