package memory

import (
	"context"
	"sync"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu   sync.RWMutex
	data map[string]*model.WalletBinding
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{data: make(map[string]*model.WalletBinding)}
}

// Upsert creates or overwrites the binding for binding.UserID.
func (s *WalletStore) Upsert(_ context.Context, binding *model.WalletBinding) error {
	if binding == nil || binding.UserID == "" || binding.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *binding
	s.data[binding.UserID] = &copied
	return nil
}

// Get retrieves the binding for a user.
func (s *WalletStore) Get(_ context.Context, userID string) (*model.WalletBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	binding, ok := s.data[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *binding
	return &copied, nil
}
