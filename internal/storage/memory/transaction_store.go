package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu   sync.RWMutex
	data map[string]*model.TransactionRecord
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{data: make(map[string]*model.TransactionRecord)}
}

// Insert adds a new receipt. Returns ErrDuplicateKey if the ID exists.
func (s *TransactionStore) Insert(_ context.Context, rec *model.TransactionRecord) error {
	if rec == nil || rec.ID == "" || rec.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[rec.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copied := *rec
	s.data[rec.ID] = &copied
	return nil
}

// GetByEvent retrieves receipts referencing an event.
func (s *TransactionStore) GetByEvent(_ context.Context, eventID string) ([]*model.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.TransactionRecord, 0)
	for _, rec := range s.data {
		if rec.EventID == eventID {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sortRecordsNewestFirst(out)
	return out, nil
}

// GetByUser retrieves receipts for a user, newest first.
func (s *TransactionStore) GetByUser(_ context.Context, userID string) ([]*model.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.TransactionRecord, 0)
	for _, rec := range s.data {
		if rec.UserID == userID {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sortRecordsNewestFirst(out)
	return out, nil
}

func sortRecordsNewestFirst(records []*model.TransactionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
