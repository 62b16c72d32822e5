package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data map[string]*model.Event
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{data: make(map[string]*model.Event)}
}

// Insert adds a new event. Returns ErrDuplicateKey if the ID exists.
func (s *EventStore) Insert(_ context.Context, ev *model.Event) error {
	if ev == nil || ev.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[ev.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copied := *ev
	s.data[ev.ID] = &copied
	return nil
}

// GetByID retrieves an event by ID.
func (s *EventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *ev
	return &copied, nil
}

// GetByUser retrieves a user's events, newest first.
func (s *EventStore) GetByUser(_ context.Context, userID string) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Event, 0)
	for _, ev := range s.data {
		if ev.UserID == userID {
			copied := *ev
			out = append(out, &copied)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListAll retrieves every event, newest first.
func (s *EventStore) ListAll(_ context.Context) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Event, 0, len(s.data))
	for _, ev := range s.data {
		copied := *ev
		out = append(out, &copied)
	}
	sortNewestFirst(out)
	return out, nil
}

// MarkRedeemed flips is_redeemed false->true as a compare-and-set.
func (s *EventStore) MarkRedeemed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.data[id]
	if !ok {
		return storage.ErrNotFound
	}
	if ev.IsRedeemed {
		return storage.ErrAlreadyRedeemed
	}
	ev.IsRedeemed = true
	return nil
}

func sortNewestFirst(events []*model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].ID > events[j].ID
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
}
