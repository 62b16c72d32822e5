package events

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/score"
	"github.com/communal-score/communityd/internal/storage"
)

// ErrInvalidInput indicates a missing event name or a negative or non-finite
// metric. The submission is rejected before any record is created.
var ErrInvalidInput = errors.New("invalid event input")

// Service creates and lists participation events. Score and token amount are
// computed once at creation time and persisted with the event.
type Service struct {
	events   storage.EventStore
	profiles storage.ProfileStore
	logger   *zap.Logger
}

// NewService builds a Service with its dependencies.
func NewService(events storage.EventStore, profiles storage.ProfileStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{events: events, profiles: profiles, logger: logger}
}

// Create validates the metrics, computes the score and token reward, and
// persists the event. All stored numbers are rounded to two decimal places.
func (s *Service) Create(ctx context.Context, userID, email, name string, metric1, metric2 float64) (*model.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", ErrInvalidInput)
	}
	if !validMetric(metric1) || !validMetric(metric2) {
		return nil, fmt.Errorf("%w: metrics must be non-negative numbers", ErrInvalidInput)
	}

	scored, tokens := score.Compute(metric1, metric2)

	ev := &model.Event{
		ID:                    uuid.NewString(),
		UserID:                userID,
		EventName:             name,
		Metric1:               score.Round2(metric1),
		Metric2:               score.Round2(metric2),
		CalculatedScore:       score.Round2(scored),
		CalculatedTokenAmount: score.Round2(tokens),
		CreatedAt:             time.Now().UTC(),
	}
	if err := s.events.Insert(ctx, ev); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	// The event is the source of truth; a failed earnings update is logged
	// and does not fail the creation.
	if err := s.profiles.AddEarnings(ctx, userID, email, ev.CalculatedTokenAmount); err != nil {
		s.logger.Warn("earnings update failed",
			zap.String("user_id", userID),
			zap.String("event_id", ev.ID),
			zap.Error(err),
		)
	}

	return ev, nil
}

// ListForUser returns a user's events, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*model.Event, error) {
	return s.events.GetByUser(ctx, userID)
}

// Summary aggregates a user's participation.
type Summary struct {
	EventCount    int     `json:"event_count"`
	AverageScore  float64 `json:"average_score"`
	TotalEarnings float64 `json:"total_earnings"`
}

// Summarize computes the dashboard aggregates for a user.
func (s *Service) Summarize(ctx context.Context, userID string) (Summary, error) {
	evs, err := s.events.GetByUser(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("list events: %w", err)
	}

	var sum Summary
	sum.EventCount = len(evs)
	if len(evs) > 0 {
		total := 0.0
		for _, ev := range evs {
			total += ev.CalculatedScore
		}
		sum.AverageScore = score.Round2(total / float64(len(evs)))
	}

	profile, err := s.profiles.Get(ctx, userID)
	switch {
	case err == nil:
		sum.TotalEarnings = profile.TotalEarnings
	case errors.Is(err, storage.ErrNotFound):
		// No events logged yet.
	default:
		return Summary{}, fmt.Errorf("load profile: %w", err)
	}

	return sum, nil
}

func validMetric(m float64) bool {
	return m >= 0 && !math.IsInf(m, 1) && !math.IsNaN(m)
}
