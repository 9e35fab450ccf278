package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mlevkov/fastwell/internal/clock"
	"github.com/mlevkov/fastwell/internal/domain"
	"github.com/mlevkov/fastwell/internal/repository"
	"github.com/mlevkov/fastwell/internal/stats"
)

type statsService struct {
	sessions repository.SessionRepo
	clk      clock.Clock
	loc      *time.Location
	policy   stats.Policy
}

// NewStatsService computes statistics over terminal sessions, bucketing
// streak days in loc.
func NewStatsService(sessions repository.SessionRepo, clk clock.Clock, loc *time.Location, policy stats.Policy) StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &statsService{sessions: sessions, clk: clk, loc: loc, policy: policy}
}

func (s *statsService) ComputeStats(ctx context.Context, userID string) (*domain.Stats, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}

	// One snapshot of terminal sessions; the active session never
	// contributes to averages, rates, or streaks.
	history, err := s.sessions.List(ctx, userID, domain.SessionCompleted, domain.SessionCancelled)
	if err != nil {
		return nil, err
	}

	st := stats.Compute(history, s.clk.Now(), s.loc, s.policy)
	return &st, nil
}
