package service

import (
	"context"

	"github.com/mlevkov/fastwell/internal/domain"
)

// SessionService is the fasting session state machine. All mutating
// operations verify ownership and enforce the single-active-session
// invariant through the store's conditional writes; none of them hold
// in-process session state between calls.
type SessionService interface {
	// Start opens a new active session for userID. Fails with
	// repository.ErrConflict when an active session already exists.
	Start(ctx context.Context, userID string, targetDurationHours *float64) (*domain.FastingSession, error)

	// End completes an active session. Fails with repository.ErrNotFound
	// for unknown or foreign sessions and repository.ErrInvalidState for
	// sessions that already left the active state.
	End(ctx context.Context, id, userID string) (*domain.FastingSession, error)

	// Cancel abandons an active session. Same contract as End; cancelled
	// sessions are statistically distinct from completed ones.
	Cancel(ctx context.Context, id, userID string) (*domain.FastingSession, error)

	// GetActive returns the user's active session or (nil, nil) when there
	// is none. Intended for polling; absence is not an error.
	GetActive(ctx context.Context, userID string) (*domain.FastingSession, error)

	// History lists the user's sessions ordered by start time ascending,
	// optionally filtered by status.
	History(ctx context.Context, userID string, statuses ...domain.SessionStatus) ([]*domain.FastingSession, error)

	// StartFromSchedule auto-starts a session for a due schedule and
	// advances the schedule's trigger guard in the same transaction.
	// An existing active session is a benign outcome: the guard is still
	// advanced and (nil, nil) is returned.
	StartFromSchedule(ctx context.Context, sched *domain.ScheduledFast) (*domain.FastingSession, error)
}

// ScheduleService manages recurring fast definitions.
type ScheduleService interface {
	Create(ctx context.Context, s *domain.ScheduledFast) error
	Get(ctx context.Context, id, userID string) (*domain.ScheduledFast, error)
	List(ctx context.Context, userID string) ([]*domain.ScheduledFast, error)
	Update(ctx context.Context, s *domain.ScheduledFast) error
	SetEnabled(ctx context.Context, id, userID string, enabled bool) error
	Delete(ctx context.Context, id, userID string) error
}

// StatsService aggregates historical statistics.
type StatsService interface {
	// ComputeStats summarizes the user's terminal sessions. The active
	// session, if any, is excluded from every figure.
	ComputeStats(ctx context.Context, userID string) (*domain.Stats, error)
}
