package repository

import (
	"context"
	"time"

	"github.com/mlevkov/fastwell/internal/domain"
)

type SessionRepo interface {
	// InsertIfNoneActive inserts a new active session unless the user
	// already has one, in which case it fails with ErrConflict. The check
	// and the insert are one atomic write (partial unique index), so
	// concurrent starts resolve to exactly one winner.
	InsertIfNoneActive(ctx context.Context, s *domain.FastingSession) error

	// GetByID returns the session with the given id owned by userID,
	// or ErrNotFound (also when owned by someone else).
	GetByID(ctx context.Context, id, userID string) (*domain.FastingSession, error)

	// GetActive returns the user's active session, or (nil, nil) when absent.
	GetActive(ctx context.Context, userID string) (*domain.FastingSession, error)

	// List returns the user's sessions ordered by start time ascending,
	// optionally filtered to the given statuses.
	List(ctx context.Context, userID string, statuses ...domain.SessionStatus) ([]*domain.FastingSession, error)

	// FinishIfActive atomically moves an active session to the given
	// terminal status, setting end time. Fails with ErrNotFound when the
	// session does not exist (or is not owned by userID) and with
	// ErrInvalidState when it exists but is no longer active.
	FinishIfActive(ctx context.Context, id, userID string, status domain.SessionStatus, endTime time.Time) (*domain.FastingSession, error)
}

type ScheduleRepo interface {
	Create(ctx context.Context, s *domain.ScheduledFast) error
	GetByID(ctx context.Context, id, userID string) (*domain.ScheduledFast, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.ScheduledFast, error)
	// ListEnabled returns every enabled schedule across all users in one
	// query; the monitor evaluates due-ness in memory.
	ListEnabled(ctx context.Context) ([]*domain.ScheduledFast, error)
	Update(ctx context.Context, s *domain.ScheduledFast) error
	// UpdateLastTriggered advances the duplicate-trigger guard. Only the
	// monitor calls this.
	UpdateLastTriggered(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id, userID string) error
}
