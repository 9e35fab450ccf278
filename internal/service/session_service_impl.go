package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mlevkov/fastwell/internal/clock"
	"github.com/mlevkov/fastwell/internal/db"
	"github.com/mlevkov/fastwell/internal/domain"
	"github.com/mlevkov/fastwell/internal/repository"
	"github.com/google/uuid"
)

type sessionService struct {
	sessions repository.SessionRepo
	uow      db.UnitOfWork
	clk      clock.Clock
	observer UseCaseObserver
}

func NewSessionService(sessions repository.SessionRepo, uow db.UnitOfWork, clk clock.Clock, observers ...UseCaseObserver) SessionService {
	return &sessionService{
		sessions: sessions,
		uow:      uow,
		clk:      clk,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *sessionService) Start(ctx context.Context, userID string, targetDurationHours *float64) (session *domain.FastingSession, err error) {
	startedAt := s.clk.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "start-fast",
			Duration:  s.clk.Now().Sub(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"user": userID},
			StartedAt: startedAt,
		})
	}()

	if err := validateStart(userID, targetDurationHours); err != nil {
		return nil, err
	}

	session = newSession(userID, targetDurationHours, s.clk.Now())
	if err = s.sessions.InsertIfNoneActive(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) End(ctx context.Context, id, userID string) (*domain.FastingSession, error) {
	return s.finish(ctx, "end-fast", id, userID, domain.SessionCompleted)
}

func (s *sessionService) Cancel(ctx context.Context, id, userID string) (*domain.FastingSession, error) {
	return s.finish(ctx, "cancel-fast", id, userID, domain.SessionCancelled)
}

func (s *sessionService) finish(ctx context.Context, useCase, id, userID string, status domain.SessionStatus) (session *domain.FastingSession, err error) {
	startedAt := s.clk.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      useCase,
			Duration:  s.clk.Now().Sub(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"user": userID, "session": id},
			StartedAt: startedAt,
		})
	}()

	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}
	if id == "" {
		return nil, fmt.Errorf("session id is required: %w", domain.ErrValidation)
	}
	return s.sessions.FinishIfActive(ctx, id, userID, status, s.clk.Now())
}

func (s *sessionService) GetActive(ctx context.Context, userID string) (*domain.FastingSession, error) {
	return s.sessions.GetActive(ctx, userID)
}

func (s *sessionService) History(ctx context.Context, userID string, statuses ...domain.SessionStatus) ([]*domain.FastingSession, error) {
	return s.sessions.List(ctx, userID, statuses...)
}

func (s *sessionService) StartFromSchedule(ctx context.Context, sched *domain.ScheduledFast) (started *domain.FastingSession, err error) {
	startedAt := s.clk.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "auto-start-fast",
			Duration:  s.clk.Now().Sub(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"user": sched.UserID, "schedule": sched.ID},
			StartedAt: startedAt,
		})
	}()

	target := sched.DurationHours
	session := newSession(sched.UserID, &target, s.clk.Now())

	// The insert and the trigger-guard advance commit together: a crash
	// between them can never leave a schedule that retries forever or one
	// that silently skips its window.
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSessions := repository.NewSQLiteSessionRepo(tx)
		txSchedules := repository.NewSQLiteScheduleRepo(tx)

		insertErr := txSessions.InsertIfNoneActive(ctx, session)
		switch {
		case insertErr == nil:
			started = session
		case errors.Is(insertErr, repository.ErrConflict):
			// Already fasting (manual start, or a previous tick won the
			// race). Benign: still advance the guard so this occurrence
			// is not retried.
			started = nil
		default:
			return insertErr
		}

		return txSchedules.UpdateLastTriggered(ctx, sched.ID, s.clk.Now())
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

func validateStart(userID string, targetDurationHours *float64) error {
	if userID == "" {
		return fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}
	if targetDurationHours != nil && (*targetDurationHours <= 0 || *targetDurationHours > domain.MaxDurationHours) {
		return fmt.Errorf("target duration must be between 0 and %d hours: %w", domain.MaxDurationHours, domain.ErrValidation)
	}
	return nil
}

func newSession(userID string, targetDurationHours *float64, now time.Time) *domain.FastingSession {
	now = now.UTC().Truncate(time.Second)
	return &domain.FastingSession{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Status:              domain.SessionActive,
		StartTime:           now,
		TargetDurationHours: targetDurationHours,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
