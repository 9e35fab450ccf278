package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mlevkov/fastwell/internal/clock"
	"github.com/mlevkov/fastwell/internal/domain"
	"github.com/mlevkov/fastwell/internal/repository"
	"github.com/google/uuid"
)

type scheduleService struct {
	schedules repository.ScheduleRepo
	clk       clock.Clock
}

func NewScheduleService(schedules repository.ScheduleRepo, clk clock.Clock) ScheduleService {
	return &scheduleService{schedules: schedules, clk: clk}
}

func (s *scheduleService) Create(ctx context.Context, sched *domain.ScheduledFast) error {
	if err := sched.Validate(); err != nil {
		return err
	}
	if sched.ID == "" {
		sched.ID = uuid.New().String()
	}
	now := s.clk.Now().Truncate(time.Second)
	sched.CreatedAt = now
	sched.UpdatedAt = now
	// Trigger history belongs to the monitor, never to user edits.
	sched.LastTriggeredAt = nil
	return s.schedules.Create(ctx, sched)
}

func (s *scheduleService) Get(ctx context.Context, id, userID string) (*domain.ScheduledFast, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}
	return s.schedules.GetByID(ctx, id, userID)
}

func (s *scheduleService) List(ctx context.Context, userID string) ([]*domain.ScheduledFast, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}
	return s.schedules.ListByUser(ctx, userID)
}

func (s *scheduleService) Update(ctx context.Context, sched *domain.ScheduledFast) error {
	if err := sched.Validate(); err != nil {
		return err
	}
	sched.UpdatedAt = s.clk.Now().Truncate(time.Second)
	return s.schedules.Update(ctx, sched)
}

func (s *scheduleService) SetEnabled(ctx context.Context, id, userID string, enabled bool) error {
	sched, err := s.schedules.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if sched.Enabled == enabled {
		return nil
	}
	sched.Enabled = enabled
	sched.UpdatedAt = s.clk.Now().Truncate(time.Second)
	return s.schedules.Update(ctx, sched)
}

func (s *scheduleService) Delete(ctx context.Context, id, userID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}
	return s.schedules.Delete(ctx, id, userID)
}
