package testutil

import (
	"time"

	"github.com/mlevkov/fastwell/internal/domain"
	"github.com/google/uuid"
)

// Session options
type SessionOption func(*domain.FastingSession)

func WithStartTime(t time.Time) SessionOption {
	return func(s *domain.FastingSession) {
		s.StartTime = t.Truncate(time.Second)
	}
}

func WithTarget(hours float64) SessionOption {
	return func(s *domain.FastingSession) {
		s.TargetDurationHours = &hours
	}
}

func WithStatus(status domain.SessionStatus, end time.Time) SessionOption {
	return func(s *domain.FastingSession) {
		s.Status = status
		e := end.Truncate(time.Second)
		s.EndTime = &e
	}
}

// NewTestSession builds an active session for userID. Timestamps are
// truncated to whole seconds so RFC3339 round-trips compare equal.
func NewTestSession(userID string, opts ...SessionOption) *domain.FastingSession {
	now := time.Now().UTC().Truncate(time.Second)
	s := &domain.FastingSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    domain.SessionActive,
		StartTime: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule options
type ScheduleOption func(*domain.ScheduledFast)

func WithDays(days ...time.Weekday) ScheduleOption {
	return func(s *domain.ScheduledFast) {
		s.DaysOfWeek = days
	}
}

func WithStartTimeOfDay(v string) ScheduleOption {
	return func(s *domain.ScheduledFast) {
		s.StartTimeOfDay = v
	}
}

func WithDuration(hours float64) ScheduleOption {
	return func(s *domain.ScheduledFast) {
		s.DurationHours = hours
	}
}

func WithTimezone(tz string) ScheduleOption {
	return func(s *domain.ScheduledFast) {
		s.Timezone = tz
	}
}

func WithEnabled(enabled bool) ScheduleOption {
	return func(s *domain.ScheduledFast) {
		s.Enabled = enabled
	}
}

func WithLastTriggered(t time.Time) ScheduleOption {
	return func(s *domain.ScheduledFast) {
		lt := t.Truncate(time.Second)
		s.LastTriggeredAt = &lt
	}
}

// NewTestSchedule builds an enabled every-day 20:00 UTC schedule for userID.
func NewTestSchedule(userID string, opts ...ScheduleOption) *domain.ScheduledFast {
	now := time.Now().UTC().Truncate(time.Second)
	s := &domain.ScheduledFast{
		ID:      uuid.New().String(),
		UserID:  userID,
		Enabled: true,
		DaysOfWeek: []time.Weekday{
			time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		},
		StartTimeOfDay: "20:00",
		DurationHours:  16,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
