package domain

import (
	"fmt"
	"time"
)

// MaxDurationHours caps planned fast length at one week.
const MaxDurationHours = 168

// ScheduledFast is a recurring auto-start definition. On each listed weekday,
// once the local time-of-day passes StartTimeOfDay, the monitor starts a
// session with DurationHours as its target. LastTriggeredAt records the most
// recent auto-start and guards against re-triggering within the same
// occurrence window; only the monitor writes it.
type ScheduledFast struct {
	ID              string
	UserID          string
	Enabled         bool
	DaysOfWeek      []time.Weekday
	StartTimeOfDay  string // "HH:MM", local to Timezone
	DurationHours   float64
	Timezone        string // IANA name; empty means the engine default applies
	LastTriggeredAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FiresOn reports whether the schedule is configured for the given weekday.
func (s *ScheduledFast) FiresOn(day time.Weekday) bool {
	for _, d := range s.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// Location resolves the schedule's time zone, falling back to the supplied
// default when the stored name is empty or unknown. A bad zone is a
// configuration gap, not a reason to fail evaluation.
func (s *ScheduledFast) Location(fallback *time.Location) *time.Location {
	if s.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// Validate checks the user-editable fields. Violations wrap ErrValidation.
func (s *ScheduledFast) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("schedule user id is required: %w", ErrValidation)
	}
	if len(s.DaysOfWeek) == 0 {
		return fmt.Errorf("schedule needs at least one weekday: %w", ErrValidation)
	}
	seen := map[time.Weekday]bool{}
	for _, d := range s.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid weekday %d: %w", d, ErrValidation)
		}
		if seen[d] {
			return fmt.Errorf("duplicate weekday %s: %w", d, ErrValidation)
		}
		seen[d] = true
	}
	if _, _, err := ParseTimeOfDay(s.StartTimeOfDay); err != nil {
		return err
	}
	if s.DurationHours <= 0 || s.DurationHours > MaxDurationHours {
		return fmt.Errorf("duration must be between 0 and %d hours: %w", MaxDurationHours, ErrValidation)
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q: %w", s.Timezone, ErrValidation)
		}
	}
	return nil
}

// ParseTimeOfDay parses an "HH:MM" string into hour and minute.
func ParseTimeOfDay(v string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, 0, fmt.Errorf("time of day must be HH:MM, got %q: %w", v, ErrValidation)
	}
	return t.Hour(), t.Minute(), nil
}
