package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSchedule() *ScheduledFast {
	return &ScheduledFast{
		ID:             "sched-1",
		UserID:         "user-1",
		Enabled:        true,
		DaysOfWeek:     []time.Weekday{time.Monday, time.Wednesday},
		StartTimeOfDay: "20:00",
		DurationHours:  16,
		Timezone:       "Europe/Berlin",
	}
}

func TestScheduleValidate(t *testing.T) {
	require.NoError(t, validSchedule().Validate())

	tests := []struct {
		name   string
		mutate func(*ScheduledFast)
	}{
		{"missing user", func(s *ScheduledFast) { s.UserID = "" }},
		{"no weekdays", func(s *ScheduledFast) { s.DaysOfWeek = nil }},
		{"duplicate weekday", func(s *ScheduledFast) { s.DaysOfWeek = []time.Weekday{time.Monday, time.Monday} }},
		{"bad time of day", func(s *ScheduledFast) { s.StartTimeOfDay = "25:99" }},
		{"zero duration", func(s *ScheduledFast) { s.DurationHours = 0 }},
		{"negative duration", func(s *ScheduledFast) { s.DurationHours = -4 }},
		{"oversized duration", func(s *ScheduledFast) { s.DurationHours = 200 }},
		{"unknown timezone", func(s *ScheduledFast) { s.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchedule()
			tt.mutate(s)
			err := s.Validate()
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestFiresOn(t *testing.T) {
	s := validSchedule()
	assert.True(t, s.FiresOn(time.Monday))
	assert.False(t, s.FiresOn(time.Tuesday))
}

func TestLocationFallback(t *testing.T) {
	s := validSchedule()
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, berlin.String(), s.Location(time.UTC).String())

	s.Timezone = ""
	assert.Equal(t, time.UTC, s.Location(time.UTC))

	s.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, s.Location(time.UTC))
}

func TestParseTimeOfDay(t *testing.T) {
	h, m, err := ParseTimeOfDay("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8, h)
	assert.Equal(t, 30, m)

	_, _, err = ParseTimeOfDay("8:30pm")
	assert.ErrorIs(t, err, ErrValidation)
}
