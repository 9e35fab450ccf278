// Package schedule decides when recurring fast definitions are due to
// auto-start. Evaluation is a pure function of the schedule set and a
// timestamp, which keeps the monitor's tick logic trivial to test.
package schedule

import (
	"time"

	"github.com/mlevkov/fastwell/internal/domain"
)

// Due filters schedules down to the ones that should fire at now. A schedule
// is due when it is enabled, now's weekday (in the schedule's zone) is one of
// its configured days, the local time-of-day has passed the start time, and
// it has not already been triggered at or after the current occurrence.
//
// The last condition tolerates a monitor ticking at irregular intervals: a
// schedule due at 08:00 stays due for the rest of its day until triggered,
// and once triggered it stays quiet until the next occurrence.
func Due(schedules []*domain.ScheduledFast, now time.Time, defaultLoc *time.Location) []*domain.ScheduledFast {
	var due []*domain.ScheduledFast
	for _, s := range schedules {
		if IsDue(s, now, defaultLoc) {
			due = append(due, s)
		}
	}
	return due
}

// IsDue evaluates a single schedule against now.
func IsDue(s *domain.ScheduledFast, now time.Time, defaultLoc *time.Location) bool {
	if !s.Enabled {
		return false
	}
	occ, ok := OccurrenceStart(s, now, defaultLoc)
	if !ok {
		return false
	}
	if now.Before(occ) {
		return false
	}
	// Already fired within this occurrence window.
	if s.LastTriggeredAt != nil && !s.LastTriggeredAt.Before(occ) {
		return false
	}
	return true
}

// OccurrenceStart returns the start of the schedule's occurrence on now's
// local day, or false when the schedule does not fire on that weekday or
// carries an unparseable time-of-day.
func OccurrenceStart(s *domain.ScheduledFast, now time.Time, defaultLoc *time.Location) (time.Time, bool) {
	loc := s.Location(defaultLoc)
	local := now.In(loc)
	if !s.FiresOn(local.Weekday()) {
		return time.Time{}, false
	}
	hour, minute, err := domain.ParseTimeOfDay(s.StartTimeOfDay)
	if err != nil {
		// Stored rows are validated on write; a bad value here is a data
		// problem and the schedule simply never fires.
		return time.Time{}, false
	}
	occ := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	return occ, true
}
