// Package stats derives summary statistics from a user's fasting history.
// All functions operate on a snapshot of terminal sessions; the caller is
// responsible for excluding any in-flight active session.
package stats

import (
	"time"

	"github.com/mlevkov/fastwell/internal/domain"
)

// Policy controls which completed sessions qualify a calendar day for streak
// purposes. Exact streak semantics are a product decision, so they are kept
// configurable rather than hard-coded.
type Policy struct {
	// RequireTargetMet demands that a completed session reach its planned
	// duration to count toward the streak. Sessions without a target always
	// qualify once completed.
	RequireTargetMet bool
}

// DefaultPolicy requires targets to be met.
func DefaultPolicy() Policy {
	return Policy{RequireTargetMet: true}
}

// Compute aggregates stats over a user's terminal sessions. Calendar-day
// bucketing for streaks uses loc; sessions are attributed to the day they
// started on. now anchors the current-streak walk.
func Compute(sessions []*domain.FastingSession, now time.Time, loc *time.Location, p Policy) domain.Stats {
	var st domain.Stats
	st.TotalSessions = len(sessions)

	var completed, cancelled int
	var completedHours float64
	qualifying := map[int]bool{}

	for _, s := range sessions {
		switch s.Status {
		case domain.SessionCompleted:
			completed++
			completedHours += s.ActualDuration().Hours()
			if qualifies(s, p) {
				qualifying[dayOrdinal(s.StartTime, loc)] = true
			}
		case domain.SessionCancelled:
			cancelled++
		}
	}

	if completed > 0 {
		st.AverageDurationHours = completedHours / float64(completed)
	}
	if completed+cancelled > 0 {
		st.CompletionRate = float64(completed) / float64(completed+cancelled)
	}
	st.TotalCompletedHours = completedHours

	st.CurrentStreak = currentStreak(qualifying, dayOrdinal(now, loc))
	st.LongestStreak = longestStreak(qualifying)
	return st
}

func qualifies(s *domain.FastingSession, p Policy) bool {
	if s.Status != domain.SessionCompleted {
		return false
	}
	if !p.RequireTargetMet {
		return true
	}
	return s.MetTarget()
}

// dayOrdinal buckets an instant into a calendar day in loc, encoded as days
// since the Unix epoch. Reconstructing the date in UTC keeps the arithmetic
// immune to DST offsets.
func dayOrdinal(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return int(time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// currentStreak walks backward from today. An unqualified today does not
// break the run (the user may still complete a fast before midnight); the
// walk then continues from yesterday.
func currentStreak(qualifying map[int]bool, today int) int {
	day := today
	if !qualifying[day] {
		day--
	}
	streak := 0
	for qualifying[day] {
		streak++
		day--
	}
	return streak
}

// longestStreak finds the maximum consecutive-day run over all of history.
func longestStreak(qualifying map[int]bool) int {
	best := 0
	for day := range qualifying {
		// Only count from the start of each run.
		if qualifying[day-1] {
			continue
		}
		length := 0
		for qualifying[day+length] {
			length++
		}
		if length > best {
			best = length
		}
	}
	return best
}
