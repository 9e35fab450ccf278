package domain

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// FastingSession is one fasting attempt by a user. At most one session per
// user may be in the active state at any instant; the store enforces this
// with a conditional insert.
type FastingSession struct {
	ID                  string
	UserID              string
	Status              SessionStatus
	StartTime           time.Time
	EndTime             *time.Time
	TargetDurationHours *float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Terminal reports whether the session has left the active state.
// Terminal sessions never change status again.
func (s *FastingSession) Terminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionCancelled
}

// Elapsed returns how long the session has been running as of now.
// For terminal sessions it equals ActualDuration.
func (s *FastingSession) Elapsed(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

// ActualDuration returns the final duration of a terminal session,
// or zero while the session is still active.
func (s *FastingSession) ActualDuration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// MetTarget reports whether a completed session reached its planned
// duration. Sessions without a target count as having met it.
func (s *FastingSession) MetTarget() bool {
	if s.Status != SessionCompleted {
		return false
	}
	if s.TargetDurationHours == nil {
		return true
	}
	return s.ActualDuration() >= HoursToDuration(*s.TargetDurationHours)
}

// HoursToDuration converts a fractional hour count to a time.Duration.
func HoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
