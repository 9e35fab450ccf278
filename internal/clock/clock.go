package clock

import "time"

// Clock abstracts wall-clock time so session timestamps and schedule
// evaluation stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// System returns the real time in UTC.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant. Useful in tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
