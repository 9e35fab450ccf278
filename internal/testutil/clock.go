package testutil

import "time"

// Clock is a manually advanced clock for tests.
type Clock struct {
	T time.Time
}

// NewClock starts a test clock at t.
func NewClock(t time.Time) *Clock {
	return &Clock{T: t.UTC()}
}

func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}
