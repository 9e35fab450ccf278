package domain

import "errors"

// ErrValidation marks malformed user input (negative durations, unknown
// timezones, bad time-of-day strings). Callers classify with errors.Is.
var ErrValidation = errors.New("validation failed")
