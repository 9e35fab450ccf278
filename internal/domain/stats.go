package domain

// Stats summarizes a user's fasting history. All fields are derived from
// terminal sessions only; an in-flight active session contributes nothing.
type Stats struct {
	TotalSessions        int
	CurrentStreak        int
	LongestStreak        int
	AverageDurationHours float64
	CompletionRate       float64
	TotalCompletedHours  float64
}
