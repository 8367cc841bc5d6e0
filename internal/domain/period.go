package domain

import "time"

// Period represents a rolling time window for points and rankings.
type Period string

// Period constants for leaderboard and insight queries.
const (
	PeriodAllTime Period = "all"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Valid returns true if the period is a recognized value.
func (p Period) Valid() bool {
	switch p {
	case PeriodAllTime, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

// StartOfDay normalizes a time to local midnight.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns local midnight of the Monday of t's ISO week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// StartOfMonth returns local midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}

// Bounds returns the start (inclusive) and end (exclusive) of the period
// relative to now. End is always the end of today.
func (p Period) Bounds(now time.Time) (start, end time.Time) {
	endOfToday := StartOfDay(now).Add(24 * time.Hour)

	switch p {
	case PeriodWeekly:
		return StartOfWeek(now), endOfToday
	case PeriodMonthly:
		return StartOfMonth(now), endOfToday
	default:
		return time.Time{}, endOfToday // Zero time = beginning of time
	}
}
