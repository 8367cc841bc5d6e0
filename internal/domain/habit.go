package domain

import "time"

// DateLayout is the canonical day-key format used throughout the system.
// Dates are calendar days with no time component, always in the process-local
// calendar: normalizing here keeps day-boundary math consistent everywhere.
const DateLayout = "2006-01-02"

// DateKey normalizes a timestamp to its canonical day key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a canonical day key back into a local midnight time.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, key, time.Local)
}

// Recurrence describes how often a habit is meant to be completed.
type Recurrence string

const (
	// RecurrenceDaily means the habit is completed once per calendar day.
	RecurrenceDaily Recurrence = "daily"
	// RecurrenceWeekly means the habit is completed once per calendar week.
	RecurrenceWeekly Recurrence = "weekly"
)

// Valid returns true if the recurrence is a recognized value.
func (r Recurrence) Valid() bool {
	return r == RecurrenceDaily || r == RecurrenceWeekly
}

// Habit is a recurring action a user tracks.
//
// CurrentStreak, LongestStreak and CompletedDates are derived caches over the
// completion ledger. They are recomputed wholesale whenever the completion set
// changes and are never hand-edited; LongestStreak >= CurrentStreak holds at
// all times.
type Habit struct {
	Syncable
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category,omitempty"`
	Recurrence     Recurrence `json:"recurrence"`
	CurrentStreak  int        `json:"current_streak"`
	LongestStreak  int        `json:"longest_streak"`
	CompletedDates []string   `json:"completed_dates,omitempty"` // Sorted ascending day keys
	Archived       bool       `json:"archived,omitempty"`

	// RewardedStreak is the highest streak length whose milestone bonus has
	// been paid for this habit. Unlike the derived caches it only ever grows;
	// it is the latch that keeps a re-reached milestone from paying twice.
	RewardedStreak int `json:"rewarded_streak,omitempty"`
}

// RefreshDerived overwrites the cached completion view in one shot.
// The caller recomputes all three values from the authoritative ledger;
// patching individual fields here is a correctness hazard.
func (h *Habit) RefreshDerived(dates []string, current, longest int) {
	h.CompletedDates = dates
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.Touch()
}
