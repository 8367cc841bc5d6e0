package domain

import "time"

// HabitCompletion records one completed day for one habit.
//
// At most one completion exists per (habit, user, date); the store enforces
// this by keying completions on that natural identity rather than a generated
// ID, which makes the toggle operation idempotent under retry.
type HabitCompletion struct {
	HabitID    string    `json:"habit_id"`
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"` // Canonical day key, see DateLayout
	RecordedAt time.Time `json:"recorded_at"`
}

// NewHabitCompletion creates a completion for the given day.
func NewHabitCompletion(habitID, userID string, date string) *HabitCompletion {
	return &HabitCompletion{
		HabitID:    habitID,
		UserID:     userID,
		Date:       date,
		RecordedAt: time.Now(),
	}
}
