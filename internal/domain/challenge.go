package domain

import "time"

// ChallengeKind distinguishes how long a challenge's window runs.
type ChallengeKind string

const (
	// ChallengeDaily challenges reset every calendar day.
	ChallengeDaily ChallengeKind = "daily"
	// ChallengeWeekly challenges run Monday through Sunday.
	ChallengeWeekly ChallengeKind = "weekly"
)

// GoalType classifies what a challenge measures.
type GoalType string

const (
	// GoalCompleteHabits counts qualifying completion events.
	GoalCompleteHabits GoalType = "complete_habits"
	// GoalMaintainStreak mirrors the user's best current streak.
	GoalMaintainStreak GoalType = "maintain_streak"
	// GoalEarnPoints counts points earned inside the challenge window.
	GoalEarnPoints GoalType = "earn_points"
	// GoalCompleteCategory counts completions whose habit matches a category.
	GoalCompleteCategory GoalType = "complete_category"
)

// Valid returns true if the goal type is recognized.
func (g GoalType) Valid() bool {
	switch g {
	case GoalCompleteHabits, GoalMaintainStreak, GoalEarnPoints, GoalCompleteCategory:
		return true
	default:
		return false
	}
}

// Cumulative reports whether progress for this goal type only ever counts up.
// Non-cumulative goals mirror a live quantity and may fall again (a broken
// streak), though a completion latch that already fired never unsets.
func (g GoalType) Cumulative() bool {
	return g != GoalMaintainStreak
}

// Goal is what a challenge asks the user to do.
type Goal struct {
	Type     GoalType `json:"type"`
	Target   int      `json:"target"`
	Category string   `json:"category,omitempty"` // Only for complete_category
}

// Reward is what claiming a completed challenge credits.
type Reward struct {
	Points int64 `json:"points"`
}

// Challenge is an active challenge definition from the catalog.
type Challenge struct {
	ID          string        `json:"id"`
	Kind        ChallengeKind `json:"kind"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Goal        Goal          `json:"goal"`
	Reward      Reward        `json:"reward"`
	StartsAt    time.Time     `json:"starts_at"`
	EndsAt      time.Time     `json:"ends_at"`
}

// ActiveAt reports whether the challenge's validity window covers t.
// A zero EndsAt means the challenge never expires.
func (c *Challenge) ActiveAt(t time.Time) bool {
	if t.Before(c.StartsAt) {
		return false
	}
	return c.EndsAt.IsZero() || t.Before(c.EndsAt)
}

// WindowStart returns the start of the challenge's current measurement
// window: today for daily challenges, this ISO week's Monday for weekly ones.
func (c *Challenge) WindowStart(now time.Time) time.Time {
	if c.Kind == ChallengeDaily {
		return StartOfDay(now)
	}
	return StartOfWeek(now)
}

// UserChallengeState tracks one user's progress through one challenge.
//
// Lifecycle: active -> completed -> claimed, with no reverse transitions.
// IsCompleted is a one-way latch: once the target is reached it stays set even
// if the underlying counter later regresses. A claimed state is terminal.
type UserChallengeState struct {
	UserID      string    `json:"user_id"`
	ChallengeID string    `json:"challenge_id"`
	Progress    int       `json:"progress"`
	IsCompleted bool      `json:"is_completed"`
	IsClaimed   bool      `json:"is_claimed"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
	ClaimedAt   time.Time `json:"claimed_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplyProgress moves the counter to value, honoring monotonicity for
// cumulative goals and latching completion when the target is reached.
// Returns true if the state changed.
func (s *UserChallengeState) ApplyProgress(goal Goal, value int) bool {
	if s.IsClaimed {
		return false
	}
	if goal.Type.Cumulative() && value < s.Progress {
		value = s.Progress
	}

	changed := false
	if value != s.Progress {
		s.Progress = value
		changed = true
	}
	if !s.IsCompleted && s.Progress >= goal.Target && goal.Target > 0 {
		s.IsCompleted = true
		s.CompletedAt = time.Now()
		changed = true
	}
	if changed {
		s.UpdatedAt = time.Now()
	}
	return changed
}

// PercentComplete returns progress as a 0-100 percentage, capped at 100.
// A completed state always reports 100 even if a live counter fell back.
func (s *UserChallengeState) PercentComplete(goal Goal) float64 {
	if s.IsCompleted {
		return 100
	}
	if goal.Target <= 0 {
		return 0
	}
	pct := float64(s.Progress) / float64(goal.Target) * 100
	return min(100, pct)
}
