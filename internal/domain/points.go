package domain

import "time"

// PointsPerLevel is the number of total points per level.
const PointsPerLevel = 100

// AwardReason labels why a points delta was applied. Recorded with every
// ledger entry so history stays explainable.
type AwardReason string

const (
	ReasonHabitCompleted   AwardReason = "habit_completed"
	ReasonHabitUncompleted AwardReason = "habit_uncompleted"
	ReasonStreakBonus      AwardReason = "streak_bonus"
	ReasonChallengeReward  AwardReason = "challenge_reward"
	ReasonManualAdjustment AwardReason = "manual_adjustment"
)

// PointsAccount is a user's gamification balance.
//
// TotalPoints never goes negative: a delta that would breach zero clamps to
// zero instead. WeeklyPoints and MonthlyPoints are rolling counters; the
// period-start fields record which week/month the counter belongs to, so the
// boundary is explicit instead of depending on an external reset job firing
// exactly on time.
type PointsAccount struct {
	UserID        string    `json:"user_id"`
	TotalPoints   int64     `json:"total_points"`
	WeeklyPoints  int64     `json:"weekly_points"`
	MonthlyPoints int64     `json:"monthly_points"`
	Level         int       `json:"level"`
	WeekStart     string    `json:"week_start"`  // Day key of the Monday this weekly counter covers
	MonthStart    string    `json:"month_start"` // Day key of the first of the month this monthly counter covers
	UpdatedAt     time.Time `json:"updated_at"`
}

// PointsForPeriod returns the point balance relevant to a ranking period.
func (a *PointsAccount) PointsForPeriod(p Period) int64 {
	switch p {
	case PeriodWeekly:
		return a.WeeklyPoints
	case PeriodMonthly:
		return a.MonthlyPoints
	default:
		return a.TotalPoints
	}
}

// PointsEntry is one append-only row in the points ledger.
type PointsEntry struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"user_id"`
	Delta     int64       `json:"delta"`
	Reason    AwardReason `json:"reason"`
	CreatedAt time.Time   `json:"created_at"`
}

// LevelForPoints derives the level from a total point balance.
func LevelForPoints(total int64) int {
	if total < 0 {
		return 0
	}
	return int(total / PointsPerLevel)
}

// StreakBonus is the milestone bonus lookup for a streak reaching the given
// day count. Fixed milestones win over the every-50-days rule; anything else
// earns nothing.
func StreakBonus(streakDays int) int64 {
	switch {
	case streakDays == 7:
		return 50
	case streakDays == 30:
		return 200
	case streakDays == 100:
		return 500
	case streakDays > 0 && streakDays%50 == 0:
		return 100
	default:
		return 0
	}
}
