package domain

import "time"

// WeeklyInsights summarizes completion activity for one ISO week.
type WeeklyInsights struct {
	WeekStart     time.Time `json:"week_start"`
	DailyCounts   [7]int    `json:"daily_counts"` // Monday..Sunday
	Total         int       `json:"total"`
	PreviousTotal int       `json:"previous_total"`
	// PercentChange versus the equivalent prior-week total.
	// Zero when the prior week is empty, to avoid divide-by-zero.
	PercentChange   float64          `json:"percent_change"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// HabitCount pairs a habit with its completion count for a window.
type HabitCount struct {
	HabitID string `json:"habit_id"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
}

// CategoryShare is one category's share of a window's completions.
type CategoryShare struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // 0-100
}

// MonthlyInsights summarizes completion activity for one calendar month.
type MonthlyInsights struct {
	MonthStart    time.Time       `json:"month_start"`
	Total         int             `json:"total"`
	AveragePerDay float64         `json:"average_per_day"` // Total / days in month
	TopHabits     []HabitCount    `json:"top_habits"`
	Categories    []CategoryShare `json:"categories,omitempty"` // Omitted when total is 0
}

// Recommendation is a deterministic, advisory nudge derived from activity.
// It carries no invariants of its own; the Code is stable for clients that
// want to special-case the UI treatment.
type Recommendation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
