package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/habitloop/habitloop-server/internal/domain"
	"github.com/habitloop/habitloop-server/internal/store"
)

// InsightsService derives weekly and monthly activity summaries from the
// completion ledger. Everything here is a pure read-time computation.
type InsightsService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewInsightsService creates a new insights service.
func NewInsightsService(st *store.Store, logger *slog.Logger) *InsightsService {
	return &InsightsService{store: st, logger: logger}
}

// Weekly summarizes the user's completion activity for the week containing
// now, compared against the week before it.
func (s *InsightsService) Weekly(ctx context.Context, userID string, now time.Time) (*domain.WeeklyInsights, error) {
	habits, counts, err := s.completionCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	weekStart := domain.StartOfWeek(now)
	prevStart := weekStart.AddDate(0, 0, -7)

	insights := &domain.WeeklyInsights{WeekStart: weekStart}
	for d := range 7 {
		day := weekStart.AddDate(0, 0, d)
		n := counts[domain.DateKey(day)]
		insights.DailyCounts[d] = n
		insights.Total += n

		prev := prevStart.AddDate(0, 0, d)
		insights.PreviousTotal += counts[domain.DateKey(prev)]
	}

	if insights.PreviousTotal > 0 {
		insights.PercentChange = float64(insights.Total-insights.PreviousTotal) /
			float64(insights.PreviousTotal) * 100
	}

	insights.Recommendations = s.recommend(insights, habits)
	return insights, nil
}

// Monthly summarizes the user's completion activity for the calendar month
// containing now.
func (s *InsightsService) Monthly(ctx context.Context, userID string, now time.Time) (*domain.MonthlyInsights, error) {
	habits, err := s.store.ListHabitsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	monthStart := domain.StartOfMonth(now)
	nextMonth := monthStart.AddDate(0, 1, 0)
	startKey := domain.DateKey(monthStart)
	endKey := domain.DateKey(nextMonth)

	insights := &domain.MonthlyInsights{MonthStart: monthStart}
	perHabit := make([]domain.HabitCount, 0, len(habits))
	perCategory := make(map[string]int)

	for _, habit := range habits {
		dates, err := s.store.CompletionDatesForHabit(ctx, habit.ID)
		if err != nil {
			return nil, fmt.Errorf("list completion dates: %w", err)
		}
		count := 0
		for _, date := range dates {
			if date >= startKey && date < endKey {
				count++
			}
		}
		if count == 0 {
			continue
		}
		insights.Total += count
		perHabit = append(perHabit, domain.HabitCount{
			HabitID: habit.ID,
			Name:    habit.Name,
			Count:   count,
		})
		category := habit.Category
		if category == "" {
			category = "uncategorized"
		}
		perCategory[category] += count
	}

	daysInMonth := nextMonth.Sub(monthStart).Hours() / 24
	insights.AveragePerDay = float64(insights.Total) / daysInMonth

	// Ties keep their input order; the stored habit listing is key-ordered,
	// so equal counts rank the same way on every call.
	sort.SliceStable(perHabit, func(i, j int) bool {
		return perHabit[i].Count > perHabit[j].Count
	})
	if len(perHabit) > 5 {
		perHabit = perHabit[:5]
	}
	insights.TopHabits = perHabit

	if insights.Total > 0 {
		for category, count := range perCategory {
			insights.Categories = append(insights.Categories, domain.CategoryShare{
				Category:   category,
				Count:      count,
				Percentage: float64(count) / float64(insights.Total) * 100,
			})
		}
		sort.Slice(insights.Categories, func(i, j int) bool {
			if insights.Categories[i].Count != insights.Categories[j].Count {
				return insights.Categories[i].Count > insights.Categories[j].Count
			}
			return insights.Categories[i].Category < insights.Categories[j].Category
		})
	}

	return insights, nil
}

// completionCounts builds a per-day completion count across all of the
// user's habits.
func (s *InsightsService) completionCounts(ctx context.Context, userID string) ([]*domain.Habit, map[string]int, error) {
	habits, err := s.store.ListHabitsForUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list habits: %w", err)
	}

	counts := make(map[string]int)
	for _, habit := range habits {
		dates, err := s.store.CompletionDatesForHabit(ctx, habit.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("list completion dates: %w", err)
		}
		for _, date := range dates {
			counts[date]++
		}
	}
	return habits, counts, nil
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// recommend derives advisory nudges from this week's numbers. The rules are
// deterministic so the same activity always produces the same advice.
func (s *InsightsService) recommend(insights *domain.WeeklyInsights, habits []*domain.Habit) []domain.Recommendation {
	var recs []domain.Recommendation

	if len(habits) == 0 {
		return []domain.Recommendation{{
			Code:    "create_habit",
			Message: "Create your first habit to start tracking.",
		}}
	}

	if insights.Total == 0 {
		return []domain.Recommendation{{
			Code:    "get_started",
			Message: "No completions yet this week. Pick one habit and complete it today.",
		}}
	}

	if insights.PreviousTotal > 0 && insights.PercentChange <= -25 {
		recs = append(recs, domain.Recommendation{
			Code: "declining",
			Message: fmt.Sprintf("You're %.0f%% behind last week. A small win today turns it around.",
				-insights.PercentChange),
		})
	}

	bestDay, bestCount := 0, insights.DailyCounts[0]
	for d := 1; d < 7; d++ {
		if insights.DailyCounts[d] > bestCount {
			bestDay, bestCount = d, insights.DailyCounts[d]
		}
	}
	recs = append(recs, domain.Recommendation{
		Code:    "best_day",
		Message: fmt.Sprintf("%s is your strongest day this week with %d completions.", weekdayNames[bestDay], bestCount),
	})

	return recs
}
