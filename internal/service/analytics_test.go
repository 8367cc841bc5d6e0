package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightsService_Weekly(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInsightsService(env.store, testLogger())
	ctx := context.Background()
	now := time.Now()

	run := env.createHabit(t, "user-1", "Run", "fitness")
	read := env.createHabit(t, "user-1", "Read", "learning")

	// Two completions today, one on the same weekday last week
	for _, h := range []string{run.ID, read.ID} {
		_, err := env.habits.ToggleCompletion(ctx, "user-1", h, dayKey(0))
		require.NoError(t, err)
	}
	_, err := env.habits.ToggleCompletion(ctx, "user-1", run.ID, dayKey(-7))
	require.NoError(t, err)

	insights, err := svc.Weekly(ctx, "user-1", now)
	require.NoError(t, err)

	todayIdx := (int(now.Weekday()) + 6) % 7
	assert.Equal(t, 2, insights.DailyCounts[todayIdx])
	assert.Equal(t, 2, insights.Total)
	assert.Equal(t, 1, insights.PreviousTotal)
	assert.InDelta(t, 100, insights.PercentChange, 0.01)

	require.NotEmpty(t, insights.Recommendations)
	assert.Equal(t, "best_day", insights.Recommendations[len(insights.Recommendations)-1].Code)
}

func TestInsightsService_Weekly_NoHabits(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInsightsService(env.store, testLogger())

	insights, err := svc.Weekly(context.Background(), "user-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, insights.Total)
	require.Len(t, insights.Recommendations, 1)
	assert.Equal(t, "create_habit", insights.Recommendations[0].Code)
}

func TestInsightsService_Weekly_EmptyPriorWeek(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInsightsService(env.store, testLogger())
	ctx := context.Background()

	habit := env.createHabit(t, "user-1", "Run", "")
	_, err := env.habits.ToggleCompletion(ctx, "user-1", habit.ID, dayKey(0))
	require.NoError(t, err)

	insights, err := svc.Weekly(ctx, "user-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, insights.PreviousTotal)
	// No prior activity means no percentage, not a divide-by-zero blowup
	assert.Equal(t, float64(0), insights.PercentChange)
}

func TestInsightsService_Weekly_NoActivityThisWeek(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInsightsService(env.store, testLogger())
	ctx := context.Background()

	env.createHabit(t, "user-1", "Run", "")

	insights, err := svc.Weekly(ctx, "user-1", time.Now())
	require.NoError(t, err)
	require.Len(t, insights.Recommendations, 1)
	assert.Equal(t, "get_started", insights.Recommendations[0].Code)
}

func TestInsightsService_Monthly(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInsightsService(env.store, testLogger())
	ctx := context.Background()
	now := time.Now()

	run := env.createHabit(t, "user-1", "Run", "fitness")
	read := env.createHabit(t, "user-1", "Read", "learning")
	env.createHabit(t, "user-1", "Idle", "misc") // never completed

	for _, h := range []string{run.ID, read.ID} {
		_, err := env.habits.ToggleCompletion(ctx, "user-1", h, dayKey(0))
		require.NoError(t, err)
	}

	insights, err := svc.Monthly(ctx, "user-1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, insights.Total)

	// Equal counts keep the stored listing order; habits with no completions
	// drop out. Repeated calls rank the tie identically.
	require.Len(t, insights.TopHabits, 2)
	assert.ElementsMatch(t, []string{"Read", "Run"},
		[]string{insights.TopHabits[0].Name, insights.TopHabits[1].Name})

	again, err := svc.Monthly(ctx, "user-1", now)
	require.NoError(t, err)
	assert.Equal(t, insights.TopHabits, again.TopHabits)

	require.Len(t, insights.Categories, 2)
	assert.InDelta(t, 50, insights.Categories[0].Percentage, 0.01)

	daysInMonth := insights.MonthStart.AddDate(0, 1, 0).Sub(insights.MonthStart).Hours() / 24
	assert.InDelta(t, 2/daysInMonth, insights.AveragePerDay, 0.001)
}

func TestInsightsService_Monthly_Empty(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInsightsService(env.store, testLogger())

	insights, err := svc.Monthly(context.Background(), "user-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, insights.Total)
	assert.Empty(t, insights.TopHabits)
	assert.Empty(t, insights.Categories)
}
