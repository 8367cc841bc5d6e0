package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop-server/internal/domain"
	domainerrors "github.com/habitloop/habitloop-server/internal/errors"
)

func TestHabitService_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.createHabit(t, "user-1", "Morning run", "fitness")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.RecurrenceDaily, created.Recurrence)

	habits, err := env.habits.ListHabits(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "Morning run", habits[0].Name)

	// Other users see nothing
	habits, err = env.habits.ListHabits(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestHabitService_CreateHabit_InvalidRecurrence(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.habits.CreateHabit(context.Background(), "user-1", CreateHabitRequest{
		Name:       "Bad habit",
		Recurrence: "fortnightly",
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestHabitService_UpdateHabit_Partial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	habit := env.createHabit(t, "user-1", "Read", "learning")

	newName := "Read 20 pages"
	archived := true
	updated, err := env.habits.UpdateHabit(ctx, "user-1", habit.ID, UpdateHabitRequest{
		Name:     &newName,
		Archived: &archived,
	})
	require.NoError(t, err)
	assert.Equal(t, "Read 20 pages", updated.Name)
	assert.Equal(t, "learning", updated.Category)
	assert.True(t, updated.Archived)
}

func TestHabitService_ToggleCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	habit := env.createHabit(t, "user-1", "Meditate", "wellness")
	today := dayKey(0)

	resp, err := env.habits.ToggleCompletion(ctx, "user-1", habit.ID, today)
	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.Equal(t, int64(pointsPerCompletion), resp.PointsDelta)
	assert.Equal(t, 1, resp.Habit.CurrentStreak)
	assert.Equal(t, int64(10), resp.Account.TotalPoints)

	// Same day again reverses everything
	resp, err = env.habits.ToggleCompletion(ctx, "user-1", habit.ID, today)
	require.NoError(t, err)
	assert.False(t, resp.Completed)
	assert.Equal(t, int64(-pointsPerCompletion), resp.PointsDelta)
	assert.Equal(t, 0, resp.Habit.CurrentStreak)
	assert.Equal(t, int64(0), resp.Account.TotalPoints)
}

func TestHabitService_ToggleCompletion_FutureDate(t *testing.T) {
	env := newTestEnv(t)
	habit := env.createHabit(t, "user-1", "Sleep early", "")

	_, err := env.habits.ToggleCompletion(context.Background(), "user-1", habit.ID, dayKey(1))
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestHabitService_ToggleCompletion_BadDate(t *testing.T) {
	env := newTestEnv(t)
	habit := env.createHabit(t, "user-1", "Stretch", "")

	_, err := env.habits.ToggleCompletion(context.Background(), "user-1", habit.ID, "03/12/2026")
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestHabitService_ToggleCompletion_Archived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	habit := env.createHabit(t, "user-1", "Old habit", "")
	archived := true
	_, err := env.habits.UpdateHabit(ctx, "user-1", habit.ID, UpdateHabitRequest{Archived: &archived})
	require.NoError(t, err)

	_, err = env.habits.ToggleCompletion(ctx, "user-1", habit.ID, dayKey(0))
	require.ErrorIs(t, err, domainerrors.ErrInvalidTransition)
}

func TestHabitService_ToggleCompletion_StreakBonus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	habit := env.createHabit(t, "user-1", "Journal", "wellness")

	// Build a 7-day run ending today; the milestone lands on the last toggle.
	var last *ToggleResponse
	for offset := -6; offset <= 0; offset++ {
		resp, err := env.habits.ToggleCompletion(ctx, "user-1", habit.ID, dayKey(offset))
		require.NoError(t, err)
		last = resp
	}

	assert.Equal(t, 7, last.Habit.CurrentStreak)
	assert.Equal(t, int64(50), last.StreakBonus)
	// 7 completions at 10 each plus the 7-day bonus
	assert.Equal(t, int64(120), last.Account.TotalPoints)
	assert.Equal(t, 1, last.Account.Level)
}

func TestHabitService_ToggleCompletion_StreakBonusNotRepeatable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	habit := env.createHabit(t, "user-1", "Journal", "wellness")
	for offset := -6; offset <= 0; offset++ {
		_, err := env.habits.ToggleCompletion(ctx, "user-1", habit.ID, dayKey(offset))
		require.NoError(t, err)
	}

	// Toggling today off and back on re-reaches streak 7 without pushing past
	// the longest streak, so the milestone must not pay out again.
	off, err := env.habits.ToggleCompletion(ctx, "user-1", habit.ID, dayKey(0))
	require.NoError(t, err)
	assert.False(t, off.Completed)
	assert.Equal(t, int64(110), off.Account.TotalPoints)

	on, err := env.habits.ToggleCompletion(ctx, "user-1", habit.ID, dayKey(0))
	require.NoError(t, err)
	assert.True(t, on.Completed)
	assert.Equal(t, 7, on.Habit.CurrentStreak)
	assert.Zero(t, on.StreakBonus)
	assert.Equal(t, int64(120), on.Account.TotalPoints)
}

func TestHabitService_GetStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	habit := env.createHabit(t, "user-1", "Walk", "fitness")
	for _, offset := range []int{-1, 0} {
		_, err := env.habits.ToggleCompletion(ctx, "user-1", habit.ID, dayKey(offset))
		require.NoError(t, err)
	}

	stats, err := env.habits.GetStats(ctx, "user-1", habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCompletions)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 2, stats.LongestStreak)
	assert.InDelta(t, float64(2)/30*100, stats.CompletionRate, 0.01)
	require.Len(t, stats.Calendar, statsWeeks)

	// Today sits in the last calendar week at its weekday slot (Monday = 0)
	todayIdx := (int(time.Now().Weekday()) + 6) % 7
	assert.True(t, stats.Calendar[statsWeeks-1][todayIdx])
}

func TestHabitService_DeleteHabit_RemovesHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	habit := env.createHabit(t, "user-1", "Doomed", "")
	_, err := env.habits.ToggleCompletion(ctx, "user-1", habit.ID, dayKey(0))
	require.NoError(t, err)

	require.NoError(t, env.habits.DeleteHabit(ctx, "user-1", habit.ID))

	_, err = env.habits.GetHabit(ctx, "user-1", habit.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	dates, err := env.store.CompletionDatesForHabit(ctx, habit.ID)
	require.NoError(t, err)
	assert.Empty(t, dates)
}
