package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop-server/internal/domain"
	"github.com/habitloop/habitloop-server/internal/store"
)

func newTestHabit(userID, habitID, name string) *domain.Habit {
	habit := &domain.Habit{
		Syncable:   domain.Syncable{ID: habitID},
		UserID:     userID,
		Name:       name,
		Recurrence: domain.RecurrenceDaily,
	}
	habit.InitTimestamps()
	return habit
}

func TestHabitCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	habit := newTestHabit("user_abc", "habit_abc", "Morning run")

	require.NoError(t, s.CreateHabit(ctx, habit))
	assert.ErrorIs(t, s.CreateHabit(ctx, habit), store.ErrHabitExists)

	got, err := s.GetHabit(ctx, "user_abc", "habit_abc")
	require.NoError(t, err)
	assert.Equal(t, "Morning run", got.Name)

	got.Name = "Evening run"
	require.NoError(t, s.UpdateHabit(ctx, got))

	got, err = s.GetHabit(ctx, "user_abc", "habit_abc")
	require.NoError(t, err)
	assert.Equal(t, "Evening run", got.Name)

	// A habit is scoped to its owner.
	_, err = s.GetHabit(ctx, "user_other", "habit_abc")
	assert.ErrorIs(t, err, store.ErrHabitNotFound)
}

func TestUpdateHabit_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	habit := newTestHabit("user_abc", "habit_missing", "Read")
	assert.ErrorIs(t, s.UpdateHabit(ctx, habit), store.ErrHabitNotFound)
}

func TestListHabitsForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateHabit(ctx, newTestHabit("user_abc", "habit_one", "Run")))
	require.NoError(t, s.CreateHabit(ctx, newTestHabit("user_abc", "habit_two", "Read")))
	require.NoError(t, s.CreateHabit(ctx, newTestHabit("user_other", "habit_three", "Meditate")))

	habits, err := s.ListHabitsForUser(ctx, "user_abc")
	require.NoError(t, err)
	assert.Len(t, habits, 2)

	habits, err = s.ListHabitsForUser(ctx, "user_nobody")
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestDeleteHabit_RemovesCompletions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateHabit(ctx, newTestHabit("user_abc", "habit_abc", "Run")))
	_, err := s.ToggleCompletion(ctx, domain.NewHabitCompletion("habit_abc", "user_abc", "2026-03-10"))
	require.NoError(t, err)
	_, err = s.ToggleCompletion(ctx, domain.NewHabitCompletion("habit_abc", "user_abc", "2026-03-11"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteHabit(ctx, "user_abc", "habit_abc"))

	_, err = s.GetHabit(ctx, "user_abc", "habit_abc")
	assert.ErrorIs(t, err, store.ErrHabitNotFound)

	dates, err := s.CompletionDatesForHabit(ctx, "habit_abc")
	require.NoError(t, err)
	assert.Empty(t, dates)

	// Deleting again is a no-op.
	assert.NoError(t, s.DeleteHabit(ctx, "user_abc", "habit_abc"))
}
