package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop-server/internal/domain"
)

func TestToggleCompletion_FlipsState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	completion := domain.NewHabitCompletion("habit_abc", "user_abc", "2026-03-10")

	// First toggle completes.
	completed, err := s.ToggleCompletion(ctx, completion)
	require.NoError(t, err)
	assert.True(t, completed)

	exists, err := s.IsCompleted(ctx, "habit_abc", "2026-03-10")
	require.NoError(t, err)
	assert.True(t, exists)

	// Second toggle uncompletes.
	completed, err = s.ToggleCompletion(ctx, completion)
	require.NoError(t, err)
	assert.False(t, completed)

	exists, err = s.IsCompleted(ctx, "habit_abc", "2026-03-10")
	require.NoError(t, err)
	assert.False(t, exists)

	// Third toggle completes again.
	completed, err = s.ToggleCompletion(ctx, completion)
	require.NoError(t, err)
	assert.True(t, completed)
}

func TestToggleCompletion_DatesAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ToggleCompletion(ctx, domain.NewHabitCompletion("habit_abc", "user_abc", "2026-03-10"))
	require.NoError(t, err)
	_, err = s.ToggleCompletion(ctx, domain.NewHabitCompletion("habit_abc", "user_abc", "2026-03-11"))
	require.NoError(t, err)

	// Untoggling one date leaves the other intact.
	completed, err := s.ToggleCompletion(ctx, domain.NewHabitCompletion("habit_abc", "user_abc", "2026-03-10"))
	require.NoError(t, err)
	assert.False(t, completed)

	exists, err := s.IsCompleted(ctx, "habit_abc", "2026-03-11")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestToggleCompletion_ConcurrentTogglesNeverDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// An even number of toggles must land on "not completed" regardless of
	// interleaving; badger serializes the conflicting transactions.
	const toggles = 8
	var wg sync.WaitGroup
	for range toggles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			completion := domain.NewHabitCompletion("habit_abc", "user_abc", "2026-03-10")
			for {
				if _, err := s.ToggleCompletion(ctx, completion); err == nil {
					return
				}
			}
		}()
	}
	wg.Wait()

	exists, err := s.IsCompleted(ctx, "habit_abc", "2026-03-10")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListCompletionsForHabit_OrderedByDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2026-03-12", "2026-03-01", "2026-02-20"} {
		_, err := s.ToggleCompletion(ctx, domain.NewHabitCompletion("habit_abc", "user_abc", date))
		require.NoError(t, err)
	}
	// Another habit's completions must not leak in.
	_, err := s.ToggleCompletion(ctx, domain.NewHabitCompletion("habit_xyz", "user_abc", "2026-03-05"))
	require.NoError(t, err)

	dates, err := s.CompletionDatesForHabit(ctx, "habit_abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02-20", "2026-03-01", "2026-03-12"}, dates)
}
