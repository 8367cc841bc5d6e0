package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop-server/internal/domain"
	"github.com/habitloop/habitloop-server/internal/store"
)

func TestApplyChallengeProgress_CreatesAndLatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goal := domain.Goal{Type: domain.GoalCompleteHabits, Target: 3}

	state, justCompleted, err := s.ApplyChallengeProgress(ctx, "user_abc", "chal_abc", goal, 2)
	require.NoError(t, err)
	assert.False(t, justCompleted)
	assert.Equal(t, 2, state.Progress)
	assert.False(t, state.IsCompleted)

	state, justCompleted, err = s.ApplyChallengeProgress(ctx, "user_abc", "chal_abc", goal, 3)
	require.NoError(t, err)
	assert.True(t, justCompleted)
	assert.True(t, state.IsCompleted)
	assert.False(t, state.CompletedAt.IsZero())

	// Completion only fires once.
	state, justCompleted, err = s.ApplyChallengeProgress(ctx, "user_abc", "chal_abc", goal, 4)
	require.NoError(t, err)
	assert.False(t, justCompleted)
	assert.True(t, state.IsCompleted)
	assert.Equal(t, 4, state.Progress)
}

func TestApplyChallengeProgress_CumulativeNeverRegresses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goal := domain.Goal{Type: domain.GoalEarnPoints, Target: 100}

	_, _, err := s.ApplyChallengeProgress(ctx, "user_abc", "chal_pts", goal, 60)
	require.NoError(t, err)

	// A lower recomputed value must not move the counter backwards.
	state, _, err := s.ApplyChallengeProgress(ctx, "user_abc", "chal_pts", goal, 40)
	require.NoError(t, err)
	assert.Equal(t, 60, state.Progress)
}

func TestApplyChallengeProgress_StreakGoalFallsButStaysCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goal := domain.Goal{Type: domain.GoalMaintainStreak, Target: 5}

	state, justCompleted, err := s.ApplyChallengeProgress(ctx, "user_abc", "chal_streak", goal, 5)
	require.NoError(t, err)
	assert.True(t, justCompleted)

	// A broken streak lowers the live counter but the latch holds.
	state, justCompleted, err = s.ApplyChallengeProgress(ctx, "user_abc", "chal_streak", goal, 0)
	require.NoError(t, err)
	assert.False(t, justCompleted)
	assert.Equal(t, 0, state.Progress)
	assert.True(t, state.IsCompleted)
}

func TestClaimChallengeState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goal := domain.Goal{Type: domain.GoalCompleteHabits, Target: 1}

	// Claiming before any progress exists.
	_, err := s.ClaimChallengeState(ctx, "user_abc", "chal_abc")
	assert.ErrorIs(t, err, store.ErrChallengeStateNotFound)

	// Claiming before completion.
	_, _, err = s.ApplyChallengeProgress(ctx, "user_abc", "chal_abc", goal, 0)
	require.NoError(t, err)
	_, err = s.ClaimChallengeState(ctx, "user_abc", "chal_abc")
	assert.ErrorIs(t, err, store.ErrChallengeNotCompleted)

	// Claim after completion succeeds exactly once.
	_, _, err = s.ApplyChallengeProgress(ctx, "user_abc", "chal_abc", goal, 1)
	require.NoError(t, err)

	state, err := s.ClaimChallengeState(ctx, "user_abc", "chal_abc")
	require.NoError(t, err)
	assert.True(t, state.IsClaimed)
	assert.False(t, state.ClaimedAt.IsZero())

	_, err = s.ClaimChallengeState(ctx, "user_abc", "chal_abc")
	assert.ErrorIs(t, err, store.ErrChallengeAlreadyClaimed)
}

func TestClaimedStateIgnoresProgress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goal := domain.Goal{Type: domain.GoalCompleteHabits, Target: 1}

	_, _, err := s.ApplyChallengeProgress(ctx, "user_abc", "chal_abc", goal, 1)
	require.NoError(t, err)
	_, err = s.ClaimChallengeState(ctx, "user_abc", "chal_abc")
	require.NoError(t, err)

	state, justCompleted, err := s.ApplyChallengeProgress(ctx, "user_abc", "chal_abc", goal, 7)
	require.NoError(t, err)
	assert.False(t, justCompleted)
	assert.Equal(t, 1, state.Progress, "claimed state is terminal")
}

func TestListChallengeStatesForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goal := domain.Goal{Type: domain.GoalCompleteHabits, Target: 5}

	_, _, err := s.ApplyChallengeProgress(ctx, "user_abc", "chal_one", goal, 1)
	require.NoError(t, err)
	_, _, err = s.ApplyChallengeProgress(ctx, "user_abc", "chal_two", goal, 2)
	require.NoError(t, err)
	_, _, err = s.ApplyChallengeProgress(ctx, "user_other", "chal_one", goal, 3)
	require.NoError(t, err)

	states, err := s.ListChallengeStatesForUser(ctx, "user_abc")
	require.NoError(t, err)
	assert.Len(t, states, 2)
	for _, state := range states {
		assert.Equal(t, "user_abc", state.UserID)
	}
}
