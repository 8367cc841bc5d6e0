package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop-server/internal/domain"
	domainerrors "github.com/habitloop/habitloop-server/internal/errors"
)

func TestLeaderboardService_GlobalRanking(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLeaderboardService(env.store, env.ledger, testLogger())
	ctx := context.Background()

	env.createUser(t, "user-a", "Alice")
	env.createUser(t, "user-b", "Bob")
	env.createUser(t, "user-c", "Carol")

	_, err := env.points.Award(ctx, "user-b", 100, domain.ReasonManualAdjustment)
	require.NoError(t, err)
	_, err = env.points.Award(ctx, "user-c", 40, domain.ReasonManualAdjustment)
	require.NoError(t, err)

	board, err := svc.Get(ctx, "user-a", LeaderboardParams{})
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeGlobal, board.Scope)
	assert.Equal(t, 3, board.TotalUsers)
	require.Len(t, board.Entries, 3)

	assert.Equal(t, "user-b", board.Entries[0].UserID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, int64(100), board.Entries[0].Points)
	assert.Equal(t, 1, board.Entries[0].Level)

	assert.Equal(t, "user-c", board.Entries[1].UserID)
	assert.Equal(t, 2, board.Entries[1].Rank)

	assert.Equal(t, "user-a", board.Entries[2].UserID)
	assert.True(t, board.Entries[2].IsCurrentUser)
}

func TestLeaderboardService_DeterministicTies(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLeaderboardService(env.store, env.ledger, testLogger())
	ctx := context.Background()

	env.createUser(t, "user-b", "Bob")
	env.createUser(t, "user-a", "Alice")

	for _, id := range []string{"user-a", "user-b"} {
		_, err := env.points.Award(ctx, id, 50, domain.ReasonManualAdjustment)
		require.NoError(t, err)
	}

	// Equal points and streaks fall back to user ID order, every time
	for range 3 {
		board, err := svc.Get(ctx, "user-a", LeaderboardParams{})
		require.NoError(t, err)
		require.Len(t, board.Entries, 2)
		assert.Equal(t, "user-a", board.Entries[0].UserID)
		assert.Equal(t, "user-b", board.Entries[1].UserID)
	}
}

func TestLeaderboardService_FriendsScope(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLeaderboardService(env.store, env.ledger, testLogger())
	ctx := context.Background()

	alice := env.createUser(t, "user-a", "Alice")
	env.createUser(t, "user-b", "Bob")
	env.createUser(t, "user-c", "Carol") // not a friend

	alice.AddFriend("user-b")
	require.NoError(t, env.store.Users.Update(ctx, alice.ID, alice))

	board, err := svc.Get(ctx, "user-a", LeaderboardParams{Scope: domain.ScopeFriends})
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	for _, entry := range board.Entries {
		assert.NotEqual(t, "user-c", entry.UserID)
	}
}

func TestLeaderboardService_PeriodSelectsCounter(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLeaderboardService(env.store, env.ledger, testLogger())
	ctx := context.Background()

	env.createUser(t, "user-a", "Alice")
	_, err := env.points.Award(ctx, "user-a", 70, domain.ReasonManualAdjustment)
	require.NoError(t, err)

	board, err := svc.Get(ctx, "user-a", LeaderboardParams{Period: domain.PeriodWeekly})
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, int64(70), board.Entries[0].Points)
}

func TestLeaderboardService_NameFilter(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLeaderboardService(env.store, env.ledger, testLogger())
	ctx := context.Background()

	env.createUser(t, "user-a", "Alice")
	env.createUser(t, "user-b", "Bob")

	board, err := svc.Get(ctx, "user-a", LeaderboardParams{NameQuery: "ali"})
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "Alice", board.Entries[0].DisplayName)
}

func TestLeaderboardService_RankOf(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLeaderboardService(env.store, env.ledger, testLogger())
	ctx := context.Background()

	env.createUser(t, "user-a", "Alice")
	env.createUser(t, "user-b", "Bob")
	env.createUser(t, "user-c", "Carol")

	_, err := env.points.Award(ctx, "user-b", 100, domain.ReasonManualAdjustment)
	require.NoError(t, err)
	_, err = env.points.Award(ctx, "user-a", 40, domain.ReasonManualAdjustment)
	require.NoError(t, err)

	rank, err := svc.RankOf(ctx, "user-a", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeGlobal, rank.Scope)
	assert.Equal(t, 2, rank.Entry.Rank, "one user strictly ahead")
	assert.Equal(t, 3, rank.TotalUsers)
	assert.True(t, rank.Entry.IsCurrentUser)
	assert.Equal(t, int64(40), rank.Entry.Points)

	last, err := svc.RankOf(ctx, "user-c", "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, last.Entry.Rank)

	_, err = svc.RankOf(ctx, "user-a", "galactic", "")
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestLeaderboardService_InvalidScope(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLeaderboardService(env.store, env.ledger, testLogger())

	_, err := svc.Get(context.Background(), "user-a", LeaderboardParams{Scope: "galactic"})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}
