package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop-server/internal/catalog"
	"github.com/habitloop/habitloop-server/internal/domain"
	"github.com/habitloop/habitloop-server/internal/store"
	"github.com/habitloop/habitloop-server/internal/store/sqlite"
)

// testEnv wires the full service pipeline onto throwaway databases so the
// toggle -> streak -> points -> challenge chain runs for real in tests.
type testEnv struct {
	store      *store.Store
	ledger     *sqlite.Store
	catalog    *catalog.Catalog
	points     *PointsService
	challenges *ChallengeService
	habits     *HabitService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	logger := testLogger()

	st, err := store.New(filepath.Join(tmpDir, "data.db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ledger, err := sqlite.Open(filepath.Join(tmpDir, "points.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	cat, err := catalog.New("", logger)
	require.NoError(t, err)

	events := store.NewNoopEmitter()
	points := NewPointsService(ledger, events, logger)
	challenges := NewChallengeService(st, cat, ledger, points, events, logger)
	points.SetChallengeRecorder(challenges)
	habits := NewHabitService(st, points, challenges, nil, events, logger)

	return &testEnv{
		store:      st,
		ledger:     ledger,
		catalog:    cat,
		points:     points,
		challenges: challenges,
		habits:     habits,
	}
}

func (e *testEnv) createHabit(t *testing.T, userID, name, category string) *domain.Habit {
	t.Helper()
	habit, err := e.habits.CreateHabit(context.Background(), userID, CreateHabitRequest{
		Name:       name,
		Category:   category,
		Recurrence: "daily",
	})
	require.NoError(t, err)
	return habit
}

func (e *testEnv) createUser(t *testing.T, id, displayName string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:       id + "@test.com",
		Role:        domain.RoleMember,
		DisplayName: displayName,
	}
	user.ID = id
	user.InitTimestamps()
	require.NoError(t, e.store.Users.Create(context.Background(), id, user))
	return user
}

// dayKey returns the canonical key for today plus the given day offset.
func dayKey(offset int) string {
	return domain.DateKey(time.Now().AddDate(0, 0, offset))
}
