package catalog

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitloop/habitloop-server/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNew_DefaultsWhenNoPath(t *testing.T) {
	c, err := New("", discardLogger())
	require.NoError(t, err)

	all := c.All()
	assert.NotEmpty(t, all)
	for _, challenge := range all {
		assert.NoError(t, validateChallenge(challenge))
	}

	// Default challenges have open validity windows.
	assert.Len(t, c.Active(time.Now()), len(all))
}

func TestNew_LoadsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "challenges.json")

	content := `{
		"challenges": [
			{
				"id": "chal_test",
				"kind": "weekly",
				"title": "Test Challenge",
				"goal": {"type": "complete_habits", "target": 5},
				"reward": {"points": 40}
			}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := New(path, discardLogger())
	require.NoError(t, err)

	challenge := c.Get("chal_test")
	require.NotNil(t, challenge)
	assert.Equal(t, domain.ChallengeWeekly, challenge.Kind)
	assert.Equal(t, 5, challenge.Goal.Target)
	assert.Equal(t, int64(40), challenge.Reward.Points)

	assert.Nil(t, c.Get("chal_missing"))
}

func TestNew_RejectsInvalidCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "challenges.json")

	cases := map[string]string{
		"missing id":       `{"challenges": [{"kind": "daily", "title": "X", "goal": {"type": "complete_habits", "target": 1}}]}`,
		"bad goal type":    `{"challenges": [{"id": "c1", "kind": "daily", "title": "X", "goal": {"type": "nonsense", "target": 1}}]}`,
		"zero target":      `{"challenges": [{"id": "c1", "kind": "daily", "title": "X", "goal": {"type": "complete_habits", "target": 0}}]}`,
		"missing category": `{"challenges": [{"id": "c1", "kind": "daily", "title": "X", "goal": {"type": "complete_category", "target": 1}}]}`,
		"duplicate ids":    `{"challenges": [{"id": "c1", "kind": "daily", "title": "X", "goal": {"type": "complete_habits", "target": 1}}, {"id": "c1", "kind": "daily", "title": "Y", "goal": {"type": "complete_habits", "target": 2}}]}`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := New(path, discardLogger())
			assert.Error(t, err)
		})
	}
}

func TestActive_RespectsWindow(t *testing.T) {
	c, err := New("", discardLogger())
	require.NoError(t, err)

	now := time.Now()
	c.setChallenges([]*domain.Challenge{
		{
			ID: "chal_past", Kind: domain.ChallengeDaily, Title: "Past",
			Goal:     domain.Goal{Type: domain.GoalCompleteHabits, Target: 1},
			StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-24 * time.Hour),
		},
		{
			ID: "chal_current", Kind: domain.ChallengeDaily, Title: "Current",
			Goal:     domain.Goal{Type: domain.GoalCompleteHabits, Target: 1},
			StartsAt: now.Add(-time.Hour),
		},
		{
			ID: "chal_future", Kind: domain.ChallengeDaily, Title: "Future",
			Goal:     domain.Goal{Type: domain.GoalCompleteHabits, Target: 1},
			StartsAt: now.Add(24 * time.Hour),
		},
	})

	active := c.Active(now)
	require.Len(t, active, 1)
	assert.Equal(t, "chal_current", active[0].ID)
}

func TestReload_KeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "challenges.json")

	good := `{"challenges": [{"id": "chal_good", "kind": "daily", "title": "Good", "goal": {"type": "complete_habits", "target": 1}}]}`
	require.NoError(t, os.WriteFile(path, []byte(good), 0o644))

	c, err := New(path, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, c.Get("chal_good"))

	// A broken rewrite must not wipe the loaded catalog.
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.Error(t, c.reload())
	assert.NotNil(t, c.Get("chal_good"))
}
