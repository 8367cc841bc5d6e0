// Package catalog manages the set of challenge definitions. Definitions come
// from an optional JSON file that is hot-reloaded on change, or from built-in
// defaults when no file is configured.
package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/habitloop/habitloop-server/internal/domain"
)

// Catalog holds the current challenge definitions.
// All public methods are safe for concurrent use; a reload swaps the whole
// definition map under the write lock.
type Catalog struct {
	mu         sync.RWMutex
	challenges map[string]*domain.Challenge
	path       string
	logger     *slog.Logger
}

// catalogFile is the JSON shape of a challenge catalog file.
type catalogFile struct {
	Challenges []*domain.Challenge `json:"challenges"`
}

// New creates a catalog. When path is empty the built-in default challenges
// are loaded; otherwise the file is read immediately and watched for changes
// once Watch is started.
func New(path string, logger *slog.Logger) (*Catalog, error) {
	c := &Catalog{
		challenges: make(map[string]*domain.Challenge),
		path:       path,
		logger:     logger,
	}

	if path == "" {
		c.setChallenges(defaultChallenges())
		logger.Info("challenge catalog using built-in defaults", "count", len(c.challenges))
		return c, nil
	}

	if err := c.reload(); err != nil {
		return nil, fmt.Errorf("load challenge catalog: %w", err)
	}

	return c, nil
}

// Get returns a challenge by ID, or nil if unknown.
func (c *Catalog) Get(id string) *domain.Challenge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.challenges[id]
}

// Active returns the challenges whose validity window covers now.
func (c *Catalog) Active(now time.Time) []*domain.Challenge {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := make([]*domain.Challenge, 0, len(c.challenges))
	for _, challenge := range c.challenges {
		if challenge.ActiveAt(now) {
			active = append(active, challenge)
		}
	}
	return active
}

// All returns every challenge definition, active or not.
func (c *Catalog) All() []*domain.Challenge {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := make([]*domain.Challenge, 0, len(c.challenges))
	for _, challenge := range c.challenges {
		all = append(all, challenge)
	}
	return all
}

// Watch blocks, reloading the catalog file whenever it changes, until the
// context is canceled. It is a no-op when the catalog uses built-in defaults.
// Reload failures keep the previous definitions; a broken edit never wipes
// the running catalog.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory; editors often replace the file rather
	// than writing it in place, which would orphan a direct file watch.
	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		return fmt.Errorf("watch catalog directory: %w", err)
	}

	c.logger.Info("watching challenge catalog", "path", c.path)

	// Debounce rapid write bursts into one reload.
	var reloadTimer *time.Timer
	defer func() {
		if reloadTimer != nil {
			reloadTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(c.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(200*time.Millisecond, func() {
				if err := c.reload(); err != nil {
					c.logger.Error("challenge catalog reload failed, keeping previous definitions",
						"path", c.path, "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

// reload reads and validates the catalog file, then swaps it in.
func (c *Catalog) reload() error {
	data, err := os.ReadFile(c.path) //#nosec G304 -- Catalog path comes from validated config
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse catalog file: %w", err)
	}

	challenges := make(map[string]*domain.Challenge, len(file.Challenges))
	for _, challenge := range file.Challenges {
		if err := validateChallenge(challenge); err != nil {
			return fmt.Errorf("challenge %q: %w", challenge.ID, err)
		}
		if _, dup := challenges[challenge.ID]; dup {
			return fmt.Errorf("duplicate challenge ID %q", challenge.ID)
		}
		challenges[challenge.ID] = challenge
	}

	c.mu.Lock()
	c.challenges = challenges
	c.mu.Unlock()

	c.logger.Info("challenge catalog loaded", "path", c.path, "count", len(challenges))
	return nil
}

func (c *Catalog) setChallenges(challenges []*domain.Challenge) {
	m := make(map[string]*domain.Challenge, len(challenges))
	for _, challenge := range challenges {
		m[challenge.ID] = challenge
	}

	c.mu.Lock()
	c.challenges = m
	c.mu.Unlock()
}

func validateChallenge(c *domain.Challenge) error {
	if c.ID == "" {
		return fmt.Errorf("missing ID")
	}
	if c.Title == "" {
		return fmt.Errorf("missing title")
	}
	if c.Kind != domain.ChallengeDaily && c.Kind != domain.ChallengeWeekly {
		return fmt.Errorf("invalid kind %q", c.Kind)
	}
	if !c.Goal.Type.Valid() {
		return fmt.Errorf("invalid goal type %q", c.Goal.Type)
	}
	if c.Goal.Target <= 0 {
		return fmt.Errorf("goal target must be positive, got %d", c.Goal.Target)
	}
	if c.Goal.Type == domain.GoalCompleteCategory && c.Goal.Category == "" {
		return fmt.Errorf("complete_category goal requires a category")
	}
	if c.Reward.Points < 0 {
		return fmt.Errorf("reward points must not be negative, got %d", c.Reward.Points)
	}
	return nil
}

// defaultChallenges is the built-in catalog used when no file is configured.
func defaultChallenges() []*domain.Challenge {
	return []*domain.Challenge{
		{
			ID:          "chal_perfect_day",
			Kind:        domain.ChallengeDaily,
			Title:       "Perfect Day",
			Description: "Complete 3 habits in one day",
			Goal:        domain.Goal{Type: domain.GoalCompleteHabits, Target: 3},
			Reward:      domain.Reward{Points: 30},
		},
		{
			ID:          "chal_week_streak",
			Kind:        domain.ChallengeWeekly,
			Title:       "On a Roll",
			Description: "Keep a 7-day streak going on any habit",
			Goal:        domain.Goal{Type: domain.GoalMaintainStreak, Target: 7},
			Reward:      domain.Reward{Points: 100},
		},
		{
			ID:          "chal_point_hunter",
			Kind:        domain.ChallengeWeekly,
			Title:       "Point Hunter",
			Description: "Earn 150 points this week",
			Goal:        domain.Goal{Type: domain.GoalEarnPoints, Target: 150},
			Reward:      domain.Reward{Points: 75},
		},
		{
			ID:          "chal_fitness_five",
			Kind:        domain.ChallengeWeekly,
			Title:       "Fitness Five",
			Description: "Complete 5 fitness habits this week",
			Goal:        domain.Goal{Type: domain.GoalCompleteCategory, Target: 5, Category: "fitness"},
			Reward:      domain.Reward{Points: 60},
		},
	}
}
