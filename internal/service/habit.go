package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitloop/habitloop-server/internal/domain"
	domainerrors "github.com/habitloop/habitloop-server/internal/errors"
	"github.com/habitloop/habitloop-server/internal/id"
	"github.com/habitloop/habitloop-server/internal/search"
	"github.com/habitloop/habitloop-server/internal/sse"
	"github.com/habitloop/habitloop-server/internal/store"
	"github.com/habitloop/habitloop-server/internal/streak"
)

// pointsPerCompletion is the base award for completing a habit for one day.
// Un-completing reverses the same amount.
const pointsPerCompletion = 10

// statsWeeks is how many ISO weeks the stats calendar covers.
const statsWeeks = 12

// HabitService handles habit CRUD, completion toggling and derived stats.
type HabitService struct {
	store      *store.Store
	points     *PointsService
	challenges *ChallengeService
	search     *search.SearchIndex
	events     store.EventEmitter
	logger     *slog.Logger
}

// NewHabitService creates a new habit service.
func NewHabitService(st *store.Store, points *PointsService, challenges *ChallengeService, idx *search.SearchIndex, events store.EventEmitter, logger *slog.Logger) *HabitService {
	return &HabitService{
		store:      st,
		points:     points,
		challenges: challenges,
		search:     idx,
		events:     events,
		logger:     logger,
	}
}

// CreateHabitRequest contains the data for creating a habit.
type CreateHabitRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category" validate:"max=50"`
	Recurrence  string `json:"recurrence" validate:"required,oneof=daily weekly"`
}

// UpdateHabitRequest contains the fields that may change on a habit.
// Nil pointers mean "leave unchanged".
type UpdateHabitRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
	Recurrence  *string `json:"recurrence" validate:"omitempty,oneof=daily weekly"`
	Archived    *bool   `json:"archived"`
}

// CreateHabit creates a new habit for the user.
func (s *HabitService) CreateHabit(ctx context.Context, userID string, req CreateHabitRequest) (*domain.Habit, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	habitID, err := id.Generate("habit")
	if err != nil {
		return nil, fmt.Errorf("generate habit ID: %w", err)
	}

	habit := &domain.Habit{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Recurrence:  domain.Recurrence(req.Recurrence),
	}
	habit.ID = habitID
	habit.InitTimestamps()

	if err := s.store.CreateHabit(ctx, habit); err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}

	s.logger.Debug("habit created", "habit_id", habit.ID, "user_id", userID, "name", habit.Name)
	return habit, nil
}

// GetHabit returns one of the user's habits.
func (s *HabitService) GetHabit(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	habit, err := s.store.GetHabit(ctx, userID, habitID)
	if err != nil {
		if errors.Is(err, store.ErrHabitNotFound) {
			return nil, domainerrors.NotFoundf("habit %s not found", habitID)
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return habit, nil
}

// UpdateHabit applies a partial update to one of the user's habits.
func (s *HabitService) UpdateHabit(ctx context.Context, userID, habitID string, req UpdateHabitRequest) (*domain.Habit, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	habit, err := s.GetHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		habit.Name = *req.Name
	}
	if req.Description != nil {
		habit.Description = *req.Description
	}
	if req.Category != nil {
		habit.Category = *req.Category
	}
	if req.Recurrence != nil {
		habit.Recurrence = domain.Recurrence(*req.Recurrence)
	}
	if req.Archived != nil {
		habit.Archived = *req.Archived
	}
	habit.Touch()

	if err := s.store.UpdateHabit(ctx, habit); err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return habit, nil
}

// DeleteHabit removes a habit and its completion history.
func (s *HabitService) DeleteHabit(ctx context.Context, userID, habitID string) error {
	if err := s.store.DeleteHabit(ctx, userID, habitID); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

// ListHabits returns all of the user's habits.
func (s *HabitService) ListHabits(ctx context.Context, userID string) ([]*domain.Habit, error) {
	habits, err := s.store.ListHabitsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// ToggleResponse describes the outcome of a completion toggle.
type ToggleResponse struct {
	Habit       *domain.Habit         `json:"habit"`
	Date        string                `json:"date"`
	Completed   bool                  `json:"completed"`
	PointsDelta int64                 `json:"points_delta"`
	StreakBonus int64                 `json:"streak_bonus,omitempty"`
	Account     *domain.PointsAccount `json:"account,omitempty"`
}

// ToggleCompletion flips the completion state for one habit on one day and
// runs the downstream pipeline: streak recompute, points award or reversal,
// milestone bonus, challenge progress.
func (s *HabitService) ToggleCompletion(ctx context.Context, userID, habitID, date string) (*ToggleResponse, error) {
	if _, err := domain.ParseDateKey(date); err != nil {
		return nil, domainerrors.Validation("date must be in the form " + domain.DateLayout)
	}
	today := domain.DateKey(time.Now())
	if date > today {
		return nil, domainerrors.Validation("cannot toggle a completion for a future date")
	}

	habit, err := s.GetHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	if habit.Archived {
		return nil, domainerrors.InvalidTransition("habit is archived")
	}

	completed, err := s.store.ToggleCompletion(ctx, domain.NewHabitCompletion(habitID, userID, date))
	if err != nil {
		return nil, fmt.Errorf("toggle completion: %w", err)
	}

	dates, err := s.store.CompletionDatesForHabit(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("list completion dates: %w", err)
	}
	result := streak.Calculate(dates, time.Now())
	habit.RefreshDerived(dates, result.Current, result.Longest)

	// Milestone bonuses latch on RewardedStreak: pay only the first time the
	// streak reaches a milestone, so toggling a day off and back on cannot
	// re-earn it. The watermark persists with the habit in the same write as
	// the refreshed streak caches.
	var bonus int64
	if completed && result.Current > habit.RewardedStreak {
		bonus = domain.StreakBonus(result.Current)
		if bonus > 0 {
			habit.RewardedStreak = result.Current
		}
	}

	if err := s.store.UpdateHabit(ctx, habit); err != nil {
		return nil, fmt.Errorf("update habit streaks: %w", err)
	}

	delta := int64(pointsPerCompletion)
	reason := domain.ReasonHabitCompleted
	if !completed {
		delta = -pointsPerCompletion
		reason = domain.ReasonHabitUncompleted
	}
	account, err := s.points.Award(ctx, userID, delta, reason)
	if err != nil {
		return nil, err
	}

	if bonus > 0 {
		if bonusAccount, err := s.points.AwardStreakBonus(ctx, userID, result.Current); err != nil {
			return nil, err
		} else if bonusAccount != nil {
			account = bonusAccount
		}
	}

	if s.challenges != nil {
		s.challenges.HandleCompletionEvent(ctx, userID)
	}

	s.events.Emit(sse.NewCompletionToggledEvent(habit, date, completed))

	s.logger.Debug("completion toggled",
		"habit_id", habitID,
		"user_id", userID,
		"date", date,
		"completed", completed,
		"current_streak", result.Current,
	)

	return &ToggleResponse{
		Habit:       habit,
		Date:        date,
		Completed:   completed,
		PointsDelta: delta,
		StreakBonus: bonus,
		Account:     account,
	}, nil
}

// HabitStats is the derived statistics view for one habit.
type HabitStats struct {
	HabitID          string    `json:"habit_id"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	TotalCompletions int       `json:"total_completions"`
	// CompletionRate is the share of the last 30 days with a completion, 0-100.
	CompletionRate float64 `json:"completion_rate"`
	// Calendar covers the last statsWeeks ISO weeks, oldest week first,
	// each week Monday..Sunday.
	Calendar      [][7]bool `json:"calendar"`
	CalendarStart string    `json:"calendar_start"` // Day key of the first Monday in Calendar
}

// GetStats computes the statistics view for one habit.
func (s *HabitService) GetStats(ctx context.Context, userID, habitID string) (*HabitStats, error) {
	habit, err := s.GetHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	dates, err := s.store.CompletionDatesForHabit(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("list completion dates: %w", err)
	}

	completed := make(map[string]bool, len(dates))
	for _, d := range dates {
		completed[d] = true
	}

	now := time.Now()
	recent := 0
	for i := range 30 {
		if completed[domain.DateKey(now.AddDate(0, 0, -i))] {
			recent++
		}
	}

	calendarStart := domain.StartOfWeek(now).AddDate(0, 0, -7*(statsWeeks-1))
	calendar := make([][7]bool, statsWeeks)
	for w := range statsWeeks {
		for d := range 7 {
			day := calendarStart.AddDate(0, 0, w*7+d)
			calendar[w][d] = completed[domain.DateKey(day)]
		}
	}

	return &HabitStats{
		HabitID:          habit.ID,
		CurrentStreak:    habit.CurrentStreak,
		LongestStreak:    habit.LongestStreak,
		TotalCompletions: len(dates),
		CompletionRate:   float64(recent) / 30 * 100,
		Calendar:         calendar,
		CalendarStart:    domain.DateKey(calendarStart),
	}, nil
}

// HabitHit is one search result hydrated with the full habit.
type HabitHit struct {
	Habit      *domain.Habit     `json:"habit"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchResponse contains hydrated habit search results.
type SearchResponse struct {
	Query  string     `json:"query"`
	Total  uint64     `json:"total"`
	TookMs int64      `json:"took_ms"`
	Hits   []HabitHit `json:"hits"`
}

// Search runs a full-text search over the user's habits and hydrates the
// hits from the store. Hits whose habit vanished since indexing are dropped.
func (s *HabitService) Search(ctx context.Context, userID string, params search.Params) (*SearchResponse, error) {
	params.UserID = userID
	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search habits: %w", err)
	}

	hits := make([]HabitHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		habit, err := s.store.GetHabit(ctx, userID, hit.ID)
		if err != nil {
			if errors.Is(err, store.ErrHabitNotFound) {
				continue // index lags a recent delete
			}
			return nil, fmt.Errorf("hydrate search hit: %w", err)
		}
		hits = append(hits, HabitHit{
			Habit:      habit,
			Score:      hit.Score,
			Highlights: hit.Highlights,
		})
	}

	return &SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   hits,
	}, nil
}

// ReindexAll rebuilds the search index from every habit in the store.
// Called at startup so the index catches up with writes it missed.
func (s *HabitService) ReindexAll(ctx context.Context) error {
	if s.search == nil {
		return nil
	}
	var habits []*domain.Habit
	for user, err := range s.store.Users.List(ctx) {
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		userHabits, err := s.store.ListHabitsForUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("list habits for %s: %w", user.ID, err)
		}
		habits = append(habits, userHabits...)
	}
	if len(habits) == 0 {
		return nil
	}
	if err := s.search.IndexHabits(habits); err != nil {
		return fmt.Errorf("index habits: %w", err)
	}
	s.logger.Info("search index rebuilt", "habits", len(habits))
	return nil
}

// SearchDocumentCount reports how many habits the search index holds.
// Used by the health endpoint; returns zero when search is disabled.
func (s *HabitService) SearchDocumentCount() (uint64, error) {
	if s.search == nil {
		return 0, nil
	}
	return s.search.DocumentCount()
}
