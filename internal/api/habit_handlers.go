package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/habitloop/habitloop-server/internal/domain"
	"github.com/habitloop/habitloop-server/internal/search"
	"github.com/habitloop/habitloop-server/internal/service"
)

func (s *Server) registerHabitRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "create-habit",
		Method:      http.MethodPost,
		Path:        "/api/v1/habits",
		Summary:     "Create habit",
		Tags:        []string{"Habits"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateHabit)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-habits",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits",
		Summary:     "List habits",
		Tags:        []string{"Habits"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListHabits)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-habits",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits/search",
		Summary:     "Search habits",
		Description: "Full-text search over habit names, descriptions, and categories",
		Tags:        []string{"Habits"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchHabits)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-habit",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits/{id}",
		Summary:     "Get habit",
		Tags:        []string{"Habits"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetHabit)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-habit",
		Method:      http.MethodPatch,
		Path:        "/api/v1/habits/{id}",
		Summary:     "Update habit",
		Tags:        []string{"Habits"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateHabit)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-habit",
		Method:      http.MethodDelete,
		Path:        "/api/v1/habits/{id}",
		Summary:     "Delete habit",
		Description: "Deletes a habit together with its completion history",
		Tags:        []string{"Habits"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteHabit)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggle-completion",
		Method:      http.MethodPost,
		Path:        "/api/v1/habits/{id}/toggle",
		Summary:     "Toggle completion",
		Description: "Flips the completion state for one day and updates streaks, points, and challenges",
		Tags:        []string{"Habits"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleCompletion)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-habit-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/habits/{id}/stats",
		Summary:     "Habit statistics",
		Tags:        []string{"Habits"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetHabitStats)
}

// === DTOs ===

// HabitResponse contains one habit in API responses.
type HabitResponse struct {
	ID             string    `json:"id" doc:"Habit ID"`
	Name           string    `json:"name" doc:"Habit name"`
	Description    string    `json:"description,omitempty" doc:"Habit description"`
	Category       string    `json:"category,omitempty" doc:"Category label"`
	Recurrence     string    `json:"recurrence" doc:"daily or weekly"`
	CurrentStreak  int       `json:"current_streak" doc:"Current consecutive-day streak"`
	LongestStreak  int       `json:"longest_streak" doc:"Longest streak ever reached"`
	CompletedDates []string  `json:"completed_dates,omitempty" doc:"Completed day keys, ascending"`
	Archived       bool      `json:"archived,omitempty" doc:"Whether the habit is archived"`
	CreatedAt      time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt      time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// HabitOutput wraps a single habit for Huma.
type HabitOutput struct {
	Body HabitResponse
}

// HabitsOutput wraps a habit list for Huma.
type HabitsOutput struct {
	Body struct {
		Habits []HabitResponse `json:"habits" doc:"The user's habits"`
	}
}

// CreateHabitInput wraps the create request for Huma.
type CreateHabitInput struct {
	Body struct {
		Name        string `json:"name" validate:"required,max=100" doc:"Habit name"`
		Description string `json:"description,omitempty" validate:"omitempty,max=500" doc:"Description"`
		Category    string `json:"category,omitempty" validate:"omitempty,max=50" doc:"Category label"`
		Recurrence  string `json:"recurrence" validate:"required,oneof=daily weekly" doc:"daily or weekly"`
	}
}

// HabitIDInput identifies a habit by path parameter.
type HabitIDInput struct {
	ID string `path:"id" doc:"Habit ID"`
}

// UpdateHabitInput wraps the partial update for Huma.
type UpdateHabitInput struct {
	ID   string `path:"id" doc:"Habit ID"`
	Body struct {
		Name        *string `json:"name,omitempty" validate:"omitempty,max=100" doc:"New name"`
		Description *string `json:"description,omitempty" validate:"omitempty,max=500" doc:"New description"`
		Category    *string `json:"category,omitempty" validate:"omitempty,max=50" doc:"New category"`
		Recurrence  *string `json:"recurrence,omitempty" validate:"omitempty,oneof=daily weekly" doc:"New recurrence"`
		Archived    *bool   `json:"archived,omitempty" doc:"Archive or unarchive"`
	}
}

// ToggleInput wraps the toggle request for Huma.
type ToggleInput struct {
	ID   string `path:"id" doc:"Habit ID"`
	Body struct {
		Date string `json:"date" validate:"required,datetime=2006-01-02" doc:"Day to toggle (YYYY-MM-DD)"`
	}
}

// ToggleOutput wraps the toggle result for Huma.
type ToggleOutput struct {
	Body struct {
		Habit       HabitResponse  `json:"habit" doc:"Habit with refreshed streaks"`
		Date        string         `json:"date" doc:"Toggled day"`
		Completed   bool           `json:"completed" doc:"State after the toggle"`
		PointsDelta int64          `json:"points_delta" doc:"Points applied by this toggle"`
		StreakBonus int64          `json:"streak_bonus,omitempty" doc:"Milestone bonus, if any"`
		Account     *PointsAccount `json:"account,omitempty" doc:"Points account after the toggle"`
	}
}

// HabitStatsOutput wraps the stats view for Huma.
type HabitStatsOutput struct {
	Body service.HabitStats
}

// SearchHabitsInput contains habit search parameters.
type SearchHabitsInput struct {
	Query           string `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
	Category        string `query:"category" validate:"omitempty,max=50" doc:"Exact category filter"`
	IncludeArchived bool   `query:"include_archived" doc:"Include archived habits"`
	Limit           int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset          int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset"`
}

// SearchHabitHit is one search result.
type SearchHabitHit struct {
	Habit      HabitResponse     `json:"habit" doc:"Matching habit"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// SearchHabitsOutput wraps search results for Huma.
type SearchHabitsOutput struct {
	Body struct {
		Query  string           `json:"query" doc:"Original query"`
		Total  uint64           `json:"total" doc:"Total matches"`
		TookMs int64            `json:"took_ms" doc:"Search duration in milliseconds"`
		Hits   []SearchHabitHit `json:"hits" doc:"Search results"`
	}
}

// === Handlers ===

func (s *Server) handleCreateHabit(ctx context.Context, input *CreateHabitInput) (*HabitOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	habit, err := s.services.Habit.CreateHabit(ctx, userID, service.CreateHabitRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Category:    input.Body.Category,
		Recurrence:  input.Body.Recurrence,
	})
	if err != nil {
		return nil, err
	}
	return &HabitOutput{Body: mapHabitResponse(habit)}, nil
}

func (s *Server) handleListHabits(ctx context.Context, _ *struct{}) (*HabitsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	habits, err := s.services.Habit.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &HabitsOutput{}
	out.Body.Habits = make([]HabitResponse, 0, len(habits))
	for _, habit := range habits {
		out.Body.Habits = append(out.Body.Habits, mapHabitResponse(habit))
	}
	return out, nil
}

func (s *Server) handleGetHabit(ctx context.Context, input *HabitIDInput) (*HabitOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	habit, err := s.services.Habit.GetHabit(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &HabitOutput{Body: mapHabitResponse(habit)}, nil
}

func (s *Server) handleUpdateHabit(ctx context.Context, input *UpdateHabitInput) (*HabitOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	habit, err := s.services.Habit.UpdateHabit(ctx, userID, input.ID, service.UpdateHabitRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Category:    input.Body.Category,
		Recurrence:  input.Body.Recurrence,
		Archived:    input.Body.Archived,
	})
	if err != nil {
		return nil, err
	}
	return &HabitOutput{Body: mapHabitResponse(habit)}, nil
}

func (s *Server) handleDeleteHabit(ctx context.Context, input *HabitIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Habit.DeleteHabit(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleToggleCompletion(ctx context.Context, input *ToggleInput) (*ToggleOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Habit.ToggleCompletion(ctx, userID, input.ID, input.Body.Date)
	if err != nil {
		return nil, err
	}

	out := &ToggleOutput{}
	out.Body.Habit = mapHabitResponse(resp.Habit)
	out.Body.Date = resp.Date
	out.Body.Completed = resp.Completed
	out.Body.PointsDelta = resp.PointsDelta
	out.Body.StreakBonus = resp.StreakBonus
	if resp.Account != nil {
		account := mapPointsAccount(resp.Account)
		out.Body.Account = &account
	}
	return out, nil
}

func (s *Server) handleGetHabitStats(ctx context.Context, input *HabitIDInput) (*HabitStatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Habit.GetStats(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &HabitStatsOutput{Body: *stats}, nil
}

func (s *Server) handleSearchHabits(ctx context.Context, input *SearchHabitsInput) (*SearchHabitsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Habit.Search(ctx, userID, search.Params{
		Query:           input.Query,
		Category:        input.Category,
		IncludeArchived: input.IncludeArchived,
		Limit:           input.Limit,
		Offset:          input.Offset,
	})
	if err != nil {
		return nil, err
	}

	out := &SearchHabitsOutput{}
	out.Body.Query = result.Query
	out.Body.Total = result.Total
	out.Body.TookMs = result.TookMs
	out.Body.Hits = make([]SearchHabitHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		out.Body.Hits = append(out.Body.Hits, SearchHabitHit{
			Habit:      mapHabitResponse(hit.Habit),
			Score:      hit.Score,
			Highlights: hit.Highlights,
		})
	}
	return out, nil
}

func mapHabitResponse(habit *domain.Habit) HabitResponse {
	return HabitResponse{
		ID:             habit.ID,
		Name:           habit.Name,
		Description:    habit.Description,
		Category:       habit.Category,
		Recurrence:     string(habit.Recurrence),
		CurrentStreak:  habit.CurrentStreak,
		LongestStreak:  habit.LongestStreak,
		CompletedDates: habit.CompletedDates,
		Archived:       habit.Archived,
		CreatedAt:      habit.CreatedAt,
		UpdatedAt:      habit.UpdatedAt,
	}
}
