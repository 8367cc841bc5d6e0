package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/habitloop/habitloop-server/internal/domain"
)

func (s *Server) registerInsightsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "weekly-insights",
		Method:      http.MethodGet,
		Path:        "/api/v1/insights/weekly",
		Summary:     "Weekly insights",
		Description: "Completion activity for the current week versus the previous one",
		Tags:        []string{"Insights"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleWeeklyInsights)

	huma.Register(s.api, huma.Operation{
		OperationID: "monthly-insights",
		Method:      http.MethodGet,
		Path:        "/api/v1/insights/monthly",
		Summary:     "Monthly insights",
		Description: "Completion activity for the current calendar month",
		Tags:        []string{"Insights"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMonthlyInsights)
}

// === DTOs ===

// WeeklyInsightsOutput wraps the weekly summary for Huma.
type WeeklyInsightsOutput struct {
	Body domain.WeeklyInsights
}

// MonthlyInsightsOutput wraps the monthly summary for Huma.
type MonthlyInsightsOutput struct {
	Body domain.MonthlyInsights
}

// === Handlers ===

func (s *Server) handleWeeklyInsights(ctx context.Context, _ *struct{}) (*WeeklyInsightsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	insights, err := s.services.Insights.Weekly(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}
	return &WeeklyInsightsOutput{Body: *insights}, nil
}

func (s *Server) handleMonthlyInsights(ctx context.Context, _ *struct{}) (*MonthlyInsightsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	insights, err := s.services.Insights.Monthly(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}
	return &MonthlyInsightsOutput{Body: *insights}, nil
}
