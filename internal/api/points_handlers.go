package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/habitloop/habitloop-server/internal/domain"
)

func (s *Server) registerPointsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-points-account",
		Method:      http.MethodGet,
		Path:        "/api/v1/points",
		Summary:     "Get points account",
		Tags:        []string{"Points"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPointsAccount)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-points-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/points/history",
		Summary:     "Points history",
		Description: "Recent points ledger entries, newest first",
		Tags:        []string{"Points"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPointsHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "admin-adjust-points",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/points/adjust",
		Summary:     "Adjust points",
		Description: "Applies a manual points adjustment to any user. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminAdjustPoints)
}

// === DTOs ===

// PointsAccount contains a user's points balance in API responses.
type PointsAccount struct {
	UserID        string    `json:"user_id" doc:"Account owner"`
	TotalPoints   int64     `json:"total_points" doc:"Lifetime balance"`
	WeeklyPoints  int64     `json:"weekly_points" doc:"Points this week"`
	MonthlyPoints int64     `json:"monthly_points" doc:"Points this month"`
	Level         int       `json:"level" doc:"Level derived from total points"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last change timestamp"`
}

// PointsAccountOutput wraps the account for Huma.
type PointsAccountOutput struct {
	Body PointsAccount
}

// PointsHistoryInput contains history query parameters.
type PointsHistoryInput struct {
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=200" doc:"Max entries (default 50)"`
}

// PointsEntryResponse is one ledger entry.
type PointsEntryResponse struct {
	ID        int64     `json:"id" doc:"Entry ID"`
	Delta     int64     `json:"delta" doc:"Points applied"`
	Reason    string    `json:"reason" doc:"Why the delta was applied"`
	CreatedAt time.Time `json:"created_at" doc:"When the delta was applied"`
}

// PointsHistoryOutput wraps the ledger entries for Huma.
type PointsHistoryOutput struct {
	Body struct {
		Entries []PointsEntryResponse `json:"entries" doc:"Ledger entries, newest first"`
	}
}

// AdminAdjustPointsInput wraps a manual adjustment for Huma.
type AdminAdjustPointsInput struct {
	Body struct {
		UserID string `json:"user_id" validate:"required" doc:"Target user"`
		Delta  int64  `json:"delta" validate:"required" doc:"Points to apply (may be negative)"`
	}
}

// === Handlers ===

func (s *Server) handleGetPointsAccount(ctx context.Context, _ *struct{}) (*PointsAccountOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	account, err := s.services.Points.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PointsAccountOutput{Body: mapPointsAccount(account)}, nil
}

func (s *Server) handleGetPointsHistory(ctx context.Context, input *PointsHistoryInput) (*PointsHistoryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Points.History(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &PointsHistoryOutput{}
	out.Body.Entries = make([]PointsEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out.Body.Entries = append(out.Body.Entries, PointsEntryResponse{
			ID:        entry.ID,
			Delta:     entry.Delta,
			Reason:    string(entry.Reason),
			CreatedAt: entry.CreatedAt,
		})
	}
	return out, nil
}

func (s *Server) handleAdminAdjustPoints(ctx context.Context, input *AdminAdjustPointsInput) (*PointsAccountOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	account, err := s.services.Points.Award(ctx, input.Body.UserID, input.Body.Delta, domain.ReasonManualAdjustment)
	if err != nil {
		return nil, err
	}
	return &PointsAccountOutput{Body: mapPointsAccount(account)}, nil
}

func mapPointsAccount(account *domain.PointsAccount) PointsAccount {
	return PointsAccount{
		UserID:        account.UserID,
		TotalPoints:   account.TotalPoints,
		WeeklyPoints:  account.WeeklyPoints,
		MonthlyPoints: account.MonthlyPoints,
		Level:         account.Level,
		UpdatedAt:     account.UpdatedAt,
	}
}
