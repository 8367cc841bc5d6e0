package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/habitloop/habitloop-server/internal/domain"
	"github.com/habitloop/habitloop-server/internal/service"
)

func (s *Server) registerLeaderboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-leaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboard",
		Summary:     "Get leaderboard",
		Description: "Deterministic ranking by points, streak, then user ID",
		Tags:        []string{"Leaderboard"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetLeaderboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-leaderboard-rank",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboard/me",
		Summary:     "Get own rank",
		Description: "The requesting user's standing without the surrounding entries",
		Tags:        []string{"Leaderboard"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetLeaderboardRank)
}

// === DTOs ===

// LeaderboardInput contains leaderboard query parameters.
type LeaderboardInput struct {
	Scope  string `query:"scope" validate:"omitempty,oneof=global friends" doc:"global or friends (default global)"`
	Period string `query:"period" validate:"omitempty,oneof=all weekly monthly" doc:"Ranking period (default all)"`
	Name   string `query:"name" validate:"omitempty,max=100" doc:"Display name substring filter"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max entries (default 50)"`
}

// LeaderboardOutput wraps the ranked view for Huma.
type LeaderboardOutput struct {
	Body domain.Leaderboard
}

// LeaderboardRankInput contains own-rank query parameters.
type LeaderboardRankInput struct {
	Scope  string `query:"scope" validate:"omitempty,oneof=global friends" doc:"global or friends (default global)"`
	Period string `query:"period" validate:"omitempty,oneof=all weekly monthly" doc:"Ranking period (default all)"`
}

// LeaderboardRankOutput wraps a single standing for Huma.
type LeaderboardRankOutput struct {
	Body domain.LeaderboardRank
}

// === Handlers ===

func (s *Server) handleGetLeaderboard(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	board, err := s.services.Leaderboard.Get(ctx, userID, service.LeaderboardParams{
		Scope:     domain.Scope(input.Scope),
		Period:    domain.Period(input.Period),
		NameQuery: input.Name,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &LeaderboardOutput{Body: *board}, nil
}

func (s *Server) handleGetLeaderboardRank(ctx context.Context, input *LeaderboardRankInput) (*LeaderboardRankOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	rank, err := s.services.Leaderboard.RankOf(ctx, userID, domain.Scope(input.Scope), domain.Period(input.Period))
	if err != nil {
		return nil, err
	}
	return &LeaderboardRankOutput{Body: *rank}, nil
}
