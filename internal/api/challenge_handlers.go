package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/habitloop/habitloop-server/internal/service"
)

func (s *Server) registerChallengeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-challenges",
		Method:      http.MethodGet,
		Path:        "/api/v1/challenges",
		Summary:     "List challenges",
		Description: "Active challenges with the user's progress against each",
		Tags:        []string{"Challenges"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListChallenges)

	huma.Register(s.api, huma.Operation{
		OperationID: "claim-challenge",
		Method:      http.MethodPost,
		Path:        "/api/v1/challenges/{id}/claim",
		Summary:     "Claim challenge reward",
		Description: "Redeems the reward of a completed challenge. Each challenge pays out once.",
		Tags:        []string{"Challenges"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleClaimChallenge)
}

// === DTOs ===

// ChallengeResponse contains one challenge with the user's progress.
type ChallengeResponse struct {
	ID          string    `json:"id" doc:"Challenge ID"`
	Kind        string    `json:"kind" doc:"daily or weekly"`
	Title       string    `json:"title" doc:"Challenge title"`
	Description string    `json:"description,omitempty" doc:"Challenge description"`
	GoalType    string    `json:"goal_type" doc:"What the challenge measures"`
	Target      int       `json:"target" doc:"Goal target"`
	Category    string    `json:"category,omitempty" doc:"Category, for category goals"`
	Reward      int64     `json:"reward" doc:"Points paid on claim"`
	Progress    int       `json:"progress" doc:"Current progress"`
	Percent     float64   `json:"percent" doc:"Progress as 0-100 percentage"`
	IsCompleted bool      `json:"is_completed" doc:"Whether the target was reached"`
	IsClaimed   bool      `json:"is_claimed" doc:"Whether the reward was claimed"`
	CompletedAt time.Time `json:"completed_at,omitzero" doc:"When the target was reached"`
	ClaimedAt   time.Time `json:"claimed_at,omitzero" doc:"When the reward was claimed"`
}

// ChallengesOutput wraps the challenge list for Huma.
type ChallengesOutput struct {
	Body struct {
		Challenges []ChallengeResponse `json:"challenges" doc:"Active challenges with progress"`
	}
}

// ClaimChallengeInput identifies a challenge by path parameter.
type ClaimChallengeInput struct {
	ID string `path:"id" doc:"Challenge ID"`
}

// ClaimChallengeOutput wraps the claimed challenge for Huma.
type ClaimChallengeOutput struct {
	Body ChallengeResponse
}

// === Handlers ===

func (s *Server) handleListChallenges(ctx context.Context, _ *struct{}) (*ChallengesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := s.services.Challenge.ListProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ChallengesOutput{}
	out.Body.Challenges = make([]ChallengeResponse, 0, len(progress))
	for _, p := range progress {
		out.Body.Challenges = append(out.Body.Challenges, mapChallengeResponse(p))
	}
	return out, nil
}

func (s *Server) handleClaimChallenge(ctx context.Context, input *ClaimChallengeInput) (*ClaimChallengeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	claimed, err := s.services.Challenge.Claim(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ClaimChallengeOutput{Body: mapChallengeResponse(claimed)}, nil
}

func mapChallengeResponse(p *service.ChallengeProgress) ChallengeResponse {
	return ChallengeResponse{
		ID:          p.Challenge.ID,
		Kind:        string(p.Challenge.Kind),
		Title:       p.Challenge.Title,
		Description: p.Challenge.Description,
		GoalType:    string(p.Challenge.Goal.Type),
		Target:      p.Challenge.Goal.Target,
		Category:    p.Challenge.Goal.Category,
		Reward:      p.Challenge.Reward.Points,
		Progress:    p.State.Progress,
		Percent:     p.Percent,
		IsCompleted: p.State.IsCompleted,
		IsClaimed:   p.State.IsClaimed,
		CompletedAt: p.State.CompletedAt,
		ClaimedAt:   p.State.ClaimedAt,
	}
}
