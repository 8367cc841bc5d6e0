package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/habitloop/habitloop-server/internal/catalog"
	"github.com/habitloop/habitloop-server/internal/domain"
	domainerrors "github.com/habitloop/habitloop-server/internal/errors"
	"github.com/habitloop/habitloop-server/internal/sse"
	"github.com/habitloop/habitloop-server/internal/store"
	"github.com/habitloop/habitloop-server/internal/store/sqlite"
)

// ChallengeService evaluates challenge progress and handles reward claims.
//
// Progress is recomputed from the authoritative sources (completion ledger,
// habit streaks, points ledger) on every qualifying event, never incremented
// blindly, so a missed event cannot leave progress permanently wrong.
type ChallengeService struct {
	store   *store.Store
	catalog *catalog.Catalog
	ledger  *sqlite.Store
	points  *PointsService
	events  store.EventEmitter
	logger  *slog.Logger
}

// NewChallengeService creates a new challenge service.
func NewChallengeService(st *store.Store, cat *catalog.Catalog, ledger *sqlite.Store, points *PointsService, events store.EventEmitter, logger *slog.Logger) *ChallengeService {
	return &ChallengeService{
		store:   st,
		catalog: cat,
		ledger:  ledger,
		points:  points,
		events:  events,
		logger:  logger,
	}
}

// ChallengeProgress pairs a challenge definition with one user's state.
type ChallengeProgress struct {
	Challenge *domain.Challenge          `json:"challenge"`
	State     *domain.UserChallengeState `json:"state"`
	Percent   float64                    `json:"percent"`
}

// ListProgress returns the user's progress against every currently active
// challenge. Challenges the user has not touched yet report zero progress.
func (s *ChallengeService) ListProgress(ctx context.Context, userID string) ([]*ChallengeProgress, error) {
	now := time.Now()
	active := s.catalog.Active(now)

	result := make([]*ChallengeProgress, 0, len(active))
	for _, ch := range active {
		state, err := s.store.GetChallengeState(ctx, userID, ch.ID)
		if err != nil {
			if !errors.Is(err, store.ErrChallengeStateNotFound) {
				return nil, fmt.Errorf("get challenge state: %w", err)
			}
			state = &domain.UserChallengeState{
				UserID:      userID,
				ChallengeID: ch.ID,
				UpdatedAt:   now,
			}
		}
		result = append(result, &ChallengeProgress{
			Challenge: ch,
			State:     state,
			Percent:   state.PercentComplete(ch.Goal),
		})
	}
	return result, nil
}

// Recompute re-evaluates the user's progress on every active challenge and
// persists any changes. Emits a completion event for each challenge whose
// latch fires during this pass.
func (s *ChallengeService) Recompute(ctx context.Context, userID string) error {
	now := time.Now()
	for _, ch := range s.catalog.Active(now) {
		value, err := s.progressValue(ctx, userID, ch, now)
		if err != nil {
			return fmt.Errorf("compute progress for %s: %w", ch.ID, err)
		}

		state, justCompleted, err := s.store.ApplyChallengeProgress(ctx, userID, ch.ID, ch.Goal, value)
		if err != nil {
			return fmt.Errorf("apply progress for %s: %w", ch.ID, err)
		}

		if justCompleted {
			s.logger.Info("challenge completed",
				"user_id", userID,
				"challenge_id", ch.ID,
				"progress", state.Progress,
			)
			s.events.Emit(sse.NewChallengeCompletedEvent(ch, state))
		}
	}
	return nil
}

// progressValue measures the user's current standing against one challenge
// goal, scoped to the challenge's measurement window.
func (s *ChallengeService) progressValue(ctx context.Context, userID string, ch *domain.Challenge, now time.Time) (int, error) {
	windowStart := ch.WindowStart(now)

	switch ch.Goal.Type {
	case domain.GoalCompleteHabits:
		return s.countCompletions(ctx, userID, windowStart, "")
	case domain.GoalCompleteCategory:
		return s.countCompletions(ctx, userID, windowStart, ch.Goal.Category)
	case domain.GoalMaintainStreak:
		return s.bestCurrentStreak(ctx, userID)
	case domain.GoalEarnPoints:
		earned, err := s.ledger.SumEarnedSince(ctx, userID, windowStart, now)
		if err != nil {
			return 0, err
		}
		return int(earned), nil
	default:
		return 0, fmt.Errorf("unknown goal type %q", ch.Goal.Type)
	}
}

// countCompletions counts the user's completions on or after the window
// start, optionally restricted to habits in one category.
func (s *ChallengeService) countCompletions(ctx context.Context, userID string, windowStart time.Time, category string) (int, error) {
	habits, err := s.store.ListHabitsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	startKey := domain.DateKey(windowStart)
	count := 0
	for _, habit := range habits {
		if category != "" && !strings.EqualFold(habit.Category, category) {
			continue
		}
		dates, err := s.store.CompletionDatesForHabit(ctx, habit.ID)
		if err != nil {
			return 0, err
		}
		for _, date := range dates {
			if date >= startKey {
				count++
			}
		}
	}
	return count, nil
}

// bestCurrentStreak returns the longest live streak across the user's habits.
func (s *ChallengeService) bestCurrentStreak(ctx context.Context, userID string) (int, error) {
	habits, err := s.store.ListHabitsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	best := 0
	for _, habit := range habits {
		best = max(best, habit.CurrentStreak)
	}
	return best, nil
}

// Claim redeems a completed challenge's reward. The state transition and the
// points award are sequenced so a duplicate claim can never double-pay: the
// store flips the claimed flag atomically before any points move.
func (s *ChallengeService) Claim(ctx context.Context, userID, challengeID string) (*ChallengeProgress, error) {
	ch := s.catalog.Get(challengeID)
	if ch == nil {
		return nil, domainerrors.NotFoundf("challenge %s not found", challengeID)
	}

	state, err := s.store.ClaimChallengeState(ctx, userID, challengeID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrChallengeStateNotFound):
			return nil, domainerrors.NotFound("no progress recorded for this challenge")
		case errors.Is(err, store.ErrChallengeNotCompleted):
			return nil, domainerrors.InvalidTransition("challenge is not completed yet")
		case errors.Is(err, store.ErrChallengeAlreadyClaimed):
			return nil, domainerrors.InvalidTransition("challenge reward already claimed")
		default:
			return nil, fmt.Errorf("claim challenge: %w", err)
		}
	}

	if ch.Reward.Points > 0 {
		if _, err := s.points.Award(ctx, userID, ch.Reward.Points, domain.ReasonChallengeReward); err != nil {
			// The claim already committed; the reward must not be lost.
			s.logger.Error("challenge claimed but reward award failed",
				"user_id", userID,
				"challenge_id", challengeID,
				"points", ch.Reward.Points,
				"error", err,
			)
			return nil, fmt.Errorf("award challenge reward: %w", err)
		}
	}

	s.logger.Info("challenge reward claimed",
		"user_id", userID,
		"challenge_id", challengeID,
		"points", ch.Reward.Points,
	)
	s.events.Emit(sse.NewChallengeClaimedEvent(ch, state))

	return &ChallengeProgress{
		Challenge: ch,
		State:     state,
		Percent:   state.PercentComplete(ch.Goal),
	}, nil
}

// HandleCompletionEvent recomputes challenge progress after a completion
// toggle. Failures are logged, not surfaced: challenge bookkeeping must not
// fail the toggle that triggered it.
func (s *ChallengeService) HandleCompletionEvent(ctx context.Context, userID string) {
	if err := s.Recompute(ctx, userID); err != nil {
		s.logger.Warn("challenge recompute after completion failed", "user_id", userID, "error", err)
	}
}

// HandlePointsEarned implements ChallengeRecorder.
func (s *ChallengeService) HandlePointsEarned(ctx context.Context, userID string) {
	if err := s.Recompute(ctx, userID); err != nil {
		s.logger.Warn("challenge recompute after points failed", "user_id", userID, "error", err)
	}
}
