package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitloop/habitloop-server/internal/domain"
	"github.com/habitloop/habitloop-server/internal/sse"
	"github.com/habitloop/habitloop-server/internal/store"
	"github.com/habitloop/habitloop-server/internal/store/sqlite"
)

// ChallengeRecorder is notified after points land so challenge progress can
// be recomputed. Wired via setter injection because the challenge service
// also awards points when a reward is claimed.
type ChallengeRecorder interface {
	HandlePointsEarned(ctx context.Context, userID string)
}

// PointsService manages the points ledger and level progression.
type PointsService struct {
	ledger   *sqlite.Store
	events   store.EventEmitter
	logger   *slog.Logger
	recorder ChallengeRecorder
}

// NewPointsService creates a new points service.
func NewPointsService(ledger *sqlite.Store, events store.EventEmitter, logger *slog.Logger) *PointsService {
	return &PointsService{
		ledger: ledger,
		events: events,
		logger: logger,
	}
}

// SetChallengeRecorder wires the challenge progress hook after construction.
func (s *PointsService) SetChallengeRecorder(recorder ChallengeRecorder) {
	s.recorder = recorder
}

// Ping verifies the ledger database is reachable. Used by the health endpoint.
func (s *PointsService) Ping(ctx context.Context) error {
	return s.ledger.Ping(ctx)
}

// Award applies a points delta to the user's account and records it in the
// ledger. The balance clamps at zero instead of going negative.
func (s *PointsService) Award(ctx context.Context, userID string, delta int64, reason domain.AwardReason) (*domain.PointsAccount, error) {
	account, err := s.ledger.Award(ctx, userID, delta, reason, time.Now())
	if err != nil {
		return nil, fmt.Errorf("award points: %w", err)
	}

	s.logger.Debug("points awarded",
		"user_id", userID,
		"delta", delta,
		"reason", reason,
		"total", account.TotalPoints,
		"level", account.Level,
	)

	s.events.Emit(sse.NewPointsUpdatedEvent(account, delta, string(reason)))

	if s.recorder != nil && delta > 0 {
		s.recorder.HandlePointsEarned(ctx, userID)
	}

	return account, nil
}

// AwardStreakBonus awards the milestone bonus for a streak reaching the given
// day count. Returns (nil, nil) when the day count carries no bonus.
func (s *PointsService) AwardStreakBonus(ctx context.Context, userID string, streakDays int) (*domain.PointsAccount, error) {
	bonus := domain.StreakBonus(streakDays)
	if bonus == 0 {
		return nil, nil
	}

	account, err := s.Award(ctx, userID, bonus, domain.ReasonStreakBonus)
	if err != nil {
		return nil, err
	}

	s.logger.Info("streak bonus awarded",
		"user_id", userID,
		"streak_days", streakDays,
		"bonus", bonus,
	)

	return account, nil
}

// GetAccount returns the user's points account. Users who have never earned
// points get a zero-value account rather than an error.
func (s *PointsService) GetAccount(ctx context.Context, userID string) (*domain.PointsAccount, error) {
	account, err := s.ledger.GetAccount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get points account: %w", err)
	}
	if account == nil {
		now := time.Now()
		account = &domain.PointsAccount{
			UserID:     userID,
			WeekStart:  domain.DateKey(domain.StartOfWeek(now)),
			MonthStart: domain.DateKey(domain.StartOfMonth(now)),
			UpdatedAt:  now,
		}
	}
	return account, nil
}

// History returns the user's most recent ledger entries, newest first.
func (s *PointsService) History(ctx context.Context, userID string, limit int) ([]*domain.PointsEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := s.ledger.ListEntries(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list points entries: %w", err)
	}
	return entries, nil
}
