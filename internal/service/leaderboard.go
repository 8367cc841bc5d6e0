package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/habitloop/habitloop-server/internal/domain"
	domainerrors "github.com/habitloop/habitloop-server/internal/errors"
	"github.com/habitloop/habitloop-server/internal/store"
	"github.com/habitloop/habitloop-server/internal/store/sqlite"
)

// LeaderboardService builds ranked views over points accounts and streaks.
//
// The leaderboard is a read-time projection: nothing about ranks is ever
// persisted, so two requests over the same data always produce the same
// ordering.
type LeaderboardService struct {
	store  *store.Store
	ledger *sqlite.Store
	logger *slog.Logger
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(st *store.Store, ledger *sqlite.Store, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{store: st, ledger: ledger, logger: logger}
}

// LeaderboardParams selects the scope and shape of a leaderboard view.
type LeaderboardParams struct {
	Scope  domain.Scope
	Period domain.Period
	// NameQuery filters entries by case-insensitive display-name substring.
	NameQuery string
	Limit     int
}

// Get builds the leaderboard for the requesting user.
func (s *LeaderboardService) Get(ctx context.Context, userID string, params LeaderboardParams) (*domain.Leaderboard, error) {
	if params.Scope == "" {
		params.Scope = domain.ScopeGlobal
	}
	if !params.Scope.Valid() {
		return nil, domainerrors.Validationf("unknown leaderboard scope %q", params.Scope)
	}
	if params.Period == "" {
		params.Period = domain.PeriodAllTime
	}
	if !params.Period.Valid() {
		return nil, domainerrors.Validationf("unknown leaderboard period %q", params.Period)
	}
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}

	entries, err := s.rankedEntries(ctx, userID, params.Scope, params.Period, params.NameQuery)
	if err != nil {
		return nil, err
	}

	total := len(entries)
	if len(entries) > params.Limit {
		entries = entries[:params.Limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return &domain.Leaderboard{
		Scope:      params.Scope,
		Period:     params.Period,
		Entries:    entries,
		TotalUsers: total,
	}, nil
}

// RankOf returns only the requesting user's standing. The rank is one plus
// the number of entries strictly ahead in the deterministic order, computed
// over the whole scope regardless of any page limit.
func (s *LeaderboardService) RankOf(ctx context.Context, userID string, scope domain.Scope, period domain.Period) (*domain.LeaderboardRank, error) {
	if scope == "" {
		scope = domain.ScopeGlobal
	}
	if !scope.Valid() {
		return nil, domainerrors.Validationf("unknown leaderboard scope %q", scope)
	}
	if period == "" {
		period = domain.PeriodAllTime
	}
	if !period.Valid() {
		return nil, domainerrors.Validationf("unknown leaderboard period %q", period)
	}

	entries, err := s.rankedEntries(ctx, userID, scope, period, "")
	if err != nil {
		return nil, err
	}

	for i, entry := range entries {
		if entry.UserID != userID {
			continue
		}
		entry.Rank = i + 1
		return &domain.LeaderboardRank{
			Scope:      scope,
			Period:     period,
			Entry:      entry,
			TotalUsers: len(entries),
		}, nil
	}

	return nil, domainerrors.NotFoundf("user %s not found", userID)
}

// rankedEntries builds the sorted entry list for one scope and period.
func (s *LeaderboardService) rankedEntries(ctx context.Context, userID string, scope domain.Scope, period domain.Period, nameQuery string) ([]domain.LeaderboardEntry, error) {
	users, err := s.scopedUsers(ctx, userID, scope)
	if err != nil {
		return nil, err
	}

	accounts, err := s.ledger.GetAllAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load points accounts: %w", err)
	}
	accountByUser := make(map[string]*domain.PointsAccount, len(accounts))
	for _, account := range accounts {
		accountByUser[account.UserID] = account
	}

	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, user := range users {
		if nameQuery != "" &&
			!strings.Contains(strings.ToLower(user.DisplayName), strings.ToLower(nameQuery)) {
			continue
		}

		var points int64
		var level int
		if account := accountByUser[user.ID]; account != nil {
			points = account.PointsForPeriod(period)
			level = account.Level
		}

		streak, err := s.bestStreak(ctx, user.ID)
		if err != nil {
			return nil, err
		}

		entries = append(entries, domain.LeaderboardEntry{
			UserID:        user.ID,
			DisplayName:   user.Name(),
			AvatarColor:   user.AvatarColor,
			Points:        points,
			Streak:        streak,
			Level:         level,
			IsCurrentUser: user.ID == userID,
		})
	}

	// Deterministic order: points, then streak, then user ID as the
	// tiebreaker so equal scores never shuffle between requests.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if entries[i].Streak != entries[j].Streak {
			return entries[i].Streak > entries[j].Streak
		}
		return entries[i].UserID < entries[j].UserID
	})

	return entries, nil
}

// scopedUsers returns the users the leaderboard ranks for the given scope.
func (s *LeaderboardService) scopedUsers(ctx context.Context, userID string, scope domain.Scope) ([]*domain.User, error) {
	if scope == domain.ScopeFriends {
		current, err := s.store.Users.Get(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		users := []*domain.User{current}
		for _, friendID := range current.FriendIDs {
			friend, err := s.store.Users.Get(ctx, friendID)
			if err != nil {
				continue // deleted friends drop out of the ranking
			}
			users = append(users, friend)
		}
		return users, nil
	}

	var users []*domain.User
	for user, err := range s.store.Users.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *LeaderboardService) bestStreak(ctx context.Context, userID string) (int, error) {
	habits, err := s.store.ListHabitsForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list habits: %w", err)
	}
	best := 0
	for _, habit := range habits {
		best = max(best, habit.CurrentStreak)
	}
	return best, nil
}
