package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/habitloop/habitloop-server/internal/domain"
)

func TestAward_AccumulatesAndLevels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 12, 10, 0, 0, 0, time.Local)

	account, err := s.Award(ctx, "user_abc", 60, domain.ReasonHabitCompleted, now)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if account.TotalPoints != 60 || account.Level != 0 {
		t.Errorf("expected total=60 level=0, got total=%d level=%d", account.TotalPoints, account.Level)
	}

	account, err = s.Award(ctx, "user_abc", 50, domain.ReasonStreakBonus, now)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if account.TotalPoints != 110 || account.Level != 1 {
		t.Errorf("expected total=110 level=1, got total=%d level=%d", account.TotalPoints, account.Level)
	}
	if account.WeeklyPoints != 110 || account.MonthlyPoints != 110 {
		t.Errorf("expected weekly=monthly=110, got weekly=%d monthly=%d", account.WeeklyPoints, account.MonthlyPoints)
	}
}

func TestAward_ClampsAtZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 12, 10, 0, 0, 0, time.Local)

	if _, err := s.Award(ctx, "user_abc", 100, domain.ReasonHabitCompleted, now); err != nil {
		t.Fatalf("award: %v", err)
	}

	account, err := s.Award(ctx, "user_abc", -150, domain.ReasonHabitUncompleted, now)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if account.TotalPoints != 0 {
		t.Errorf("expected total clamped to 0, got %d", account.TotalPoints)
	}
	if account.WeeklyPoints != 0 || account.MonthlyPoints != 0 {
		t.Errorf("expected period counters clamped to 0, got weekly=%d monthly=%d",
			account.WeeklyPoints, account.MonthlyPoints)
	}
	if account.Level != 0 {
		t.Errorf("expected level 0, got %d", account.Level)
	}
}

func TestAward_PeriodRollover(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Award in one week, then again the following week.
	week1 := time.Date(2026, 3, 12, 10, 0, 0, 0, time.Local) // Thursday
	week2 := time.Date(2026, 3, 16, 10, 0, 0, 0, time.Local) // Next Monday

	if _, err := s.Award(ctx, "user_abc", 80, domain.ReasonHabitCompleted, week1); err != nil {
		t.Fatalf("award: %v", err)
	}

	account, err := s.Award(ctx, "user_abc", 10, domain.ReasonHabitCompleted, week2)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if account.WeeklyPoints != 10 {
		t.Errorf("expected weekly counter reset to 10, got %d", account.WeeklyPoints)
	}
	if account.TotalPoints != 90 {
		t.Errorf("expected total 90, got %d", account.TotalPoints)
	}
	if account.WeekStart != domain.DateKey(domain.StartOfWeek(week2)) {
		t.Errorf("expected week_start %s, got %s", domain.DateKey(domain.StartOfWeek(week2)), account.WeekStart)
	}

	// Month boundary behaves the same way.
	nextMonth := time.Date(2026, 4, 2, 10, 0, 0, 0, time.Local)
	account, err = s.Award(ctx, "user_abc", 5, domain.ReasonHabitCompleted, nextMonth)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if account.MonthlyPoints != 5 {
		t.Errorf("expected monthly counter reset to 5, got %d", account.MonthlyPoints)
	}
	if account.TotalPoints != 95 {
		t.Errorf("expected total 95, got %d", account.TotalPoints)
	}
}

func TestAward_ConcurrentAwardsDontLoseUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	const workers = 10
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Award(ctx, "user_abc", 10, domain.ReasonHabitCompleted, now); err != nil {
				t.Errorf("award: %v", err)
			}
		}()
	}
	wg.Wait()

	account, err := s.GetAccount(ctx, "user_abc")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if account.TotalPoints != workers*10 {
		t.Errorf("expected total %d, got %d", workers*10, account.TotalPoints)
	}
}

func TestGetAccount_MissingReturnsNil(t *testing.T) {
	s := newTestStore(t)

	account, err := s.GetAccount(context.Background(), "user_nobody")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if account != nil {
		t.Errorf("expected nil account, got %+v", account)
	}
}

func TestSumEarnedSince_IgnoresNegativeDeltas(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 12, 10, 0, 0, 0, time.Local)

	if _, err := s.Award(ctx, "user_abc", 50, domain.ReasonHabitCompleted, base); err != nil {
		t.Fatalf("award: %v", err)
	}
	if _, err := s.Award(ctx, "user_abc", -10, domain.ReasonHabitUncompleted, base.Add(time.Minute)); err != nil {
		t.Fatalf("award: %v", err)
	}
	if _, err := s.Award(ctx, "user_abc", 30, domain.ReasonStreakBonus, base.Add(2*time.Minute)); err != nil {
		t.Fatalf("award: %v", err)
	}
	// Outside the window.
	if _, err := s.Award(ctx, "user_abc", 500, domain.ReasonChallengeReward, base.Add(-time.Hour)); err != nil {
		t.Fatalf("award: %v", err)
	}

	sum, err := s.SumEarnedSince(ctx, "user_abc", base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("sum earned: %v", err)
	}
	if sum != 80 {
		t.Errorf("expected earned sum 80, got %d", sum)
	}
}

func TestSumEarnedSince_WindowBoundaries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Window starts land on whole seconds while ledger entries carry
	// fractional timestamps. Both must compare correctly as stored strings.
	start := domain.StartOfDay(time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC))
	end := start.Add(24 * time.Hour)

	// First fraction of a second inside the window.
	if _, err := s.Award(ctx, "user_abc", 10, domain.ReasonHabitCompleted, start.Add(500*time.Millisecond)); err != nil {
		t.Fatalf("award: %v", err)
	}
	// Exactly on the inclusive lower bound.
	if _, err := s.Award(ctx, "user_abc", 20, domain.ReasonHabitCompleted, start); err != nil {
		t.Fatalf("award: %v", err)
	}
	// Exactly on the exclusive upper bound.
	if _, err := s.Award(ctx, "user_abc", 40, domain.ReasonHabitCompleted, end); err != nil {
		t.Fatalf("award: %v", err)
	}

	sum, err := s.SumEarnedSince(ctx, "user_abc", start, end)
	if err != nil {
		t.Fatalf("sum earned: %v", err)
	}
	if sum != 30 {
		t.Errorf("expected earned sum 30, got %d", sum)
	}
}

func TestFormatTime_SortsChronologically(t *testing.T) {
	whole := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	fractional := whole.Add(500 * time.Millisecond)

	if formatTime(whole) >= formatTime(fractional) {
		t.Errorf("expected %q < %q", formatTime(whole), formatTime(fractional))
	}

	parsed, err := parseTime(formatTime(fractional))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(fractional) {
		t.Errorf("expected round-trip to %v, got %v", fractional, parsed)
	}
}

func TestListEntries_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for _, delta := range []int64{10, 20, 30} {
		if _, err := s.Award(ctx, "user_abc", delta, domain.ReasonHabitCompleted, now); err != nil {
			t.Fatalf("award: %v", err)
		}
	}

	entries, err := s.ListEntries(ctx, "user_abc", 2)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Delta != 30 || entries[1].Delta != 20 {
		t.Errorf("expected newest first (30, 20), got (%d, %d)", entries[0].Delta, entries[1].Delta)
	}
}
