// Package streak computes habit streaks from sparse sets of completion days.
// It is pure computation with no I/O so the day-boundary and gap-detection
// rules can be tested in isolation.
package streak

import (
	"slices"
	"time"

	"github.com/habitloop/habitloop-server/internal/domain"
)

// Result holds the two derived streak values for one habit.
type Result struct {
	Current int
	Longest int
}

// Calculate computes current and longest streaks from an unordered set of
// completion day keys, relative to the given "today".
//
// The current streak counts consecutive days ending at today, or at yesterday
// when today has not been logged yet (the streak is still alive until a full
// day is missed). If neither today nor yesterday is present the current
// streak is 0. The longest streak is the maximum consecutive run anywhere in
// the set. Duplicate and malformed keys are ignored; an empty set yields
// {0, 0}, never an error.
func Calculate(dateKeys []string, today time.Time) Result {
	days := make(map[string]bool, len(dateKeys))
	var sorted []string
	for _, key := range dateKeys {
		if _, err := domain.ParseDateKey(key); err != nil {
			continue
		}
		if !days[key] {
			days[key] = true
			sorted = append(sorted, key)
		}
	}
	if len(sorted) == 0 {
		return Result{}
	}
	slices.Sort(sorted)

	return Result{
		Current: currentStreak(days, sorted, today),
		Longest: longestStreak(sorted),
	}
}

// currentStreak walks backward one calendar day at a time from the most
// recent completion, which must be today or yesterday for the streak to
// still be alive.
func currentStreak(days map[string]bool, sorted []string, today time.Time) int {
	day := domain.StartOfDay(today)
	todayKey := domain.DateKey(day)
	yesterdayKey := domain.DateKey(day.AddDate(0, 0, -1))

	last := sorted[len(sorted)-1]
	if last != todayKey && last != yesterdayKey {
		return 0
	}

	count := 0
	cursor, _ := domain.ParseDateKey(last)
	for days[domain.DateKey(cursor)] {
		count++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return count
}

// longestStreak scans the sorted day keys keeping a running consecutive-day
// counter: a gap of exactly one day extends the run, anything else resets it.
func longestStreak(sorted []string) int {
	longest := 1
	run := 1

	prev, _ := domain.ParseDateKey(sorted[0])
	for _, key := range sorted[1:] {
		curr, _ := domain.ParseDateKey(key)
		if curr.AddDate(0, 0, -1).Equal(prev) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = curr
	}
	return longest
}
