package streak

import (
	"testing"
	"time"

	"github.com/habitloop/habitloop-server/internal/domain"
	"github.com/stretchr/testify/assert"
)

// A fixed Thursday keeps every case deterministic.
var thursday = time.Date(2026, 3, 12, 15, 30, 0, 0, time.Local)

func keys(days ...time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = domain.DateKey(d)
	}
	return out
}

func daysAgo(n int) time.Time {
	return thursday.AddDate(0, 0, -n)
}

func TestCalculate_Empty(t *testing.T) {
	result := Calculate(nil, thursday)
	assert.Equal(t, 0, result.Current)
	assert.Equal(t, 0, result.Longest)
}

func TestCalculate_SingleDateToday(t *testing.T) {
	result := Calculate(keys(thursday), thursday)
	assert.Equal(t, 1, result.Current)
	assert.Equal(t, 1, result.Longest)
}

func TestCalculate_SingleDateYesterday(t *testing.T) {
	// Today not yet logged: the streak is still alive.
	result := Calculate(keys(daysAgo(1)), thursday)
	assert.Equal(t, 1, result.Current)
	assert.Equal(t, 1, result.Longest)
}

func TestCalculate_SingleStaleDate(t *testing.T) {
	result := Calculate(keys(daysAgo(2)), thursday)
	assert.Equal(t, 0, result.Current)
	assert.Equal(t, 1, result.Longest)
}

func TestCalculate_MonTueWed_TodayThursday(t *testing.T) {
	// Mon, Tue, Wed completed, nothing today: yesterday is present so the
	// run is alive and counts 3.
	result := Calculate(keys(daysAgo(3), daysAgo(2), daysAgo(1)), thursday)
	assert.Equal(t, 3, result.Current)
	assert.Equal(t, 3, result.Longest)
}

func TestCalculate_MonThroughThursday(t *testing.T) {
	result := Calculate(keys(daysAgo(3), daysAgo(2), daysAgo(1), thursday), thursday)
	assert.Equal(t, 4, result.Current)
	assert.Equal(t, 4, result.Longest)
}

func TestCalculate_MissedYesterdayKillsStreak(t *testing.T) {
	// Mon, Tue, Wed completed but today is Friday: both Thursday and Friday
	// are missing, so the streak is dead.
	friday := thursday.AddDate(0, 0, 1)
	result := Calculate(keys(daysAgo(3), daysAgo(2), daysAgo(1)), friday)
	assert.Equal(t, 0, result.Current)
	assert.Equal(t, 3, result.Longest)
}

func TestCalculate_GapResetsLongestRun(t *testing.T) {
	// Five-day run, two-day gap, then a two-day run ending today.
	dates := keys(
		daysAgo(8), daysAgo(7), daysAgo(6), daysAgo(5), daysAgo(4),
		daysAgo(1), thursday,
	)
	result := Calculate(dates, thursday)
	assert.Equal(t, 2, result.Current)
	assert.Equal(t, 5, result.Longest)
}

func TestCalculate_UnorderedAndDuplicateInput(t *testing.T) {
	dates := keys(thursday, daysAgo(2), daysAgo(1), daysAgo(1), thursday)
	result := Calculate(dates, thursday)
	assert.Equal(t, 3, result.Current)
	assert.Equal(t, 3, result.Longest)
}

func TestCalculate_MalformedKeysIgnored(t *testing.T) {
	dates := append(keys(thursday, daysAgo(1)), "not-a-date", "")
	result := Calculate(dates, thursday)
	assert.Equal(t, 2, result.Current)
	assert.Equal(t, 2, result.Longest)
}

func TestCalculate_LongestNeverBelowCurrent(t *testing.T) {
	cases := [][]string{
		nil,
		keys(thursday),
		keys(daysAgo(1)),
		keys(daysAgo(9), daysAgo(1), thursday),
		keys(daysAgo(30), daysAgo(29), daysAgo(28), thursday),
	}
	for _, dates := range cases {
		result := Calculate(dates, thursday)
		assert.GreaterOrEqual(t, result.Longest, result.Current, "dates: %v", dates)
	}
}
