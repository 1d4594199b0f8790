// Package stats computes habit statistics over completed-date strings:
// completion rate against eligible days and the current streak.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"habitgrid/internal/constants"
)

// HabitStats aggregates the per-habit numbers shown in the stats panel.
type HabitStats struct {
	HabitID           string
	CompletionRate    float64
	CurrentStreak     int
	TotalCompletedDays int
}

// Calculator evaluates statistics against an injected clock.
type Calculator struct {
	clock Clock
}

// New returns a Calculator using the given clock. A nil clock falls back to
// the system clock.
func New(clock Clock) *Calculator {
	if clock == nil {
		clock = RealClock{}
	}
	return &Calculator{clock: clock}
}

// EligibleDays returns the completion-rate denominator for a year: the full
// day count for past years, Jan 1 through today inclusive for the current
// year, and zero for future years.
func (c *Calculator) EligibleDays(year int) int {
	today := c.today()
	currentYear := today.Year()

	if year > currentYear {
		return 0
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if year == currentYear {
		end = today
	}

	return int(end.Sub(start).Hours()/24) + 1
}

// CompletionRate returns the percentage of eligible days in the given year
// covered by dates, rounded to one decimal place. Dates outside the year
// are ignored; a zero denominator yields 0.
func (c *Calculator) CompletionRate(dates []string, year int) float64 {
	eligible := c.EligibleDays(year)
	if eligible == 0 {
		return 0
	}

	yearPrefix := strconv.Itoa(year) + "-"
	completed := 0
	for _, d := range dates {
		if strings.HasPrefix(d, yearPrefix) {
			completed++
		}
	}

	rate := float64(completed) / float64(eligible) * 100
	return math.Round(rate*10) / 10
}

// CurrentStreak counts consecutive completed days ending at today or
// yesterday. A most recent completion older than yesterday breaks the
// streak; today not yet being marked does not, since yesterday still
// anchors it.
func (c *Calculator) CurrentStreak(dates []string) int {
	if len(dates) == 0 {
		return 0
	}

	sorted := make([]string, len(dates))
	copy(sorted, dates)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	today := c.today()
	yesterday := today.AddDate(0, 0, -1)

	todayStr := today.Format(constants.DateFormat)
	yesterdayStr := yesterday.Format(constants.DateFormat)

	anchor := today
	switch sorted[0] {
	case todayStr:
	case yesterdayStr:
		anchor = yesterday
	default:
		return 0
	}

	dateSet := make(map[string]struct{}, len(sorted))
	for _, d := range sorted {
		dateSet[d] = struct{}{}
	}

	streak := 0
	for cur := anchor; ; cur = cur.AddDate(0, 0, -1) {
		if _, ok := dateSet[cur.Format(constants.DateFormat)]; !ok {
			break
		}
		streak++
	}

	return streak
}

// ForHabit bundles the stats for one habit's dates in a given year.
func (c *Calculator) ForHabit(habitID string, dates []string, year int) HabitStats {
	return HabitStats{
		HabitID:           habitID,
		CompletionRate:    c.CompletionRate(dates, year),
		CurrentStreak:     c.CurrentStreak(dates),
		TotalCompletedDays: len(dates),
	}
}

// today returns the clock's date truncated to midnight UTC, so day
// arithmetic is unaffected by the time of day or DST transitions.
func (c *Calculator) today() time.Time {
	now := c.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
