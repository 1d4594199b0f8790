package stats

import (
	"sync"
	"testing"
	"time"
)

// stubClock returns a fixed time. Safe for concurrent use.
type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStubClock(t time.Time) *stubClock {
	return &stubClock{now: t}
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// fixedJan10 pins "today" to 2026-01-10.
func fixedJan10() *stubClock {
	return newStubClock(time.Date(2026, 1, 10, 14, 30, 0, 0, time.UTC))
}

func TestEligibleDays(t *testing.T) {
	calc := New(fixedJan10())

	tests := []struct {
		name string
		year int
		want int
	}{
		{"current year counts through today", 2026, 10},
		{"past year counts every day", 2025, 365},
		{"past leap year counts 366 days", 2024, 366},
		{"future year is zero", 2027, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.EligibleDays(tt.year); got != tt.want {
				t.Errorf("EligibleDays(%d) = %d, want %d", tt.year, got, tt.want)
			}
		})
	}
}

func TestCompletionRate(t *testing.T) {
	calc := New(fixedJan10())

	t.Run("no dates", func(t *testing.T) {
		if got := calc.CompletionRate(nil, 2026); got != 0 {
			t.Errorf("CompletionRate(nil, 2026) = %v, want 0", got)
		}
	})

	t.Run("future year", func(t *testing.T) {
		if got := calc.CompletionRate([]string{"2027-01-01"}, 2027); got != 0 {
			t.Errorf("CompletionRate = %v, want 0 for zero eligible days", got)
		}
	})

	t.Run("every eligible day completed", func(t *testing.T) {
		var dates []string
		for day := 1; day <= 10; day++ {
			dates = append(dates, time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
		}
		if got := calc.CompletionRate(dates, 2026); got != 100.0 {
			t.Errorf("CompletionRate = %v, want 100.0", got)
		}
	})

	t.Run("dates from other years are filtered out", func(t *testing.T) {
		dates := []string{"2025-12-31", "2026-01-01", "2026-01-02", "2027-01-01"}
		// 2 of 10 eligible days -> 20.0
		if got := calc.CompletionRate(dates, 2026); got != 20.0 {
			t.Errorf("CompletionRate = %v, want 20.0", got)
		}
	})

	t.Run("rounds to one decimal place", func(t *testing.T) {
		// 1 of 10 days in a fixed window: move clock to Jan 3 so 1/3 repeats.
		calc := New(newStubClock(time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)))
		got := calc.CompletionRate([]string{"2026-01-01"}, 2026)
		if got != 33.3 {
			t.Errorf("CompletionRate = %v, want 33.3", got)
		}
	})
}

func TestCurrentStreak(t *testing.T) {
	calc := New(fixedJan10())

	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"empty", nil, 0},
		{"three consecutive days ending today", []string{"2026-01-08", "2026-01-09", "2026-01-10"}, 3},
		{"gap before today leaves only today", []string{"2026-01-08", "2026-01-10"}, 1},
		{"yesterday anchors when today is unmarked", []string{"2026-01-07", "2026-01-08", "2026-01-09"}, 3},
		{"latest older than yesterday breaks streak", []string{"2026-01-05", "2026-01-06", "2026-01-07"}, 0},
		{"unsorted input", []string{"2026-01-10", "2026-01-08", "2026-01-09"}, 3},
		{"streak crosses a year boundary", []string{"2025-12-31", "2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04", "2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09", "2026-01-10"}, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.CurrentStreak(tt.dates); got != tt.want {
				t.Errorf("CurrentStreak(%v) = %d, want %d", tt.dates, got, tt.want)
			}
		})
	}
}

func TestForHabit(t *testing.T) {
	calc := New(fixedJan10())

	dates := []string{"2026-01-09", "2026-01-10"}
	got := calc.ForHabit("habit-1", dates, 2026)

	if got.HabitID != "habit-1" {
		t.Errorf("HabitID = %q, want habit-1", got.HabitID)
	}
	if got.CompletionRate != 20.0 {
		t.Errorf("CompletionRate = %v, want 20.0", got.CompletionRate)
	}
	if got.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", got.CurrentStreak)
	}
	if got.TotalCompletedDays != 2 {
		t.Errorf("TotalCompletedDays = %d, want 2", got.TotalCompletedDays)
	}
}

func TestNewDefaultsToSystemClock(t *testing.T) {
	calc := New(nil)
	year := time.Now().Year()
	if got := calc.EligibleDays(year + 1); got != 0 {
		t.Errorf("EligibleDays(next year) = %d, want 0", got)
	}
}
