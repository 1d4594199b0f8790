package cache

import (
	"path/filepath"
	"testing"
	"time"

	"habitgrid/internal/models"
)

func openTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { snap.Close() })
	return snap
}

func sampleHabit(id, userID, title string) models.Habit {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return models.Habit{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Color:     "#FF6B4A",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestReplaceAndReadHabits(t *testing.T) {
	snap := openTestSnapshot(t)

	habits := []models.Habit{
		sampleHabit("h1", "u1", "Running"),
		sampleHabit("h2", "u1", "Reading"),
	}
	if err := snap.ReplaceHabits("u1", habits); err != nil {
		t.Fatalf("ReplaceHabits() error: %v", err)
	}

	got, err := snap.Habits("u1")
	if err != nil {
		t.Fatalf("Habits() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Habits() len = %d, want 2", len(got))
	}
	if got[0].Title != "Running" || got[1].Title != "Reading" {
		t.Errorf("Habits() = %+v", got)
	}

	t.Run("replace drops stale rows", func(t *testing.T) {
		if err := snap.ReplaceHabits("u1", habits[:1]); err != nil {
			t.Fatalf("ReplaceHabits() error: %v", err)
		}
		got, err := snap.Habits("u1")
		if err != nil {
			t.Fatalf("Habits() error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "h1" {
			t.Errorf("Habits() = %+v, want only h1", got)
		}
	})

	t.Run("scoped by user", func(t *testing.T) {
		got, err := snap.Habits("someone-else")
		if err != nil {
			t.Fatalf("Habits() error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Habits() for other user = %+v, want none", got)
		}
	})
}

func TestReplaceAndReadDates(t *testing.T) {
	snap := openTestSnapshot(t)

	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	dates := []models.HabitDate{
		{ID: "d2", HabitID: "h1", Date: "2026-01-02", CreatedAt: created},
		{ID: "d1", HabitID: "h1", Date: "2026-01-01", CreatedAt: created},
	}
	if err := snap.ReplaceDates("h1", dates); err != nil {
		t.Fatalf("ReplaceDates() error: %v", err)
	}

	got, err := snap.Dates("h1")
	if err != nil {
		t.Fatalf("Dates() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Dates() len = %d, want 2", len(got))
	}
	// Ordered by date regardless of insertion order.
	if got[0].Date != "2026-01-01" || got[1].Date != "2026-01-02" {
		t.Errorf("Dates() order = %q, %q", got[0].Date, got[1].Date)
	}

	if err := snap.ReplaceDates("h1", nil); err != nil {
		t.Fatalf("ReplaceDates(nil) error: %v", err)
	}
	got, err = snap.Dates("h1")
	if err != nil {
		t.Fatalf("Dates() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Dates() after clear = %+v, want none", got)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	snap, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() error: %v", err)
	}
	if err := snap.ReplaceHabits("u1", []models.Habit{sampleHabit("h1", "u1", "Running")}); err != nil {
		t.Fatalf("ReplaceHabits() error: %v", err)
	}
	snap.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() error: %v", err)
	}
	defer reopened.Close()

	habits, err := reopened.Habits("u1")
	if err != nil {
		t.Fatalf("Habits() error: %v", err)
	}
	if len(habits) != 1 {
		t.Errorf("Habits() len = %d, want 1 after reopen", len(habits))
	}
}

func TestPruneDatesDropsOrphans(t *testing.T) {
	snap := openTestSnapshot(t)

	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	habits := []models.Habit{
		sampleHabit("h1", "u1", "Running"),
		sampleHabit("h2", "u1", "Reading"),
	}
	if err := snap.ReplaceHabits("u1", habits); err != nil {
		t.Fatalf("ReplaceHabits() error: %v", err)
	}
	if err := snap.ReplaceDates("h1", []models.HabitDate{
		{ID: "d1", HabitID: "h1", Date: "2026-01-01", CreatedAt: created},
	}); err != nil {
		t.Fatalf("ReplaceDates(h1) error: %v", err)
	}
	if err := snap.ReplaceDates("h2", []models.HabitDate{
		{ID: "d2", HabitID: "h2", Date: "2026-01-02", CreatedAt: created},
	}); err != nil {
		t.Fatalf("ReplaceDates(h2) error: %v", err)
	}

	// h2 deleted remotely: the next refresh replaces the habit list without
	// it and never touches its dates.
	if err := snap.ReplaceHabits("u1", habits[:1]); err != nil {
		t.Fatalf("ReplaceHabits() error: %v", err)
	}
	if err := snap.PruneDates(); err != nil {
		t.Fatalf("PruneDates() error: %v", err)
	}

	orphans, err := snap.Dates("h2")
	if err != nil {
		t.Fatalf("Dates(h2) error: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("Dates(h2) = %+v, want none after prune", orphans)
	}

	kept, err := snap.Dates("h1")
	if err != nil {
		t.Fatalf("Dates(h1) error: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("Dates(h1) len = %d, want 1", len(kept))
	}
}
