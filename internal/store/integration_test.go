package store

import (
	"os"
	"testing"

	"habitgrid/internal/errors"
	"habitgrid/internal/models"

	"github.com/google/uuid"
)

// TestClient_Integration exercises the client against a real database.
// Set HABITGRID_TEST_DB to run, e.g.
// HABITGRID_TEST_DB="postgres://habitgrid@localhost:5432/habitgrid_test?sslmode=disable"
func TestClient_Integration(t *testing.T) {
	connStr := os.Getenv("HABITGRID_TEST_DB")
	if connStr == "" {
		t.Skip("HABITGRID_TEST_DB not set, skipping PostgreSQL integration test")
	}

	client := New(connStr)
	if err := client.Init(nil); err != nil {
		t.Fatalf("Failed to initialize client: %v", err)
	}
	defer client.Close()

	userID := uuid.New().String()

	habit, err := client.CreateHabit(userID, "Integration habit", "#3B82F6")
	if err != nil {
		t.Fatalf("CreateHabit() error: %v", err)
	}
	defer client.DeleteHabit(userID, habit.ID)

	t.Run("list includes created habit", func(t *testing.T) {
		habits, err := client.ListHabits(userID)
		if err != nil {
			t.Fatalf("ListHabits() error: %v", err)
		}
		if len(habits) != 1 || habits[0].ID != habit.ID {
			t.Errorf("ListHabits() = %+v, want single habit %s", habits, habit.ID)
		}
	})

	t.Run("partial update", func(t *testing.T) {
		title := "Renamed habit"
		updated, err := client.UpdateHabit(userID, habit.ID, models.HabitUpdate{Title: &title})
		if err != nil {
			t.Fatalf("UpdateHabit() error: %v", err)
		}
		if updated.Title != title {
			t.Errorf("Title = %q, want %q", updated.Title, title)
		}
		if updated.Color != habit.Color {
			t.Errorf("Color changed on title-only update: %q", updated.Color)
		}
		if !updated.UpdatedAt.After(habit.UpdatedAt) {
			t.Error("UpdatedAt was not advanced")
		}
	})

	t.Run("toggle date", func(t *testing.T) {
		d, err := client.InsertDate(habit.ID, "2026-01-10")
		if err != nil {
			t.Fatalf("InsertDate() error: %v", err)
		}
		if d.Date != "2026-01-10" {
			t.Errorf("Date = %q, want 2026-01-10", d.Date)
		}

		dates, err := client.ListDates(habit.ID)
		if err != nil {
			t.Fatalf("ListDates() error: %v", err)
		}
		if len(dates) != 1 {
			t.Fatalf("ListDates() len = %d, want 1", len(dates))
		}

		if err := client.DeleteDate(d.ID); err != nil {
			t.Fatalf("DeleteDate() error: %v", err)
		}
		if err := client.DeleteDate(d.ID); !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("second DeleteDate() = %v, want ErrNotFound", err)
		}
	})

	t.Run("bulk insert skips existing", func(t *testing.T) {
		if _, err := client.InsertDate(habit.ID, "2026-02-01"); err != nil {
			t.Fatalf("InsertDate() error: %v", err)
		}

		inserted, err := client.InsertDates(habit.ID, []string{"2026-02-01", "2026-02-02", "2026-02-03"})
		if err != nil {
			t.Fatalf("InsertDates() error: %v", err)
		}
		if len(inserted) != 2 {
			t.Errorf("InsertDates() len = %d, want 2 (existing date skipped)", len(inserted))
		}

		dates, err := client.ListDates(habit.ID)
		if err != nil {
			t.Fatalf("ListDates() error: %v", err)
		}
		ids := make([]string, 0, len(dates))
		for _, d := range dates {
			ids = append(ids, d.ID)
		}
		if err := client.DeleteDates(ids); err != nil {
			t.Fatalf("DeleteDates() error: %v", err)
		}
	})

	t.Run("grouped multi-habit fetch", func(t *testing.T) {
		other, err := client.CreateHabit(userID, "Second habit", "#10B981")
		if err != nil {
			t.Fatalf("CreateHabit() error: %v", err)
		}
		defer client.DeleteHabit(userID, other.ID)

		if _, err := client.InsertDate(other.ID, "2026-03-01"); err != nil {
			t.Fatalf("InsertDate() error: %v", err)
		}

		grouped, err := client.ListDatesForHabits([]string{habit.ID, other.ID})
		if err != nil {
			t.Fatalf("ListDatesForHabits() error: %v", err)
		}
		if len(grouped) != 2 {
			t.Fatalf("grouped len = %d, want 2", len(grouped))
		}
		if len(grouped[other.ID]) != 1 {
			t.Errorf("dates for second habit = %d, want 1", len(grouped[other.ID]))
		}
		if grouped[habit.ID] == nil {
			t.Error("habit with no dates should map to an empty slice, not nil")
		}
	})
}
