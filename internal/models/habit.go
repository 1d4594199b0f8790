package models

import "time"

// Habit is a user-defined tracked behavior. The remote store is the source
// of truth; feeds hold a mirrored copy keyed by ID.
type Habit struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HabitDate records that a habit was completed on a calendar date.
// At most one row exists per (habit, date) pair.
type HabitDate struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
}

// HabitUpdate is a partial habit mutation. Nil fields are left unchanged.
type HabitUpdate struct {
	Title *string
	Color *string
}

// LegacyHabit is the shape persisted by the local-only version of the app,
// read once during migration to the remote store.
type LegacyHabit struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	SelectedDates []string `json:"selectedDates"`
}
