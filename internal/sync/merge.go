// Package sync holds the feeds: local reactive mirrors of the remote habit
// and habit-date collections. Mutations are applied optimistically and the
// change feed reconciles writes from other sessions. The same id-keyed
// merge is used for both paths, so duplicate delivery of "the event for the
// mutation just made" is harmless.
package sync

import (
	"habitgrid/internal/models"
	"habitgrid/internal/store"
)

// Store is the slice of the data-access client the feeds consume.
type Store interface {
	ListHabits(userID string) ([]models.Habit, error)
	CreateHabit(userID, title, color string) (models.Habit, error)
	UpdateHabit(userID, id string, update models.HabitUpdate) (models.Habit, error)
	DeleteHabit(userID, id string) error
	ListDates(habitID string) ([]models.HabitDate, error)
	ListDatesForHabits(habitIDs []string) (map[string][]models.HabitDate, error)
	InsertDate(habitID, date string) (models.HabitDate, error)
	DeleteDate(id string) error
	InsertDates(habitID string, dates []string) ([]models.HabitDate, error)
	DeleteDates(ids []string) error
}

// Subscriber hands out change-feed subscriptions with unsubscribe handles.
type Subscriber interface {
	Subscribe(fn func(store.ChangeEvent)) func()
}

// UpsertHabit replaces the habit with the same id, or appends. Append
// keeps creation order, matching the remote ORDER BY created_at.
func UpsertHabit(habits []models.Habit, h models.Habit) []models.Habit {
	for i := range habits {
		if habits[i].ID == h.ID {
			habits[i] = h
			return habits
		}
	}
	return append(habits, h)
}

// RemoveHabit drops the habit with the given id; unknown ids are a no-op.
func RemoveHabit(habits []models.Habit, id string) []models.Habit {
	out := habits[:0]
	for _, h := range habits {
		if h.ID != id {
			out = append(out, h)
		}
	}
	return out
}

// UpsertDate replaces the date row with the same id, or appends.
func UpsertDate(dates []models.HabitDate, d models.HabitDate) []models.HabitDate {
	for i := range dates {
		if dates[i].ID == d.ID {
			dates[i] = d
			return dates
		}
	}
	return append(dates, d)
}

// RemoveDate drops the date row with the given id; unknown ids are a no-op.
func RemoveDate(dates []models.HabitDate, id string) []models.HabitDate {
	out := dates[:0]
	for _, d := range dates {
		if d.ID != id {
			out = append(out, d)
		}
	}
	return out
}
