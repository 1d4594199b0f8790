// Package cache keeps a local SQLite snapshot of the remote store so the
// TUI can paint instantly and read-only commands work offline. It is a
// write-through mirror, never an independent source of truth.
package cache

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"habitgrid/internal/migration"
	"habitgrid/internal/models"
	"habitgrid/migrations"
)

// Snapshot is a local mirror of one user's habits and dates.
type Snapshot struct {
	path string
	db   *sql.DB
}

// Open creates or opens the snapshot database and applies its schema.
func Open(path string) (*Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	if _, err := migration.NewRunner(db, subFS).Apply(nil); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache: %w", err)
	}

	return &Snapshot{path: path, db: db}, nil
}

// Close releases the database handle.
func (s *Snapshot) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ReplaceHabits swaps the cached habit list for one user with a fresh
// remote snapshot, in one transaction.
func (s *Snapshot) ReplaceHabits(userID string, habits []models.Habit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM habits WHERE user_id = ?`, userID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear cached habits: %w", err)
	}

	for _, h := range habits {
		if _, err := tx.Exec(`
			INSERT INTO habits (id, user_id, title, color, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				color = excluded.color,
				updated_at = excluded.updated_at`,
			h.ID, h.UserID, h.Title, h.Color,
			h.CreatedAt.Format(time.RFC3339), h.UpdatedAt.Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to cache habit %s: %w", h.ID, err)
		}
	}

	return tx.Commit()
}

// ReplaceDates swaps the cached dates of one habit with a fresh remote
// snapshot.
func (s *Snapshot) ReplaceDates(habitID string, dates []models.HabitDate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM habit_dates WHERE habit_id = ?`, habitID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear cached dates: %w", err)
	}

	for _, d := range dates {
		if _, err := tx.Exec(`
			INSERT INTO habit_dates (id, habit_id, date, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(habit_id, date) DO UPDATE SET id = excluded.id`,
			d.ID, d.HabitID, d.Date, d.CreatedAt.Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to cache date %s: %w", d.Date, err)
		}
	}

	return tx.Commit()
}

// PruneDates drops cached dates whose habit row is gone. The cache schema
// has no FK cascade, so a habit deleted remotely would otherwise leave its
// dates behind forever.
func (s *Snapshot) PruneDates() error {
	if _, err := s.db.Exec(`
		DELETE FROM habit_dates
		WHERE habit_id NOT IN (SELECT id FROM habits)`); err != nil {
		return fmt.Errorf("failed to prune cached dates: %w", err)
	}
	return nil
}

// Habits returns the cached habit list for one user, ordered by creation
// time like the remote query.
func (s *Snapshot) Habits(userID string) ([]models.Habit, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, color, created_at, updated_at
		FROM habits WHERE user_id = ?
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		var h models.Habit
		var createdAt, updatedAt string
		if err := rows.Scan(&h.ID, &h.UserID, &h.Title, &h.Color, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if h.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
		}
		if h.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at for habit %s: %w", h.ID, err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// Dates returns the cached dates of one habit, ordered by date.
func (s *Snapshot) Dates(habitID string) ([]models.HabitDate, error) {
	rows, err := s.db.Query(`
		SELECT id, habit_id, date, created_at
		FROM habit_dates WHERE habit_id = ?
		ORDER BY date`, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached dates: %w", err)
	}
	defer rows.Close()

	var dates []models.HabitDate
	for rows.Next() {
		var d models.HabitDate
		var createdAt string
		if err := rows.Scan(&d.ID, &d.HabitID, &d.Date, &createdAt); err != nil {
			return nil, err
		}
		if d.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for date %s: %w", d.ID, err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
