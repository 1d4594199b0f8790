package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"habitgrid/internal/errors"
	"habitgrid/internal/models"
)

// ListHabits returns all habits owned by the user, ordered by creation time.
func (c *Client) ListHabits(userID string) ([]models.Habit, error) {
	rows, err := c.db.Query(`
		SELECT id, user_id, title, color, created_at, updated_at
		FROM habits WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		var h models.Habit
		if err := rows.Scan(&h.ID, &h.UserID, &h.Title, &h.Color, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// CreateHabit inserts a new habit and returns the stored row.
func (c *Client) CreateHabit(userID, title, color string) (models.Habit, error) {
	h := models.Habit{
		ID:     uuid.New().String(),
		UserID: userID,
		Title:  title,
		Color:  color,
	}

	err := c.db.QueryRow(`
		INSERT INTO habits (id, user_id, title, color)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		h.ID, h.UserID, h.Title, h.Color).Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}
	return h, nil
}

// UpdateHabit applies a partial title/color update, stamps updated_at and
// returns the stored row. Returns ErrNotFound when the habit does not exist
// or is not owned by the user.
func (c *Client) UpdateHabit(userID, id string, update models.HabitUpdate) (models.Habit, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	n := 1

	if update.Title != nil {
		sets = append(sets, "title = $"+strconv.Itoa(n))
		args = append(args, *update.Title)
		n++
	}
	if update.Color != nil {
		sets = append(sets, "color = $"+strconv.Itoa(n))
		args = append(args, *update.Color)
		n++
	}

	query := fmt.Sprintf(`
		UPDATE habits SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING id, user_id, title, color, created_at, updated_at`,
		strings.Join(sets, ", "), n, n+1)
	args = append(args, id, userID)

	var h models.Habit
	err := c.db.QueryRow(query, args...).Scan(&h.ID, &h.UserID, &h.Title, &h.Color, &h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	return h, nil
}

// DeleteHabit removes the habit; its dates cascade in the store.
func (c *Client) DeleteHabit(userID, id string) error {
	result, err := c.db.Exec(`DELETE FROM habits WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("habit %s: %w", id, errors.ErrNotFound)
	}
	return nil
}

// CountHabits returns the number of habits owned by the user, used to
// enforce the habit limit before a create round-trip.
func (c *Client) CountHabits(userID string) (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT count(*) FROM habits WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count habits: %w", err)
	}
	return n, nil
}
