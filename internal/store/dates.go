package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"habitgrid/internal/constants"
	"habitgrid/internal/errors"
	"habitgrid/internal/models"
)

// ListDates returns all completed dates for one habit, ordered by date.
func (c *Client) ListDates(habitID string) ([]models.HabitDate, error) {
	rows, err := c.db.Query(`
		SELECT id, habit_id, date, created_at
		FROM habit_dates WHERE habit_id = $1
		ORDER BY date`, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habit dates: %w", err)
	}
	defer rows.Close()

	var dates []models.HabitDate
	for rows.Next() {
		d, err := scanDate(rows)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ListDatesForHabits fetches the dates of every given habit in one IN
// query and groups them by habit id. Requested habits with no dates map to
// an empty slice.
func (c *Client) ListDatesForHabits(habitIDs []string) (map[string][]models.HabitDate, error) {
	grouped := make(map[string][]models.HabitDate, len(habitIDs))
	for _, id := range habitIDs {
		grouped[id] = []models.HabitDate{}
	}
	if len(habitIDs) == 0 {
		return grouped, nil
	}

	rows, err := c.db.Query(`
		SELECT id, habit_id, date, created_at
		FROM habit_dates WHERE habit_id = ANY($1)
		ORDER BY date`, pq.Array(habitIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list dates for habits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDate(rows)
		if err != nil {
			return nil, err
		}
		grouped[d.HabitID] = append(grouped[d.HabitID], d)
	}
	return grouped, rows.Err()
}

// InsertDate records one completed date and returns the stored row. The
// unique (habit_id, date) constraint makes a duplicate insert fail; callers
// check existence first (toggle semantics).
func (c *Client) InsertDate(habitID, date string) (models.HabitDate, error) {
	d := models.HabitDate{
		ID:      uuid.New().String(),
		HabitID: habitID,
		Date:    date,
	}

	err := c.db.QueryRow(`
		INSERT INTO habit_dates (id, habit_id, date)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		d.ID, d.HabitID, d.Date).Scan(&d.CreatedAt)
	if err != nil {
		return models.HabitDate{}, fmt.Errorf("failed to insert habit date: %w", err)
	}
	return d, nil
}

// DeleteDate removes one completed date by row id.
func (c *Client) DeleteDate(id string) error {
	result, err := c.db.Exec(`DELETE FROM habit_dates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit date: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("habit date %s: %w", id, errors.ErrNotFound)
	}
	return nil
}

// InsertDates bulk-inserts the given dates for one habit in a single
// statement, so a month fill is atomic. Dates already present are skipped
// by the unique constraint.
func (c *Client) InsertDates(habitID string, dates []string) ([]models.HabitDate, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	ids := make([]string, len(dates))
	for i := range dates {
		ids[i] = uuid.New().String()
	}

	rows, err := c.db.Query(`
		INSERT INTO habit_dates (id, habit_id, date)
		SELECT u.id, $1, u.date
		FROM unnest($2::uuid[], $3::date[]) AS u(id, date)
		ON CONFLICT (habit_id, date) DO NOTHING
		RETURNING id, habit_id, date, created_at`,
		habitID, pq.Array(ids), pq.Array(dates))
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert habit dates: %w", err)
	}
	defer rows.Close()

	var inserted []models.HabitDate
	for rows.Next() {
		d, err := scanDate(rows)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, d)
	}
	return inserted, rows.Err()
}

// DeleteDates bulk-deletes rows by id in a single statement (month clear).
func (c *Client) DeleteDates(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := c.db.Exec(`DELETE FROM habit_dates WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to bulk delete habit dates: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanDate reads a habit_dates row. The DATE column scans as time.Time and
// is normalized back to the YYYY-MM-DD string the rest of the app uses.
func scanDate(row rowScanner) (models.HabitDate, error) {
	var d models.HabitDate
	var day time.Time
	if err := row.Scan(&d.ID, &d.HabitID, &day, &d.CreatedAt); err != nil {
		return models.HabitDate{}, fmt.Errorf("failed to scan habit date: %w", err)
	}
	d.Date = day.Format(constants.DateFormat)
	return d, nil
}
