// Package legacy imports the habits.json file written by the local-only
// version of the app into the remote store. The file is removed once
// every habit migrates cleanly, so the import runs at most once.
package legacy

import (
	"encoding/json"
	"fmt"
	"os"

	"habitgrid/internal/logger"
	"habitgrid/internal/models"
)

// HabitCreator creates a remote habit. Satisfied by the habit feed.
type HabitCreator interface {
	Create(title, color string) (models.Habit, error)
}

// DateInserter bulk-inserts completed dates. Satisfied by the store client.
type DateInserter interface {
	InsertDates(habitID string, dates []string) ([]models.HabitDate, error)
}

// Result tallies a migration run.
type Result struct {
	Succeeded int
	Failed    int
}

// Clean reports whether every habit migrated.
func (r Result) Clean() bool {
	return r.Failed == 0
}

// Detect reports whether a legacy file exists at the given path.
func Detect(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads and validates the legacy file.
func Load(path string) ([]models.LegacyHabit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy data: %w", err)
	}

	var habits []models.LegacyHabit
	if err := json.Unmarshal(raw, &habits); err != nil {
		return nil, fmt.Errorf("invalid legacy data format: %w", err)
	}
	if len(habits) == 0 {
		return nil, fmt.Errorf("no habits found in legacy data")
	}
	return habits, nil
}

// Import creates a remote habit per legacy entry and bulk-inserts its
// dates. Failures are counted per habit and do not stop the run. The
// legacy file is removed only when the whole run is clean, so a partial
// run can be retried.
func Import(path string, habits []models.LegacyHabit, creator HabitCreator, inserter DateInserter) Result {
	var result Result
	for _, legacy := range habits {
		title := legacy.Title
		if title == "" {
			title = "New Habit"
		}

		habit, err := creator.Create(title, "")
		if err != nil {
			logger.Error("Failed to migrate legacy habit", "title", title, "error", err)
			result.Failed++
			continue
		}

		if len(legacy.SelectedDates) > 0 {
			if _, err := inserter.InsertDates(habit.ID, legacy.SelectedDates); err != nil {
				logger.Error("Failed to migrate legacy dates", "title", title, "error", err)
				result.Failed++
				continue
			}
		}
		result.Succeeded++
	}

	if result.Clean() {
		if err := os.Remove(path); err != nil {
			logger.Warn("Could not remove migrated legacy file", "path", path, "error", err)
		}
	}
	return result
}
