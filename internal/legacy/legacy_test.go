package legacy

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"habitgrid/internal/models"
)

type fakeCreator struct {
	created []string
	failOn  string
	nextID  int
}

func (c *fakeCreator) Create(title, color string) (models.Habit, error) {
	if title == c.failOn {
		return models.Habit{}, fmt.Errorf("create failed")
	}
	c.nextID++
	c.created = append(c.created, title)
	return models.Habit{ID: fmt.Sprintf("h-%d", c.nextID), Title: title}, nil
}

type fakeInserter struct {
	inserted map[string][]string
}

func (i *fakeInserter) InsertDates(habitID string, dates []string) ([]models.HabitDate, error) {
	if i.inserted == nil {
		i.inserted = map[string][]string{}
	}
	i.inserted[habitID] = dates
	return nil, nil
}

func writeLegacyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habits.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeLegacyFile(t, `[{"id":"l-1","title":"Exercise","selectedDates":["2026-01-05"]}]`)
		habits, err := Load(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(habits) != 1 || habits[0].Title != "Exercise" {
			t.Errorf("habits = %+v", habits)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("not an array", func(t *testing.T) {
		path := writeLegacyFile(t, `{"habits":[]}`)
		if _, err := Load(path); err == nil {
			t.Error("expected an error for a non-array file")
		}
	})

	t.Run("empty array", func(t *testing.T) {
		path := writeLegacyFile(t, `[]`)
		if _, err := Load(path); err == nil {
			t.Error("expected an error for an empty file")
		}
	})
}

func TestImportCleanRunRemovesFile(t *testing.T) {
	path := writeLegacyFile(t, "[]")
	habits := []models.LegacyHabit{
		{ID: "l-1", Title: "Exercise", SelectedDates: []string{"2026-01-05", "2026-01-06"}},
		{ID: "l-2", Title: "Read"},
	}
	creator := &fakeCreator{}
	inserter := &fakeInserter{}

	result := Import(path, habits, creator, inserter)

	if result.Succeeded != 2 || result.Failed != 0 {
		t.Errorf("result = %+v, want 2 succeeded", result)
	}
	if got := inserter.inserted["h-1"]; len(got) != 2 {
		t.Errorf("h-1 dates = %v, want 2 entries", got)
	}
	if _, ok := inserter.inserted["h-2"]; ok {
		t.Error("no insert expected for a habit without dates")
	}
	if Detect(path) {
		t.Error("legacy file should be removed after a clean run")
	}
}

func TestImportPartialFailureKeepsFile(t *testing.T) {
	path := writeLegacyFile(t, "[]")
	habits := []models.LegacyHabit{
		{ID: "l-1", Title: "Exercise"},
		{ID: "l-2", Title: "Doomed"},
	}
	creator := &fakeCreator{failOn: "Doomed"}

	result := Import(path, habits, creator, &fakeInserter{})

	if result.Succeeded != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1/1", result)
	}
	if !Detect(path) {
		t.Error("legacy file must survive a partial run so it can be retried")
	}
}

func TestImportUntitledHabitGetsDefault(t *testing.T) {
	path := writeLegacyFile(t, "[]")
	creator := &fakeCreator{}

	Import(path, []models.LegacyHabit{{ID: "l-1"}}, creator, &fakeInserter{})

	if len(creator.created) != 1 || creator.created[0] != "New Habit" {
		t.Errorf("created = %v, want [New Habit]", creator.created)
	}
}
