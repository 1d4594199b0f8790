// Package export builds and parses the clipboard transfer document, the
// manual way to move habit data between machines.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/atotto/clipboard"

	"habitgrid/internal/constants"
	"habitgrid/internal/models"
)

// HabitEntry is one habit plus its completed dates in the transfer document.
type HabitEntry struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	SelectedDates []string `json:"selectedDates"`
}

// Document is the versioned clipboard payload.
type Document struct {
	Habits        []HabitEntry `json:"habits"`
	ActiveHabitID string       `json:"activeHabitId"`
	ExportDate    string       `json:"exportDate"`
	Version       string       `json:"version"`
}

// Build assembles a document from the current collections. datesFor
// resolves a habit's completed dates by id.
func Build(habits []models.Habit, activeHabitID string, datesFor func(habitID string) []string, now time.Time) Document {
	entries := make([]HabitEntry, len(habits))
	for i, h := range habits {
		dates := datesFor(h.ID)
		if dates == nil {
			dates = []string{}
		}
		entries[i] = HabitEntry{ID: h.ID, Title: h.Title, SelectedDates: dates}
	}
	return Document{
		Habits:        entries,
		ActiveHabitID: activeHabitID,
		ExportDate:    now.UTC().Format(time.RFC3339),
		Version:       constants.ExportVersion,
	}
}

// Marshal renders the document as indented JSON for pasting elsewhere.
func Marshal(doc Document) (string, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize export data: %w", err)
	}
	return string(raw), nil
}

// Parse validates pasted JSON into a document. The shape is checked
// explicitly so a bad paste fails here with a clear message instead of
// deep in the import loop.
func Parse(raw string) (Document, error) {
	var probe struct {
		Habits json.RawMessage `json:"habits"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return Document{}, fmt.Errorf("invalid data format: %w", err)
	}
	if len(probe.Habits) == 0 || string(probe.Habits) == "null" {
		return Document{}, fmt.Errorf("invalid data format: missing habits array")
	}

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Document{}, fmt.Errorf("invalid data format: %w", err)
	}
	if doc.Habits == nil {
		return Document{}, fmt.Errorf("invalid data format: habits must be an array")
	}
	for i, h := range doc.Habits {
		if h.Title == "" {
			return Document{}, fmt.Errorf("invalid data format: habit %d has no title", i)
		}
	}
	return doc, nil
}

// Copy puts the rendered document on the system clipboard. Callers fall
// back to printing the payload when no clipboard is available.
func Copy(data string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no system clipboard available")
	}
	if err := clipboard.WriteAll(data); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}

// ReadClipboard fetches pasted text for the import path.
func ReadClipboard() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("no system clipboard available")
	}
	raw, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	return raw, nil
}
