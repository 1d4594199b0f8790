package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"habitgrid/internal/export"
	"habitgrid/internal/logger"
	"habitgrid/internal/sync"
)

type ExportCmd struct {
	Stdout bool `help:"Print the export document instead of copying it to the clipboard."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	feed, err := ctx.StartHabitFeed()
	if err != nil {
		return err
	}

	habits := feed.Habits()
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	multi := sync.NewMultiDateFeed(ctx.Store, ctx.Auth, ids)
	if err := multi.Start(nil); err != nil {
		return err
	}

	activeID := ""
	if len(habits) > 0 {
		activeID = habits[0].ID
	}
	doc := export.Build(habits, activeID, multi.DateStringsFor, time.Now())
	payload, err := export.Marshal(doc)
	if err != nil {
		return err
	}

	if c.Stdout {
		fmt.Println(payload)
		return nil
	}

	if err := export.Copy(payload); err != nil {
		// No clipboard on this machine; print so it can still be pasted.
		logger.Warn("Clipboard unavailable, printing export instead", "error", err)
		fmt.Println(payload)
		return nil
	}

	fmt.Printf("Copied %d habits to the clipboard.\n", len(habits))
	return nil
}

type ImportCmd struct {
	File  string `help:"Read the document from a file instead of the clipboard." type:"existingfile" default:""`
	Stdin bool   `help:"Read the document from standard input."`
	Force bool   `help:"Skip the confirmation prompt."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	raw, err := c.readPayload()
	if err != nil {
		return err
	}

	doc, err := export.Parse(raw)
	if err != nil {
		return err
	}

	feed, err := ctx.StartHabitFeed()
	if err != nil {
		return err
	}

	if !c.Force {
		fmt.Printf("Import %d habits alongside your current %d? [y/N]: ", len(doc.Habits), feed.Len())
		var answer string
		fmt.Scanln(&answer)
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	imported := 0
	for _, entry := range doc.Habits {
		habit, err := feed.Create(entry.Title, "")
		if err != nil {
			logger.Error("Failed to import habit", "title", entry.Title, "error", err)
			continue
		}
		if len(entry.SelectedDates) > 0 {
			if _, err := ctx.Store.InsertDates(habit.ID, entry.SelectedDates); err != nil {
				logger.Error("Failed to import dates", "title", entry.Title, "error", err)
				continue
			}
		}
		imported++
	}

	fmt.Printf("Imported %d of %d habits.\n", imported, len(doc.Habits))
	ctx.RefreshSnapshot()
	if imported < len(doc.Habits) {
		return fmt.Errorf("some habits could not be imported, see the log for details")
	}
	return nil
}

func (c *ImportCmd) readPayload() (string, error) {
	switch {
	case c.File != "":
		raw, err := os.ReadFile(c.File)
		if err != nil {
			return "", fmt.Errorf("failed to read import file: %w", err)
		}
		return string(raw), nil
	case c.Stdin:
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(raw), nil
	default:
		return export.ReadClipboard()
	}
}
