package cli

import (
	"fmt"
	"strings"

	"habitgrid/internal/legacy"
)

type MigrateLegacyCmd struct {
	File  string `help:"Path to the legacy habits.json (default: the config directory)." default:""`
	Force bool   `help:"Skip the confirmation prompt."`
}

func (c *MigrateLegacyCmd) Run(ctx *Context) error {
	path := c.File
	if path == "" {
		path = ctx.Config.LegacyPath()
	}

	if !legacy.Detect(path) {
		fmt.Println("No legacy data found.")
		return nil
	}

	habits, err := legacy.Load(path)
	if err != nil {
		return err
	}

	if !c.Force {
		fmt.Printf("Save %d habits from the previous version to the server? [y/N]: ", len(habits))
		var answer string
		fmt.Scanln(&answer)
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	feed, err := ctx.StartHabitFeed()
	if err != nil {
		return err
	}

	result := legacy.Import(path, habits, feed, ctx.Store)
	if result.Clean() {
		fmt.Printf("Migrated %d habits.\n", result.Succeeded)
	} else {
		fmt.Printf("Migrated partial data. Success: %d, Failed: %d. Rerun to retry.\n",
			result.Succeeded, result.Failed)
	}

	ctx.RefreshSnapshot()
	return nil
}
