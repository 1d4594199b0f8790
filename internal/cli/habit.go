package cli

import (
	"fmt"
	"strings"

	"habitgrid/internal/constants"
	"habitgrid/internal/models"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Rename HabitRenameCmd `cmd:"" help:"Rename a habit."`
	Color  HabitColorCmd  `cmd:"" help:"Change a habit's color."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and all its dates."`
}

// findHabit resolves a habit by exact title (case-insensitive) or id prefix.
func findHabit(habits []models.Habit, name string) (models.Habit, error) {
	for _, h := range habits {
		if strings.EqualFold(h.Title, name) || strings.HasPrefix(h.ID, name) {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("no habit named %q", name)
}

type HabitAddCmd struct {
	Title string `arg:"" help:"Habit title."`
	Color string `help:"Hex color like #FF6B4A (default: palette color)." default:""`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	feed, err := ctx.StartHabitFeed()
	if err != nil {
		return err
	}

	color := c.Color
	if color == "" {
		// Cycle the palette so sibling habits get distinct colors.
		color = constants.HabitColors[feed.Len()%len(constants.HabitColors)]
	}

	habit, err := feed.Create(c.Title, color)
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s)\n", habit.Title, habit.Color)
	ctx.RefreshSnapshot()
	return nil
}

type HabitListCmd struct {
	Offline bool `help:"Read the local snapshot cache instead of the database."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	var habits []models.Habit
	if c.Offline {
		user, err := ctx.User()
		if err != nil {
			return err
		}
		snap, err := ctx.OpenSnapshot()
		if err != nil {
			return err
		}
		defer snap.Close()
		habits, err = snap.Habits(user.ID)
		if err != nil {
			return err
		}
	} else {
		feed, err := ctx.StartHabitFeed()
		if err != nil {
			return err
		}
		habits = feed.Habits()
	}
	if len(habits) == 0 {
		fmt.Println("No habits yet. Add one with 'habitgrid habit add <title>'.")
		return nil
	}

	for _, h := range habits {
		fmt.Printf("%-8s  %-7s  %s\n", h.ID[:8], h.Color, h.Title)
	}
	return nil
}

type HabitRenameCmd struct {
	Name  string `arg:"" help:"Current habit title or id prefix."`
	Title string `arg:"" help:"New title."`
}

func (c *HabitRenameCmd) Run(ctx *Context) error {
	feed, err := ctx.StartHabitFeed()
	if err != nil {
		return err
	}
	habit, err := findHabit(feed.Habits(), c.Name)
	if err != nil {
		return err
	}

	updated, err := feed.Update(habit.ID, models.HabitUpdate{Title: &c.Title})
	if err != nil {
		return err
	}

	fmt.Printf("Renamed habit to: %s\n", updated.Title)
	ctx.RefreshSnapshot()
	return nil
}

type HabitColorCmd struct {
	Name  string `arg:"" help:"Habit title or id prefix."`
	Color string `arg:"" help:"Hex color like #8B5CF6."`
}

func (c *HabitColorCmd) Run(ctx *Context) error {
	feed, err := ctx.StartHabitFeed()
	if err != nil {
		return err
	}
	habit, err := findHabit(feed.Habits(), c.Name)
	if err != nil {
		return err
	}

	updated, err := feed.Update(habit.ID, models.HabitUpdate{Color: &c.Color})
	if err != nil {
		return err
	}

	fmt.Printf("Changed color of %s to %s\n", updated.Title, updated.Color)
	ctx.RefreshSnapshot()
	return nil
}

type HabitDeleteCmd struct {
	Name  string `arg:"" help:"Habit title or id prefix."`
	Force bool   `help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	feed, err := ctx.StartHabitFeed()
	if err != nil {
		return err
	}
	if feed.Len() <= constants.MinHabits {
		return fmt.Errorf("cannot delete the last habit")
	}
	habit, err := findHabit(feed.Habits(), c.Name)
	if err != nil {
		return err
	}

	if !c.Force {
		fmt.Printf("Delete %q and all its recorded dates? [y/N]: ", habit.Title)
		var answer string
		fmt.Scanln(&answer)
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := feed.Delete(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", habit.Title)
	ctx.RefreshSnapshot()
	return nil
}
