package cli

import (
	"fmt"
	"time"

	"habitgrid/internal/constants"
	"habitgrid/internal/sync"
)

type MarkCmd struct {
	Name string `arg:"" help:"Habit title or id prefix."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *MarkCmd) Run(ctx *Context) error {
	date := c.Date
	if date == "" {
		date = time.Now().Format(constants.DateFormat)
	}
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", c.Date)
	}

	feed, err := ctx.StartHabitFeed()
	if err != nil {
		return err
	}
	habit, err := findHabit(feed.Habits(), c.Name)
	if err != nil {
		return err
	}

	dates := sync.NewDateFeed(ctx.Store, ctx.Auth, habit.ID)
	if err := dates.Start(nil); err != nil {
		return err
	}

	on, err := dates.ToggleDate(date)
	if err != nil {
		return err
	}

	if on {
		fmt.Printf("Marked %s done on %s\n", habit.Title, date)
	} else {
		fmt.Printf("Unmarked %s on %s\n", habit.Title, date)
	}
	ctx.RefreshSnapshot()
	return nil
}

type MonthCmd struct {
	Name  string `arg:"" help:"Habit title or id prefix."`
	Month int    `arg:"" help:"Month number 1-12."`
	Year  int    `help:"Year (default: current)." default:"0"`
}

func (c *MonthCmd) Run(ctx *Context) error {
	if c.Month < 1 || c.Month > 12 {
		return fmt.Errorf("month must be 1-12, got %d", c.Month)
	}
	year := c.Year
	if year == 0 {
		year = time.Now().Year()
	}

	feed, err := ctx.StartHabitFeed()
	if err != nil {
		return err
	}
	habit, err := findHabit(feed.Habits(), c.Name)
	if err != nil {
		return err
	}

	dates := sync.NewDateFeed(ctx.Store, ctx.Auth, habit.ID)
	if err := dates.Start(nil); err != nil {
		return err
	}

	before := len(dates.Dates())
	if err := dates.InitializeMonth(year, c.Month-1); err != nil {
		return err
	}
	after := len(dates.Dates())

	if after > before {
		fmt.Printf("Filled %s %d-%02d (%d days marked)\n", habit.Title, year, c.Month, after-before)
	} else {
		fmt.Printf("Cleared %s %d-%02d (%d days unmarked)\n", habit.Title, year, c.Month, before-after)
	}
	ctx.RefreshSnapshot()
	return nil
}
