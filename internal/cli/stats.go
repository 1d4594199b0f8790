package cli

import (
	"fmt"
	"time"

	"habitgrid/internal/models"
	"habitgrid/internal/stats"
	"habitgrid/internal/sync"
)

type StatsCmd struct {
	Name    string `arg:"" optional:"" help:"Habit title or id prefix (default: all habits)."`
	Year    int    `help:"Year to compute the completion rate for (default: current)." default:"0"`
	Offline bool   `help:"Read the local snapshot cache instead of the database."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	year := c.Year
	if year == 0 {
		year = time.Now().Year()
	}

	var (
		habits   []models.Habit
		datesFor func(habitID string) ([]string, error)
	)

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
		datesFor = func(habitID string) ([]string, error) {
			cached, err := snap.Dates(habitID)
			if err != nil {
				return nil, err
			}
			dates := make([]string, len(cached))
			for i, d := range cached {
				dates[i] = d.Date
			}
			return dates, nil
		}
	} else {
		feed, err := ctx.StartHabitFeed()
		if err != nil {
			return err
		}
		habits = feed.Habits()

		ids := make([]string, len(habits))
		for i, h := range habits {
			ids[i] = h.ID
		}
		multi := sync.NewMultiDateFeed(ctx.Store, ctx.Auth, ids)
		if err := multi.Start(nil); err != nil {
			return err
		}
		datesFor = func(habitID string) ([]string, error) {
			return multi.DateStringsFor(habitID), nil
		}
	}

	if c.Name != "" {
		habit, err := findHabit(habits, c.Name)
		if err != nil {
			return err
		}
		habits = habits[:0]
		habits = append(habits, habit)
	}
	if len(habits) == 0 {
		fmt.Println("No habits yet.")
		return nil
	}

	calc := stats.New(nil)
	fmt.Printf("%-20s %10s %8s %6s\n", "HABIT", "RATE", "STREAK", "DAYS")
	for _, h := range habits {
		dates, err := datesFor(h.ID)
		if err != nil {
			return err
		}
		s := calc.ForHabit(h.ID, dates, year)
		fmt.Printf("%-20s %9.1f%% %8d %6d\n", h.Title, s.CompletionRate, s.CurrentStreak, s.TotalCompletedDays)
	}
	return nil
}
