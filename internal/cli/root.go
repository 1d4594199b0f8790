package cli

import (
	"habitgrid/internal/auth"
	"habitgrid/internal/cache"
	"habitgrid/internal/config"
	"habitgrid/internal/errors"
	"habitgrid/internal/logger"
	"habitgrid/internal/store"
	"habitgrid/internal/sync"
)

// Context carries the shared collaborators into command Run methods.
type Context struct {
	Config config.Config
	Store  *store.Client
	Auth   auth.Provider
}

// User returns the signed-in identity or ErrNotAuthenticated.
func (c *Context) User() (auth.User, error) {
	user, ok := c.Auth.CurrentUser()
	if !ok {
		return auth.User{}, errors.ErrNotAuthenticated
	}
	return user, nil
}

// StartHabitFeed builds and starts a habit feed without a live change
// subscription, for one-shot commands.
func (c *Context) StartHabitFeed() (*sync.HabitFeed, error) {
	feed := sync.NewHabitFeed(c.Store, c.Auth)
	if err := feed.Start(nil); err != nil {
		return nil, err
	}
	return feed, nil
}

// OpenSnapshot opens the local SQLite mirror for offline reads.
func (c *Context) OpenSnapshot() (*cache.Snapshot, error) {
	return cache.Open(c.Config.CachePath())
}

// RefreshSnapshot mirrors the remote collections into the local SQLite
// cache. Failures are logged, never fatal; the cache is advisory.
func (c *Context) RefreshSnapshot() {
	user, ok := c.Auth.CurrentUser()
	if !ok {
		return
	}

	snap, err := cache.Open(c.Config.CachePath())
	if err != nil {
		logger.Warn("Could not open snapshot cache", "error", err)
		return
	}
	defer snap.Close()

	habits, err := c.Store.ListHabits(user.ID)
	if err != nil {
		logger.Warn("Could not refresh snapshot habits", "error", err)
		return
	}
	if err := snap.ReplaceHabits(user.ID, habits); err != nil {
		logger.Warn("Could not write snapshot habits", "error", err)
		return
	}

	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	grouped, err := c.Store.ListDatesForHabits(ids)
	if err != nil {
		logger.Warn("Could not refresh snapshot dates", "error", err)
		return
	}
	for habitID, dates := range grouped {
		if err := snap.ReplaceDates(habitID, dates); err != nil {
			logger.Warn("Could not write snapshot dates", "habit", habitID, "error", err)
			return
		}
	}
	if err := snap.PruneDates(); err != nil {
		logger.Warn("Could not prune snapshot dates", "error", err)
	}
}
