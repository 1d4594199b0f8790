package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"habitgrid/internal/lockfile"
	"habitgrid/internal/logger"
	"habitgrid/internal/store"
	"habitgrid/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	if _, err := ctx.User(); err != nil {
		return err
	}
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	lock, err := lockfile.Acquire(ctx.Config.ConfigDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	// Live updates are best effort; the UI still works without them.
	listener := store.NewListener(ctx.Store.ConnString())
	if err := listener.Start(); err != nil {
		logger.Warn("Change feed unavailable, continuing without live updates", "error", err)
		listener = nil
	} else {
		defer listener.Close()
	}

	model, err := buildModel(ctx, listener)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	ctx.RefreshSnapshot()
	return nil
}

// buildModel keeps a nil *Listener from becoming a non-nil Subscriber
// interface inside the model.
func buildModel(ctx *Context, listener *store.Listener) (tea.Model, error) {
	var model tui.Model
	var err error
	if listener == nil {
		model, err = tui.NewModel(ctx.Store, ctx.Auth, nil)
	} else {
		model, err = tui.NewModel(ctx.Store, ctx.Auth, listener)
	}
	if err != nil {
		return nil, err
	}
	return model, nil
}
