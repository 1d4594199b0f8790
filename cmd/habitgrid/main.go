package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"habitgrid/internal/auth"
	"habitgrid/internal/cli"
	"habitgrid/internal/config"
	"habitgrid/internal/constants"
	"habitgrid/internal/logger"
	"habitgrid/internal/store"
)

var CLI struct {
	Version kong.VersionFlag
	Debug   bool   `help:"Enable verbose logging."`
	Db      string `help:"PostgreSQL connection string. Credentials must NOT be embedded; use the OS keyring, HABITGRID_DB_CONNECTION, or .pgpass instead." default:""`

	Tui           cli.TuiCmd           `cmd:"" help:"Launch the interactive calendar." default:"1"`
	Init          cli.InitCmd          `cmd:"" help:"Initialize the database schema."`
	Login         cli.LoginCmd         `cmd:"" help:"Sign in with an email address."`
	Logout        cli.LogoutCmd        `cmd:"" help:"Sign out."`
	Habit         cli.HabitCmd         `cmd:"" help:"Manage habits."`
	Mark          cli.MarkCmd          `cmd:"" help:"Toggle a habit's completion for a date."`
	Month         cli.MonthCmd         `cmd:"" help:"Fill or clear a whole month for a habit."`
	Stats         cli.StatsCmd         `cmd:"" help:"Show completion rates and streaks."`
	Export        cli.ExportCmd        `cmd:"" help:"Copy habit data to the clipboard."`
	Import        cli.ImportCmd        `cmd:"" help:"Import habit data from the clipboard."`
	MigrateLegacy cli.MigrateLegacyCmd `cmd:"" name:"migrate-legacy" help:"Import data from the pre-sync habits.json."`
	Config        cli.ConfigCmd        `cmd:"" help:"Manage the stored connection string."`
	Doctor        cli.DoctorCmd        `cmd:"" help:"Run health checks and diagnostics."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Year-at-a-glance habit tracker with live sync"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Db, CLI.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.ConnString != "" && config.HasEmbeddedCredentials(cfg.ConnString) {
		fmt.Fprintf(os.Stderr, "Error: connection strings with embedded credentials are not allowed.\n")
		fmt.Fprintf(os.Stderr, "       Use one of these instead:\n")
		fmt.Fprintf(os.Stderr, "       1. OS keyring:   habitgrid config set \"postgresql://user@host:5432/habitgrid\"\n")
		fmt.Fprintf(os.Stderr, "       2. Environment:  export %s=...\n", constants.EnvConnectionString)
		fmt.Fprintf(os.Stderr, "       3. .pgpass file: keep the password out of the connection string\n")
		os.Exit(1)
	}

	appCtx := &cli.Context{
		Config: cfg,
		Store:  store.New(cfg.ConnString),
		Auth:   auth.NewKeyringProvider(),
	}

	// login, logout, config and doctor work without a database and offline
	// reads use the local snapshot; init opens and migrates the database
	// itself. Everything else loads it up front.
	switch strings.Fields(ctx.Command())[0] {
	case "login", "logout", "config", "doctor":
	case "init":
		if cfg.ConnString == "" {
			fmt.Fprintf(os.Stderr, "Error: no database configured. Run 'habitgrid config set <connection-string>'.\n")
			os.Exit(1)
		}
	default:
		if CLI.Stats.Offline || CLI.Habit.List.Offline {
			break
		}
		if cfg.ConnString == "" {
			fmt.Fprintf(os.Stderr, "Error: no database configured. Run 'habitgrid config set <connection-string>'.\n")
			os.Exit(1)
		}
		if err := appCtx.Store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	defer appCtx.Store.Close()

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
