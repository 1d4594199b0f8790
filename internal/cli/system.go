package cli

import (
	"fmt"

	"github.com/atotto/clipboard"

	"habitgrid/internal/auth"
	"habitgrid/internal/config"
	"habitgrid/internal/keyring"
	"habitgrid/internal/legacy"
	"habitgrid/internal/lockfile"
)

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	fmt.Println("Initializing habitgrid storage...")
	if err := ctx.Store.Init(func(msg string) { fmt.Printf("  %s\n", msg) }); err != nil {
		return err
	}
	fmt.Println("Storage initialized.")

	if _, err := ctx.User(); err != nil {
		fmt.Println("Next, sign in with 'habitgrid login <email>'.")
	}
	return nil
}

type LoginCmd struct {
	Email string `arg:"" help:"Email address identifying your habit data."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	user, err := auth.Login(c.Email)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", user.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	if err := auth.Logout(); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

type ConfigCmd struct {
	Set   ConfigSetCmd   `cmd:"" help:"Store the database connection string in the OS keyring."`
	Unset ConfigUnsetCmd `cmd:"" help:"Remove the stored connection string."`
}

type ConfigSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string."`
}

func (c *ConfigSetCmd) Run(ctx *Context) error {
	if err := keyring.SetConnectionString(c.ConnectionString); err != nil {
		return err
	}
	fmt.Println("Connection string stored in the OS keyring.")
	return nil
}

type ConfigUnsetCmd struct{}

func (c *ConfigUnsetCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil && err != keyring.ErrNotFound {
		return err
	}
	fmt.Println("Connection string removed from the OS keyring.")
	return nil
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if ctx.Config.ConnString == "" {
		fmt.Printf("❌ Connection string: MISSING\n")
		fmt.Printf("   Set it with 'habitgrid config set <connection-string>' or %s\n", "HABITGRID_DB_CONNECTION")
		hasError = true
	} else if config.HasEmbeddedCredentials(ctx.Config.ConnString) {
		fmt.Printf("❌ Connection string: EMBEDDED CREDENTIALS\n")
		fmt.Printf("   Move the password to the keyring, environment or .pgpass\n")
		hasError = true
	} else {
		fmt.Printf("✓ Connection string: OK\n")
	}

	if ctx.Config.ConnString != "" {
		if err := ctx.Store.Load(); err != nil {
			fmt.Printf("❌ Database reachable: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Database reachable: OK\n")
			dbReachable = true
		}
	} else {
		fmt.Printf("⊘ Database reachable: SKIPPED (no connection string)\n")
	}

	if dbReachable {
		current, latest, err := ctx.Store.SchemaVersion()
		switch {
		case err != nil:
			fmt.Printf("❌ Schema version: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		case current < latest:
			fmt.Printf("❌ Schema version: BEHIND (%d, latest %d)\n", current, latest)
			fmt.Printf("   Run 'habitgrid init' to apply pending migrations\n")
			hasError = true
		default:
			fmt.Printf("✓ Schema version: OK (%d)\n", current)
		}
	} else {
		fmt.Printf("⊘ Schema version: SKIPPED (database not reachable)\n")
	}

	if keyring.IsAvailable() {
		fmt.Printf("✓ OS keyring: OK\n")
	} else {
		fmt.Printf("⚠ OS keyring: UNAVAILABLE\n")
		fmt.Printf("   Sessions and connection strings cannot be stored securely\n")
	}

	if _, ok := ctx.Auth.CurrentUser(); ok {
		fmt.Printf("✓ Signed in: OK\n")
	} else {
		fmt.Printf("⚠ Signed in: NO\n")
		fmt.Printf("   Run 'habitgrid login <email>'\n")
	}

	if clipboard.Unsupported {
		fmt.Printf("⚠ Clipboard: UNAVAILABLE\n")
		fmt.Printf("   'habitgrid export' will print to stdout instead\n")
	} else {
		fmt.Printf("✓ Clipboard: OK\n")
	}

	if legacy.Detect(ctx.Config.LegacyPath()) {
		fmt.Printf("⚠ Legacy data: FOUND\n")
		fmt.Printf("   Run 'habitgrid migrate-legacy' to move it to the server\n")
	} else {
		fmt.Printf("✓ Legacy data: NONE\n")
	}

	if held, pid := lockfile.Check(ctx.Config.ConfigDir); held {
		fmt.Printf("⚠ Session lock: HELD (pid %d)\n", pid)
	} else {
		fmt.Printf("✓ Session lock: FREE\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}
