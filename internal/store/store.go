// Package store is the data-access client for the remote PostgreSQL store.
// It owns row-level CRUD over the habits and habit_dates tables and the
// LISTEN/NOTIFY change feed. The remote store is the source of truth; the
// feeds in internal/sync mirror it locally.
package store

import (
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/lib/pq"

	"habitgrid/internal/migration"
	"habitgrid/migrations"
)

// Client is an explicitly-constructed handle to the remote store, passed by
// reference to the feeds that need it. No ambient singleton exists.
type Client struct {
	connStr string
	db      *sql.DB
}

// New creates a client for the given connection string. The connection is
// not opened until Init or Load.
func New(connStr string) *Client {
	return &Client{connStr: connStr}
}

// Init opens the connection and applies pending schema migrations. Used by
// 'habitgrid init'; every other command uses Load.
func (c *Client) Init(logFn func(string)) error {
	if err := c.open(); err != nil {
		return err
	}

	runner, err := c.runner()
	if err != nil {
		return err
	}
	if _, err := runner.Apply(logFn); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens the connection and validates that the schema is not newer
// than this build.
func (c *Client) Load() error {
	if c.db != nil {
		return nil
	}
	if err := c.open(); err != nil {
		return err
	}

	runner, err := c.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// ConnString returns the connection string, for wiring the change listener
// to the same database.
func (c *Client) ConnString() string {
	return c.connStr
}

// SchemaVersion reports the applied and latest known schema versions, for
// diagnostics.
func (c *Client) SchemaVersion() (current, latest int, err error) {
	runner, err := c.runner()
	if err != nil {
		return 0, 0, err
	}
	current, err = runner.CurrentVersion()
	if err != nil {
		return 0, 0, err
	}
	latest, err = runner.LatestVersion()
	if err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func (c *Client) open() error {
	db, err := sql.Open("postgres", c.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.db = db
	return nil
}

func (c *Client) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(c.db, subFS), nil
}
