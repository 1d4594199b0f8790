// Package config resolves runtime configuration: the config directory, the
// PostgreSQL connection string and debug flags. Secrets live in the OS
// keyring or the environment, never in files under version control.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"habitgrid/internal/constants"
	"habitgrid/internal/keyring"
	"habitgrid/internal/logger"
)

// Config is the resolved application configuration.
type Config struct {
	// ConfigDir holds logs, the SQLite snapshot cache and legacy data.
	ConfigDir string
	// ConnString is the PostgreSQL connection string for the remote store.
	ConnString string
	// Debug enables verbose logging mirrored to stderr.
	Debug bool
}

// Load resolves configuration. Precedence for the connection string:
// explicit flag, HABITGRID_DB_CONNECTION (including a .env file in the
// working directory), then the OS keyring.
func Load(flagConn string, debug bool) (Config, error) {
	// A missing .env is fine; only log unexpected failures.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Debug("Skipped .env file", "error", err)
	}

	dir, err := DefaultConfigDir()
	if err != nil {
		return Config{}, err
	}

	conn := strings.TrimSpace(flagConn)
	if conn == "" {
		conn = strings.TrimSpace(os.Getenv(constants.EnvConnectionString))
	}
	if conn == "" {
		stored, err := keyring.GetConnectionString()
		if err == nil {
			conn = stored
		} else if err != keyring.ErrNotFound {
			logger.Warn("Could not read connection string from keyring", "error", err)
		}
	}

	return Config{
		ConfigDir:  dir,
		ConnString: conn,
		Debug:      debug,
	}, nil
}

// DefaultConfigDir returns ~/.config/habitgrid, creating it if needed.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", constants.AppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// CachePath returns the path of the local SQLite snapshot database.
func (c Config) CachePath() string {
	return filepath.Join(c.ConfigDir, constants.CacheFileName)
}

// LegacyPath returns the path of the pre-sync JSON data file.
func (c Config) LegacyPath() string {
	return filepath.Join(c.ConfigDir, constants.LegacyFileName)
}

// HasEmbeddedCredentials reports whether a connection string carries a
// password inline. Such strings are rejected; credentials belong in the
// keyring, environment or .pgpass.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		rest := connStr[strings.Index(connStr, "://")+3:]
		if at := strings.Index(rest, "@"); at != -1 {
			return strings.Contains(rest[:at], ":")
		}
		return false
	}
	for _, pair := range strings.Fields(connStr) {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "password") {
			return true
		}
	}
	return false
}
