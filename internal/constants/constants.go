package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "habitgrid"
	DefaultKeyringUser = "database-connection"
	SessionKeyringUser = "session"
	Version            = "v1.0.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// EnvConnectionString is the environment variable holding the
	// PostgreSQL connection string, loadable from a .env file.
	EnvConnectionString = "HABITGRID_DB_CONNECTION"

	// NotifyChannel is the LISTEN/NOTIFY channel that row-level triggers
	// publish change events on.
	NotifyChannel = "habitgrid_changes"

	// MaxHabits bounds the number of habits a user can track at once.
	MaxHabits = 5

	// MinHabits is enforced by the UI layer: the last habit cannot be deleted.
	MinHabits = 1

	// CacheFileName is the local SQLite snapshot database file.
	CacheFileName = "cache.db"

	// LegacyFileName is the JSON file written by the pre-sync version.
	LegacyFileName = "habits.json"

	// LockFileName guards the snapshot cache against concurrent sessions.
	LockFileName = "habitgrid.lock"

	// ExportVersion is the schema version stamped into clipboard exports.
	ExportVersion = "1.0"

	// ListenerMinReconnect and ListenerMaxReconnect bound the pq listener's
	// reconnection backoff.
	ListenerMinReconnect = 10 * time.Second
	ListenerMaxReconnect = time.Minute

	// Session States
	StateCalendar SessionState = iota
	StateAddHabit
	StateRenameHabit
	StateColorPicker
	StateConfirmDelete
	StateConfirmImport
)

// HabitColors is the palette offered by the color picker. The first entry
// is the default for new habits.
var HabitColors = []string{
	"#FF6B4A", // coral (default)
	"#8B5CF6", // purple
	"#3B82F6", // blue
	"#10B981", // green
	"#F59E0B", // amber
	"#EF4444", // red
	"#EC4899", // pink
	"#06B6D4", // cyan
	"#6366F1", // indigo
	"#84CC16", // lime
	"#F97316", // orange
	"#A855F7", // violet
}

// DefaultHabitColor is applied when a habit is created without a color.
var DefaultHabitColor = HabitColors[0]
