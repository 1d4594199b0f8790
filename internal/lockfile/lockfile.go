// Package lockfile guards the interactive session with a PID lockfile so
// two instances never share the local snapshot database.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"habitgrid/internal/constants"
)

var findProcessFunc = ps.FindProcess

// Lock is a held lockfile. Release removes it.
type Lock struct {
	path string
}

// Acquire writes a PID lockfile in the config directory. A lockfile whose
// PID no longer maps to a running habitgrid process is stale and is
// replaced silently.
func Acquire(configDir string) (*Lock, error) {
	path := filepath.Join(configDir, constants.LockFileName)

	if pid, err := readPID(path); err == nil {
		if alive(pid) {
			return nil, fmt.Errorf("another %s session is already running (pid %d)", constants.AppName, pid)
		}
		// Stale lock from a crashed session.
		_ = os.Remove(path)
	}

	content := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lockfile. A missing file is not an error.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// Check reports whether a live session holds the lock, for diagnostics.
func Check(configDir string) (bool, int) {
	pid, err := readPID(filepath.Join(configDir, constants.LockFileName))
	if err != nil {
		return false, 0
	}
	return alive(pid), pid
}

func readPID(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, errors.New("lockfile is malformed")
	}
	return pid, nil
}

func alive(pid int) bool {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(process.Executable(), constants.AppName)
}
