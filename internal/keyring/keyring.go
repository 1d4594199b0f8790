package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"habitgrid/internal/constants"
)

var (
	// ErrNotFound is returned when the requested secret is not in the keyring
	ErrNotFound = errors.New("not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetConnectionString retrieves the database connection string from the OS
// keyring. Returns ErrNotFound if none is stored.
func GetConnectionString() (string, error) {
	return get(constants.DefaultKeyringUser)
}

// SetConnectionString stores the database connection string in the OS keyring.
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	return set(constants.DefaultKeyringUser, connStr)
}

// DeleteConnectionString removes the database connection string from the OS keyring.
func DeleteConnectionString() error {
	return del(constants.DefaultKeyringUser)
}

// GetSession retrieves the serialized signed-in session.
func GetSession() (string, error) {
	return get(constants.SessionKeyringUser)
}

// SetSession stores the serialized signed-in session.
func SetSession(session string) error {
	if session == "" {
		return errors.New("session cannot be empty")
	}
	return set(constants.SessionKeyringUser, session)
}

// DeleteSession removes the stored session.
func DeleteSession() error {
	return del(constants.SessionKeyringUser)
}

// IsAvailable checks if the OS keyring is usable on this system. Best
// effort: a read that fails with anything other than "not found" means the
// backend is missing or locked.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || err == keyring.ErrNotFound
}

func get(user string) (string, error) {
	v, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func set(user, value string) error {
	if err := keyring.Set(constants.AppName, user, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", user, err)
	}
	return nil
}

func del(user string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", user, err)
	}
	return nil
}
