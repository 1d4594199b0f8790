// Package auth is the boundary to the authentication collaborator. Data
// operations require a signed-in identity; the shipped provider keeps the
// session in the OS keyring across invocations.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitgrid/internal/keyring"
)

// User is a signed-in identity.
type User struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	SignedIn time.Time `json:"signed_in"`
}

// Provider yields the current user, if any. Loading distinguishes "still
// resolving the session" from "definitely signed out".
type Provider interface {
	CurrentUser() (User, bool)
	Loading() bool
}

// KeyringProvider reads the session persisted by Login from the OS keyring.
type KeyringProvider struct {
	user   User
	signed bool
	loaded bool
}

// NewKeyringProvider resolves the stored session eagerly.
func NewKeyringProvider() *KeyringProvider {
	p := &KeyringProvider{}
	p.load()
	return p
}

func (p *KeyringProvider) load() {
	defer func() { p.loaded = true }()

	raw, err := keyring.GetSession()
	if err != nil {
		return
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		return
	}
	p.user = u
	p.signed = true
}

// CurrentUser returns the signed-in user, or false when signed out.
func (p *KeyringProvider) CurrentUser() (User, bool) {
	return p.user, p.signed
}

// Loading reports whether the session has been resolved yet.
func (p *KeyringProvider) Loading() bool {
	return !p.loaded
}

// Login stores a session for the given email. The identity is stable per
// email so signing in again on another machine maps to the same rows.
func Login(email string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, errors.New("a valid email address is required")
	}

	u := User{
		ID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
		Email:    email,
		SignedIn: time.Now(),
	}

	raw, err := json.Marshal(u)
	if err != nil {
		return User{}, fmt.Errorf("failed to serialize session: %w", err)
	}
	if err := keyring.SetSession(string(raw)); err != nil {
		return User{}, err
	}
	return u, nil
}

// Logout drops the stored session. Already signed out is not an error.
func Logout() error {
	if err := keyring.DeleteSession(); err != nil && err != keyring.ErrNotFound {
		return err
	}
	return nil
}

// StaticProvider wraps a fixed user, used by tests and one-shot commands
// that already resolved the session.
type StaticProvider struct {
	User   User
	Signed bool
}

func (p StaticProvider) CurrentUser() (User, bool) { return p.User, p.Signed }
func (p StaticProvider) Loading() bool             { return false }
