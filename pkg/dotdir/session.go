package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	sessionFile = "session.json"
)

// SessionState is the persisted storefront login. It holds the cookies the
// backend set on login so later commands reuse the same authenticated
// session, plus a cached copy of the user for display.
type SessionState struct {
	// BaseURL is the storefront the cookies belong to.
	BaseURL string `json:"baseUrl"`

	Cookies []SessionCookie `json:"cookies"`

	User *SessionUser `json:"user,omitempty"`

	SavedAt time.Time `json:"savedAt"`
}

// SessionCookie is a single cookie from the storefront's cookie jar.
type SessionCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitzero"`
}

// SessionUser is the cached profile of the logged in member.
type SessionUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

// LoadSession loads the session from a target .perfumery/session.json.
// Returns nil, nil if nobody is logged in.
func (m *Manager) LoadSession(overrideDir string) (*SessionState, error) {
	path, err := m.Path(overrideDir, sessionFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	state := &SessionState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}

	return state, nil
}

// SaveSession persists the session to a target .perfumery/session.json. The
// file holds credentials and is written owner-only.
func (m *Manager) SaveSession(state *SessionState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil session")
	}

	path, err := m.Path(overrideDir, sessionFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}

	return nil
}

// ClearSession removes the session file. Returns nil if it doesn't exist.
func (m *Manager) ClearSession(overrideDir string) error {
	path, err := m.Path(overrideDir, sessionFile)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing session: %w", err)
	}

	return nil
}
