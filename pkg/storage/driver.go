// Package storage persists chat transcripts: sessions with the assistant and
// the ordered turns exchanged in them.
package storage

import (
	"context"
	"time"
)

// Roles of a Turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is one conversation with the fragrance assistant.
type Session struct {
	ID string `json:"id"`

	// Title is the first question asked in the session.
	Title string `json:"title"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// TurnCount is filled in by GetSession and ListSessions.
	TurnCount int `json:"turn_count"`
}

// Turn is a single message in a session.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Cancelled marks an assistant reply cut short by the user. Content holds
	// whatever had streamed before the cancel.
	Cancelled bool `json:"cancelled,omitempty"`
}

// Driver defines the interface for persisting and retrieving transcripts.
type Driver interface {
	// CreateSession stores a new session. Creating a session that already
	// exists is a no-op.
	CreateSession(ctx context.Context, session *Session) error

	// AppendTurn adds a turn to an existing session and bumps the session's
	// UpdatedAt. Returns NotFoundError when the session does not exist.
	AppendTurn(ctx context.Context, turn *Turn) error

	// GetSession retrieves a session by its id.
	GetSession(ctx context.Context, id string) (*Session, error)

	// ListSessions returns sessions, most recently updated first. A limit of
	// zero or less returns all of them.
	ListSessions(ctx context.Context, limit int) ([]*Session, error)

	// Turns returns the turns of a session in the order they were added.
	Turns(ctx context.Context, sessionID string) ([]*Turn, error)

	// Close closes the store and releases any resources.
	Close() error
}
