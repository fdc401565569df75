// Package inmemory provides a storage.Driver that keeps transcripts in memory.
package inmemory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/scentshop/perfumery/pkg/storage"
)

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu is a read write sync mutex for locking the sessions and turns
	mu sync.RWMutex

	// sessions is keyed by session id
	sessions map[string]*storage.Session

	// turns holds each session's turns in insertion order
	turns map[string][]*storage.Turn
}

// NewDriver creates a new in-memory transcript store.
func NewDriver() *Driver {
	return &Driver{
		sessions: make(map[string]*storage.Session),
		turns:    make(map[string][]*storage.Turn),
	}
}

// CreateSession stores a copy of session unless one with the same id exists.
func (s *Driver) CreateSession(_ context.Context, session *storage.Session) error {
	if session == nil {
		return errors.New("cannot store nil session")
	}
	if session.ID == "" {
		return errors.New("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return nil
	}

	stored := *session
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	s.sessions[session.ID] = &stored
	return nil
}

// AppendTurn stores a copy of turn at the end of its session.
func (s *Driver) AppendTurn(_ context.Context, turn *storage.Turn) error {
	if turn == nil {
		return errors.New("cannot store nil turn")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[turn.SessionID]
	if !ok {
		return storage.NotFoundError{ID: turn.SessionID}
	}

	stored := *turn
	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], &stored)
	if turn.CreatedAt.After(session.UpdatedAt) {
		session.UpdatedAt = turn.CreatedAt
	}
	return nil
}

// GetSession retrieves a session by its id.
func (s *Driver) GetSession(_ context.Context, id string) (*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}
	return s.snapshot(session), nil
}

// ListSessions returns sessions, most recently updated first.
func (s *Driver) ListSessions(_ context.Context, limit int) ([]*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*storage.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, s.snapshot(session))
	}

	slices.SortFunc(sessions, func(a, b *storage.Session) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Turns returns copies of a session's turns in insertion order.
func (s *Driver) Turns(_ context.Context, sessionID string) ([]*storage.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, storage.NotFoundError{ID: sessionID}
	}

	turns := make([]*storage.Turn, 0, len(s.turns[sessionID]))
	for _, t := range s.turns[sessionID] {
		c := *t
		turns = append(turns, &c)
	}
	return turns, nil
}

// Close is a no-op for the in-memory driver.
func (s *Driver) Close() error {
	return nil
}

func (s *Driver) snapshot(session *storage.Session) *storage.Session {
	c := *session
	c.TurnCount = len(s.turns[session.ID])
	return &c
}
