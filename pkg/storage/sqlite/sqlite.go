// Package sqlite provides a SQLite-backed transcript store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scentshop/perfumery/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	cancelled  INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS turns_session_seq ON turns (session_id, seq);
CREATE INDEX IF NOT EXISTS sessions_updated ON sessions (updated_at DESC);
`

// SQLiteDriver implements storage.Driver using SQLite.
type SQLiteDriver struct {
	db *sql.DB
}

// NewSQLiteDriver creates a new SQLite-backed store and creates the schema
// if needed. The dbPath can be a file path or ":memory:" for an in-memory
// database.
func NewSQLiteDriver(dbPath string) (*SQLiteDriver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is its own database, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	// SQLite-specific pragmas
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteDriver{db: db}, nil
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// CreateSession stores session unless one with the same id exists.
func (d *SQLiteDriver) CreateSession(ctx context.Context, session *storage.Session) error {
	if session == nil {
		return errors.New("cannot store nil session")
	}
	if session.ID == "" {
		return errors.New("session id is required")
	}

	updated := session.UpdatedAt
	if updated.IsZero() {
		updated = session.CreatedAt
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.Title, toUnix(session.CreatedAt), toUnix(updated),
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", session.ID, err)
	}
	return nil
}

// AppendTurn stores turn after the existing turns of its session.
func (d *SQLiteDriver) AppendTurn(ctx context.Context, turn *storage.Turn) error {
	if turn == nil {
		return errors.New("cannot store nil turn")
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET updated_at = MAX(updated_at, ?) WHERE id = ?`,
		toUnix(turn.CreatedAt), turn.SessionID,
	)
	if err != nil {
		return fmt.Errorf("touching session %s: %w", turn.SessionID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.NotFoundError{ID: turn.SessionID}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, role, content, cancelled, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		turn.ID, turn.SessionID, turn.Role, turn.Content, turn.Cancelled, toUnix(turn.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting turn %s: %w", turn.ID, err)
	}

	return tx.Commit()
}

const sessionColumns = `s.id, s.title, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM turns t WHERE t.session_id = s.id)`

func scanSession(row interface{ Scan(...any) error }) (*storage.Session, error) {
	var (
		s                storage.Session
		created, updated int64
	)
	if err := row.Scan(&s.ID, &s.Title, &created, &updated, &s.TurnCount); err != nil {
		return nil, err
	}
	s.CreatedAt = fromUnix(created)
	s.UpdatedAt = fromUnix(updated)
	return &s, nil
}

// GetSession retrieves a session by its id.
func (d *SQLiteDriver) GetSession(ctx context.Context, id string) (*storage.Session, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.id = ?`, id)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}
	return session, nil
}

// ListSessions returns sessions, most recently updated first.
func (d *SQLiteDriver) ListSessions(ctx context.Context, limit int) ([]*storage.Session, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions s ORDER BY s.updated_at DESC, s.id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*storage.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Turns returns the turns of a session in insertion order.
func (d *SQLiteDriver) Turns(ctx context.Context, sessionID string) ([]*storage.Turn, error) {
	if _, err := d.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, cancelled, created_at FROM turns WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	turns := []*storage.Turn{}
	for rows.Next() {
		var (
			t       storage.Turn
			created int64
		)
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.Cancelled, &created); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.CreatedAt = fromUnix(created)
		turns = append(turns, &t)
	}
	return turns, rows.Err()
}

// Close closes the database.
func (d *SQLiteDriver) Close() error {
	return d.db.Close()
}
