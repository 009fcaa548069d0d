package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const (
	RoleUser  = "user"
	RoleTutor = "assistant"
)

// Turn is one utterance in a session's conversation history.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// History is a per-session ordered log of conversation turns. Turns are
// appended in receipt order and read back oldest first. Sessions are never
// expired by this interface; retention belongs to the backing store.
type History interface {
	Append(ctx context.Context, sessionID string, turns ...Turn) error
	Read(ctx context.Context, sessionID string) ([]Turn, error)
	Close() error
}

// Store is the SQLite-backed History implementation.
type Store struct {
	DB *sql.DB
}

var _ History = (*Store)(nil)

// Open opens (creating if needed) the SQLite database at path and runs
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, id);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Append writes turns to the session's history in the given order, in one
// transaction.
func (s *Store) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, t := range turns {
		at := t.CreatedAt
		if at.IsZero() {
			at = time.Now()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns(session_id, role, content, created_at) VALUES(?,?,?,?)`,
			sessionID, t.Role, t.Content, at.Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert turn: %w", err)
		}
	}
	return tx.Commit()
}

// Read returns the session's turns oldest first. An unknown session yields an
// empty history, not an error.
func (s *Store) Read(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT role, content, created_at FROM turns WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var at int64
		if err := rows.Scan(&t.Role, &t.Content, &at); err != nil {
			return nil, err
		}
		t.CreatedAt = time.Unix(at, 0)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
