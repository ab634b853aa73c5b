// Package storage: SQLite conversation store.
//
// Information Hiding:
// - Connection management hidden behind the Store interface
// - Schema details encapsulated here
// - Thread-safe via sql.DB's built-in connection pooling
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore implements Store on a single-file SQLite database.
// Thread-safe: sql.DB handles connection pooling and concurrent access;
// WAL mode lets readers proceed alongside the single writer.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// A single conn keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES conversations(session_id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_messages_session
		ON messages(session_id, created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateConversation inserts an empty conversation row under a fresh ID.
func (s *SqliteStore) CreateConversation(ctx context.Context) (uuid.UUID, error) {
	sessionID := uuid.New()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (session_id) VALUES (?)",
		sessionID.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return sessionID, nil
}

// GetConversation returns the conversation with messages in insertion order,
// or nil if the session does not exist.
func (s *SqliteStore) GetConversation(ctx context.Context, sessionID uuid.UUID) (*Conversation, error) {
	return s.getConversation(ctx, s.db, sessionID)
}

// querier covers both *sql.DB and *sql.Tx so reads can run inside the
// append transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SqliteStore) getConversation(ctx context.Context, q querier, sessionID uuid.UUID) (*Conversation, error) {
	var exists int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE session_id = ?",
		sessionID.String()).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation existence: %w", err)
	}
	if exists == 0 {
		return nil, nil
	}

	// rowid breaks same-second created_at ties, keeping insertion order.
	rows, err := q.QueryContext(ctx,
		"SELECT role, content FROM messages WHERE session_id = ? ORDER BY created_at ASC, rowid ASC",
		sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{} // empty slice, not nil
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return &Conversation{SessionID: sessionID, Messages: messages}, nil
}

// ListConversations returns all session IDs, most recently created first.
func (s *SqliteStore) ListConversations(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id FROM conversations ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid session id %q in database: %w", raw, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return ids, nil
}

// AddMessage appends msg inside a transaction: existence check, insert,
// re-read. Returns nil if the session does not exist; nothing is created as
// a side effect.
func (s *SqliteStore) AddMessage(ctx context.Context, sessionID uuid.UUID, msg Message) (*Conversation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversations WHERE session_id = ?",
		sessionID.String()).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation existence: %w", err)
	}
	if exists == 0 {
		return nil, nil
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO messages (id, session_id, role, content) VALUES (?, ?, ?, ?)",
		uuid.New().String(), sessionID.String(), string(msg.Role), msg.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	conv, err := s.getConversation(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return conv, nil
}

// DeleteConversation removes the conversation row; messages go with it via
// ON DELETE CASCADE. Reports whether a row existed.
func (s *SqliteStore) DeleteConversation(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM conversations WHERE session_id = ?",
		sessionID.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

var _ Store = (*SqliteStore)(nil)
