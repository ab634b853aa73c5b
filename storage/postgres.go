// Package storage: PostgreSQL conversation store.
//
// Information Hiding:
// - Pool and transaction management hidden behind the Store interface
// - Schema lives in db/migrations, applied by db.Migrate
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a network-accessible PostgreSQL
// database via a pgx connection pool.
//
// Safe for concurrent use. Appends take a row lock on the conversation,
// so concurrent appends to one session commit in a serial order; appends
// to different sessions proceed independently.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool. The caller owns the
// pool's lifecycle; run db.Migrate against the same database first.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgres connects a pool to connURL and wraps it.
func OpenPostgres(ctx context.Context, connURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// CreateConversation inserts an empty conversation row under a fresh ID.
func (s *PostgresStore) CreateConversation(ctx context.Context) (uuid.UUID, error) {
	sessionID := uuid.New()
	_, err := s.pool.Exec(ctx,
		"INSERT INTO conversations (session_id) VALUES ($1)",
		sessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return sessionID, nil
}

// pgxQuerier covers both the pool and a transaction for reads.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetConversation returns the conversation with messages in commit order,
// or nil if the session does not exist.
func (s *PostgresStore) GetConversation(ctx context.Context, sessionID uuid.UUID) (*Conversation, error) {
	return s.getConversation(ctx, s.pool, sessionID, false)
}

func (s *PostgresStore) getConversation(ctx context.Context, q pgxQuerier, sessionID uuid.UUID, forUpdate bool) (*Conversation, error) {
	query := "SELECT session_id FROM conversations WHERE session_id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	var found uuid.UUID
	err := q.QueryRow(ctx, query, sessionID).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation existence: %w", err)
	}

	rows, err := q.Query(ctx,
		"SELECT role, content FROM messages WHERE session_id = $1 ORDER BY seq ASC",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
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
func (s *PostgresStore) ListConversations(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT session_id FROM conversations ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return ids, nil
}

// AddMessage appends msg in a transaction. The FOR UPDATE existence check
// locks the conversation row, serializing appends per session. Returns nil
// if the session does not exist.
func (s *PostgresStore) AddMessage(ctx context.Context, sessionID uuid.UUID, msg Message) (*Conversation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	conv, err := s.getConversation(ctx, tx, sessionID, true)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, nil
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO messages (id, session_id, role, content) VALUES ($1, $2, $3, $4)",
		uuid.New(), sessionID, string(msg.Role), msg.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	conv.Messages = append(conv.Messages, msg)
	return conv, nil
}

// DeleteConversation removes messages first, then the conversation row,
// in one transaction. Deleting both sides explicitly keeps the operation a
// single logical step even without relying on cascade behavior.
func (s *PostgresStore) DeleteConversation(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		"DELETE FROM messages WHERE session_id = $1", sessionID); err != nil {
		return false, fmt.Errorf("failed to delete messages: %w", err)
	}

	tag, err := tx.Exec(ctx,
		"DELETE FROM conversations WHERE session_id = $1", sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ Store = (*PostgresStore)(nil)
