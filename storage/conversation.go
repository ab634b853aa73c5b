// Package storage provides conversation persistence.
//
// Information Hiding:
// - Storage backend implementation details hidden behind the Store interface
// - Allows swapping between memory, SQLite and Postgres without API changes
// - Each backend encapsulates its own data structures and schema
package storage

import (
	"context"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks a message submitted by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a reply produced by the model.
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single turn in a conversation. Immutable once stored.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the persisted unit of chat history, keyed by session ID.
// A conversation with zero messages is valid and distinct from a
// conversation that does not exist.
type Conversation struct {
	SessionID uuid.UUID `json:"sessionId"`
	Messages  []Message `json:"messages"`
}

// Store is the conversation storage contract. All backends behave
// identically; the conformance suite in conformance_test.go holds them to it.
//
// Absence of a session is an expected condition, not an error: lookups on an
// unknown or deleted session ID return a nil conversation (or false for
// DeleteConversation) with a nil error. Errors are reserved for backend
// failures (disk, network) and are never retried internally.
type Store interface {
	// CreateConversation allocates a fresh session ID, persists an empty
	// conversation and returns the ID.
	CreateConversation(ctx context.Context) (uuid.UUID, error)

	// GetConversation returns the conversation with its full ordered message
	// list, or nil if no such session exists.
	GetConversation(ctx context.Context, sessionID uuid.UUID) (*Conversation, error)

	// ListConversations returns the IDs of every existing conversation.
	// Order is stable within one call; most-recent-first where the backend
	// tracks creation time, but callers must not rely on it.
	ListConversations(ctx context.Context) ([]uuid.UUID, error)

	// AddMessage appends msg as the new last message and returns the updated
	// conversation, or nil if no such session exists. The append is atomic:
	// either the message is durably stored and reflected in the returned
	// conversation, or nothing changes.
	AddMessage(ctx context.Context, sessionID uuid.UUID, msg Message) (*Conversation, error)

	// DeleteConversation removes the conversation and all its messages and
	// reports whether a conversation existed to delete. Deleting an absent
	// session is a no-op returning false.
	DeleteConversation(ctx context.Context, sessionID uuid.UUID) (bool, error)
}
