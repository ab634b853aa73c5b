// Package storage: in-memory conversation store.
//
// Information Hiding:
// - Map layout and locking hidden behind the Store interface
// - Suitable for tests and disposable deployments; no durability
package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store with a process-local map. Data is lost when
// the process terminates. Safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex
	// conversations holds the ordered message slice per session. Message
	// order is the slice order; the map itself carries no ordering.
	conversations map[uuid.UUID][]Message
	// order tracks creation order so listings stay stable across calls.
	order []uuid.UUID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[uuid.UUID][]Message),
	}
}

// CreateConversation allocates a fresh session ID with an empty history.
func (s *MemoryStore) CreateConversation(ctx context.Context) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID := uuid.New()
	s.conversations[sessionID] = []Message{}
	s.order = append(s.order, sessionID)
	return sessionID, nil
}

// GetConversation returns a copy of the conversation, or nil if absent.
func (s *MemoryStore) GetConversation(ctx context.Context, sessionID uuid.UUID) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.conversations[sessionID]
	if !ok {
		return nil, nil
	}
	return &Conversation{SessionID: sessionID, Messages: copyMessages(history)}, nil
}

// ListConversations returns all session IDs, most recently created first.
func (s *MemoryStore) ListConversations(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		ids = append(ids, s.order[i])
	}
	return ids, nil
}

// AddMessage appends msg to the session's history, or returns nil if the
// session does not exist. Never creates a conversation as a side effect.
func (s *MemoryStore) AddMessage(ctx context.Context, sessionID uuid.UUID, msg Message) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.conversations[sessionID]
	if !ok {
		return nil, nil
	}
	history = append(history, msg)
	s.conversations[sessionID] = history
	return &Conversation{SessionID: sessionID, Messages: copyMessages(history)}, nil
}

// DeleteConversation removes the session and reports whether it existed.
func (s *MemoryStore) DeleteConversation(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.conversations[sessionID]
	if !ok {
		return false, nil
	}
	delete(s.conversations, sessionID)
	for i, id := range s.order {
		if id == sessionID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// copyMessages returns a fresh slice so callers cannot mutate stored history.
func copyMessages(history []Message) []Message {
	copied := make([]Message, len(history))
	copy(copied, history)
	return copied
}

var _ Store = (*MemoryStore)(nil)
