// Package chat orchestrates message sends: persist the user turn, call the
// model, persist the reply.
package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/parley-chat/parley/llm"
	"github.com/parley-chat/parley/log"
	"github.com/parley-chat/parley/storage"
)

// Completer is the model-call collaborator: an ordered list of role/content
// messages in, a single reply string out. *llm.Client satisfies it.
type Completer interface {
	Chat(ctx context.Context, messages []llm.ChatMessage) (string, error)
}

// Service coordinates storage and the model-call collaborator for one send.
//
// Safe for concurrent use. Sends on the same session are serialized so two
// in-flight sends cannot interleave their user/assistant pairs; sends on
// different sessions proceed independently.
type Service struct {
	store     storage.Store
	completer Completer
	logger    log.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewService creates a send orchestrator.
func NewService(store storage.Store, completer Completer, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{
		store:     store,
		completer: completer,
		logger:    logger,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// Send appends text as a user message, calls the model with the full
// history, appends the reply and returns the updated conversation.
// Returns (nil, nil) when the session does not exist; nothing is created
// as a side effect.
//
// If the model call fails, the user turn stays persisted and no assistant
// message is appended: the conversation is left with an unanswered user
// turn and the caller may resubmit. Retried sends are not deduplicated;
// a retry appends a fresh user turn.
func (s *Service) Send(ctx context.Context, sessionID uuid.UUID, text string) (*storage.Conversation, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.store.GetConversation(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		return nil, nil
	}

	withUser, err := s.store.AddMessage(ctx, sessionID, storage.Message{
		Role:    storage.RoleUser,
		Content: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append user message: %w", err)
	}
	if withUser == nil {
		// Deleted between the existence check and the append.
		return nil, nil
	}

	reply, err := s.completer.Chat(ctx, toChatMessages(withUser.Messages))
	if err != nil {
		s.logger.Error("model call failed",
			"session_id", sessionID,
			"error", err,
		)
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	updated, err := s.store.AddMessage(ctx, sessionID, storage.Message{
		Role:    storage.RoleAssistant,
		Content: reply,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append assistant message: %w", err)
	}
	if updated == nil {
		return nil, nil
	}

	s.logger.Debug("message sent",
		"session_id", sessionID,
		"messages", len(updated.Messages),
	)
	return updated, nil
}

// Hello sends a fixed greeting to the model and returns the reply.
// Backs the /api/hello smoke-test endpoint.
func (s *Service) Hello(ctx context.Context) (string, error) {
	reply, err := s.completer.Chat(ctx, []llm.ChatMessage{
		llm.UserMessage("Hello, world!"),
	})
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	return reply, nil
}

// sessionLock returns the mutex serializing sends for one session.
// Locks are never evicted; one mutex per session seen is small enough for
// this server's lifetime.
func (s *Service) sessionLock(sessionID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// toChatMessages converts stored messages to the collaborator's format.
func toChatMessages(messages []storage.Message) []llm.ChatMessage {
	result := make([]llm.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, llm.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return result
}
