package storage_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/parley-chat/parley/db"
	"github.com/parley-chat/parley/storage"
)

// backends under test. All implementations must satisfy the Store contract
// identically; every test below runs against each backend.
func backends(t *testing.T) map[string]func(t *testing.T) storage.Store {
	t.Helper()
	return map[string]func(t *testing.T) storage.Store{
		"memory": func(t *testing.T) storage.Store {
			return storage.NewMemoryStore()
		},
		"sqlite": func(t *testing.T) storage.Store {
			store, err := storage.NewSqliteInMemory()
			if err != nil {
				t.Fatalf("failed to create sqlite store: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
		"postgres": func(t *testing.T) storage.Store {
			connURL := os.Getenv("PARLEY_TEST_DATABASE_URL")
			if connURL == "" {
				t.Skip("PARLEY_TEST_DATABASE_URL not set")
			}
			if err := db.Migrate(connURL); err != nil {
				t.Fatalf("failed to migrate: %v", err)
			}
			store, err := storage.OpenPostgres(context.Background(), connURL)
			if err != nil {
				t.Fatalf("failed to open postgres store: %v", err)
			}
			t.Cleanup(store.Close)
			return store
		},
	}
}

func forEachBackend(t *testing.T, test func(t *testing.T, store storage.Store)) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			test(t, newStore(t))
		})
	}
}

func TestCreateConversationDistinctIDs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		first, err := store.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
		second, err := store.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
		if first == second {
			t.Errorf("expected distinct session IDs, both were %s", first)
		}
	})
}

func TestFreshConversationIsEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		sessionID, err := store.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}

		conv, err := store.GetConversation(ctx, sessionID)
		if err != nil {
			t.Fatalf("GetConversation failed: %v", err)
		}
		if conv == nil {
			t.Fatal("expected conversation, got not-found")
		}
		if conv.SessionID != sessionID {
			t.Errorf("expected session ID %s, got %s", sessionID, conv.SessionID)
		}
		if conv.Messages == nil {
			t.Error("expected empty message slice, got nil")
		}
		if len(conv.Messages) != 0 {
			t.Errorf("expected 0 messages, got %d", len(conv.Messages))
		}
	})
}

func TestGetConversationUnknownID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Store) {
		conv, err := store.GetConversation(context.Background(), uuid.New())
		if err != nil {
			t.Fatalf("GetConversation failed: %v", err)
		}
		if conv != nil {
			t.Errorf("expected not-found, got %+v", conv)
		}
	})
}

func TestAddMessageUnknownID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()
		sessionID := uuid.New()

		conv, err := store.AddMessage(ctx, sessionID, storage.Message{
			Role:    storage.RoleUser,
			Content: "orphan",
		})
		if err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}
		if conv != nil {
			t.Errorf("expected not-found, got %+v", conv)
		}

		// The failed append must not create a conversation as a side effect.
		got, err := store.GetConversation(ctx, sessionID)
		if err != nil {
			t.Fatalf("GetConversation failed: %v", err)
		}
		if got != nil {
			t.Errorf("append to unknown session created a conversation: %+v", got)
		}
	})
}

func TestAddMessageReturnsUpdatedConversation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		sessionID, err := store.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}

		conv, err := store.AddMessage(ctx, sessionID, storage.Message{
			Role:    storage.RoleUser,
			Content: "Hello",
		})
		if err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}
		if conv == nil {
			t.Fatal("expected conversation, got not-found")
		}
		if len(conv.Messages) != 1 {
			t.Fatalf("expected 1 message, got %d", len(conv.Messages))
		}
		if conv.Messages[0].Role != storage.RoleUser || conv.Messages[0].Content != "Hello" {
			t.Errorf("unexpected message: %+v", conv.Messages[0])
		}
	})
}

func TestMessageOrderPreserved(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		sessionID, err := store.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
		other, err := store.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}

		// Interleave appends to another session; they must not disturb the
		// order observed on this one.
		for i := 0; i < 10; i++ {
			content := fmt.Sprintf("message %d", i)
			if _, err := store.AddMessage(ctx, sessionID, storage.Message{Role: storage.RoleUser, Content: content}); err != nil {
				t.Fatalf("AddMessage failed: %v", err)
			}
			if _, err := store.AddMessage(ctx, other, storage.Message{Role: storage.RoleAssistant, Content: "noise"}); err != nil {
				t.Fatalf("AddMessage failed: %v", err)
			}
		}

		conv, err := store.GetConversation(ctx, sessionID)
		if err != nil {
			t.Fatalf("GetConversation failed: %v", err)
		}
		if conv == nil {
			t.Fatal("expected conversation, got not-found")
		}
		if len(conv.Messages) != 10 {
			t.Fatalf("expected 10 messages, got %d", len(conv.Messages))
		}
		for i, msg := range conv.Messages {
			want := fmt.Sprintf("message %d", i)
			if msg.Content != want {
				t.Errorf("message %d: expected %q, got %q", i, want, msg.Content)
			}
		}
	})
}

func TestListConversationsContainsCreated(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		first, err := store.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
		second, err := store.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}

		ids, err := store.ListConversations(ctx)
		if err != nil {
			t.Fatalf("ListConversations failed: %v", err)
		}
		if !containsID(ids, first) || !containsID(ids, second) {
			t.Errorf("listing %v missing created sessions %s, %s", ids, first, second)
		}
	})
}

func TestDeleteConversation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		sessionID, err := store.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
		if _, err := store.AddMessage(ctx, sessionID, storage.Message{Role: storage.RoleUser, Content: "doomed"}); err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}

		deleted, err := store.DeleteConversation(ctx, sessionID)
		if err != nil {
			t.Fatalf("DeleteConversation failed: %v", err)
		}
		if !deleted {
			t.Error("expected delete to report an existing conversation")
		}

		conv, err := store.GetConversation(ctx, sessionID)
		if err != nil {
			t.Fatalf("GetConversation failed: %v", err)
		}
		if conv != nil {
			t.Errorf("expected not-found after delete, got %+v", conv)
		}

		ids, err := store.ListConversations(ctx)
		if err != nil {
			t.Fatalf("ListConversations failed: %v", err)
		}
		if containsID(ids, sessionID) {
			t.Errorf("deleted session %s still listed", sessionID)
		}
	})
}

func TestDeleteConversationIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()

		sessionID, err := store.CreateConversation(ctx)
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}

		if _, err := store.DeleteConversation(ctx, sessionID); err != nil {
			t.Fatalf("DeleteConversation failed: %v", err)
		}
		deleted, err := store.DeleteConversation(ctx, sessionID)
		if err != nil {
			t.Fatalf("DeleteConversation failed: %v", err)
		}
		if deleted {
			t.Error("expected second delete to report false")
		}
	})
}

func TestDeleteConversationAbsent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store storage.Store) {
		deleted, err := store.DeleteConversation(context.Background(), uuid.New())
		if err != nil {
			t.Fatalf("DeleteConversation failed: %v", err)
		}
		if deleted {
			t.Error("expected delete of absent session to report false")
		}
	})
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
