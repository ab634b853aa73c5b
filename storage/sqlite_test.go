package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSqliteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "chat.db")
	ctx := context.Background()

	store, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite failed: %v", err)
	}

	sessionID, err := store.CreateConversation(ctx)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if _, err := store.AddMessage(ctx, sessionID, Message{Role: RoleUser, Content: "persist me"}); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite after close failed: %v", err)
	}
	defer reopened.Close()

	conv, err := reopened.GetConversation(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if conv == nil {
		t.Fatal("expected conversation to survive reopen")
	}
	if len(conv.Messages) != 1 || conv.Messages[0].Content != "persist me" {
		t.Errorf("unexpected history after reopen: %+v", conv.Messages)
	}
}

func TestSqliteStoreCascadeDelete(t *testing.T) {
	store, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("NewSqliteInMemory failed: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	sessionID, err := store.CreateConversation(ctx)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	for _, content := range []string{"one", "two", "three"} {
		if _, err := store.AddMessage(ctx, sessionID, Message{Role: RoleUser, Content: content}); err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}
	}

	if _, err := store.DeleteConversation(ctx, sessionID); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}

	// The message rows must be gone with the conversation row.
	var orphans int
	err = store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE session_id = ?",
		sessionID.String()).Scan(&orphans)
	if err != nil {
		t.Fatalf("failed to count messages: %v", err)
	}
	if orphans != 0 {
		t.Errorf("expected cascade delete, found %d orphan messages", orphans)
	}
}
