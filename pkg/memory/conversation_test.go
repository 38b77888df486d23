package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func testConversationStores(t *testing.T, config ConversationConfig) map[string]ConversationStore {
	t.Helper()
	sqlite, err := OpenSQLiteConversation(filepath.Join(t.TempDir(), "conv.db"), config)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]ConversationStore{
		"inmemory": NewInMemoryConversation(config),
		"sqlite":   sqlite,
	}
}

func TestConversationAppendAndMessages(t *testing.T) {
	for name, store := range testConversationStores(t, ConversationConfig{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().Add(-time.Minute)
			for i := 0; i < 3; i++ {
				err := store.AppendMessage(ctx, "s1", ConversationMessage{
					Role:      "user",
					Content:   fmt.Sprintf("msg %d", i),
					CreatedAt: base.Add(time.Duration(i) * time.Second),
				})
				if err != nil {
					t.Fatalf("AppendMessage: %v", err)
				}
			}
			store.AppendMessage(ctx, "s2", ConversationMessage{Role: "user", Content: "other session"})

			msgs, err := store.Messages(ctx, "s1")
			if err != nil {
				t.Fatalf("Messages: %v", err)
			}
			if len(msgs) != 3 {
				t.Fatalf("got %d messages, want 3", len(msgs))
			}
			for i, m := range msgs {
				if m.Content != fmt.Sprintf("msg %d", i) {
					t.Errorf("message %d out of order: %q", i, m.Content)
				}
				if m.ID == "" {
					t.Error("message ID not assigned")
				}
				if m.SessionID != "s1" {
					t.Errorf("SessionID = %q", m.SessionID)
				}
			}

			n, err := store.Count(ctx, "s1")
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if n != 3 {
				t.Errorf("Count = %d, want 3", n)
			}
		})
	}
}

func TestConversationClear(t *testing.T) {
	for name, store := range testConversationStores(t, ConversationConfig{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store.AppendMessage(ctx, "s1", ConversationMessage{Role: "user", Content: "hello"})
			if err := store.Clear(ctx, "s1"); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			msgs, err := store.Messages(ctx, "s1")
			if err != nil {
				t.Fatalf("Messages: %v", err)
			}
			if len(msgs) != 0 {
				t.Errorf("got %d messages after clear", len(msgs))
			}
		})
	}
}

func TestConversationWindowTruncation(t *testing.T) {
	config := ConversationConfig{Truncation: &WindowStrategy{MaxMessages: 4}}
	for name, store := range testConversationStores(t, config) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().Add(-time.Minute)
			for i := 0; i < 10; i++ {
				store.AppendMessage(ctx, "s1", ConversationMessage{
					Role:      "user",
					Content:   fmt.Sprintf("msg %d", i),
					CreatedAt: base.Add(time.Duration(i) * time.Second),
				})
			}

			msgs, err := store.Messages(ctx, "s1")
			if err != nil {
				t.Fatalf("Messages: %v", err)
			}
			if len(msgs) != 4 {
				t.Fatalf("got %d messages, want window of 4", len(msgs))
			}
			if msgs[0].Content != "msg 6" || msgs[3].Content != "msg 9" {
				t.Errorf("wrong window: first=%q last=%q", msgs[0].Content, msgs[3].Content)
			}

			// Count reports the full stored history
			n, _ := store.Count(ctx, "s1")
			if n != 10 {
				t.Errorf("Count = %d, want 10", n)
			}
		})
	}
}

func TestWindowStrategyKeepsSystemMessages(t *testing.T) {
	w := &WindowStrategy{MaxMessages: 3, KeepSystemMessages: true}
	msgs := []ConversationMessage{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "u1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "u2"},
		{Role: "assistant", Content: "a2"},
	}
	out, err := w.Truncate(context.Background(), msgs)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d messages, want 3", len(out))
	}
	if out[0].Role != "system" {
		t.Errorf("system message not preserved: %+v", out[0])
	}
	if out[1].Content != "u2" || out[2].Content != "a2" {
		t.Errorf("wrong tail kept: %+v", out[1:])
	}
}

func TestSQLiteConversationMetadataRoundTrip(t *testing.T) {
	store, err := OpenSQLiteConversation(filepath.Join(t.TempDir(), "conv.db"), ConversationConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	err = store.AppendMessage(ctx, "s1", ConversationMessage{
		Role:       "tool",
		Content:    "42",
		ToolCallID: "call-1",
		Metadata:   map[string]string{"tool": "add"},
	})
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	msgs, err := store.Messages(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if msgs[0].ToolCallID != "call-1" {
		t.Errorf("ToolCallID = %q", msgs[0].ToolCallID)
	}
	if msgs[0].Metadata["tool"] != "add" {
		t.Errorf("Metadata = %v", msgs[0].Metadata)
	}
}
