package chat

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skillet-ai/skillet/pkg/llm"
	"github.com/skillet-ai/skillet/pkg/memory"
	"github.com/skillet-ai/skillet/pkg/rag"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.Contains(strings.ToLower(text), "doc") {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func newTestRouter(t *testing.T, mode Mode) (*Router, *llm.MockProvider) {
	t.Helper()
	mock := llm.NewMockProvider("model reply")
	chatSvc := newChatService(mock, Options{})
	ragSvc := rag.NewService(memory.NewInMemoryVectorStore(), stubEmbedder{}, mock, rag.Options{
		Collection:    "test",
		MinScore:      0.5,
		EmbedderModel: "stub-embed",
	})
	if _, err := ragSvc.IngestText(context.Background(), "doc.txt", "doc content about docs"); err != nil {
		t.Fatal(err)
	}
	agent := func(ctx context.Context, sessionID, input string) (string, error) {
		return "agent handled: " + input, nil
	}
	return NewRouter(chatSvc, ragSvc, agent, mode), mock
}

func TestRouterModeSwitch(t *testing.T) {
	r, _ := newTestRouter(t, ModeChat)
	ctx := context.Background()

	out, err := r.Handle(ctx, "s1", "/rag")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "rag") {
		t.Errorf("switch message = %q", out)
	}
	if r.SessionMode("s1") != ModeRAG {
		t.Errorf("mode = %s", r.SessionMode("s1"))
	}
	// other sessions are unaffected
	if r.SessionMode("s2") != ModeChat {
		t.Errorf("s2 mode = %s", r.SessionMode("s2"))
	}
}

func TestRouterChatMode(t *testing.T) {
	r, _ := newTestRouter(t, ModeChat)
	out, err := r.Handle(context.Background(), "s1", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if out != "model reply" {
		t.Errorf("out = %q", out)
	}
}

func TestRouterRAGMode(t *testing.T) {
	r, _ := newTestRouter(t, ModeRAG)
	out, err := r.Handle(context.Background(), "s1", "tell me about docs")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Sources: doc.txt") {
		t.Errorf("rag answer missing sources: %q", out)
	}
}

func TestRouterAgentMode(t *testing.T) {
	r, _ := newTestRouter(t, ModeAgent)
	out, err := r.Handle(context.Background(), "s1", "do a task")
	if err != nil {
		t.Fatal(err)
	}
	if out != "agent handled: do a task" {
		t.Errorf("out = %q", out)
	}
}

func TestRouterAutoMode(t *testing.T) {
	r, _ := newTestRouter(t, ModeAuto)
	ctx := context.Background()

	// relevant to the knowledge base: goes through RAG
	out, err := r.Handle(ctx, "s1", "question about docs")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Sources:") {
		t.Errorf("relevant question should use RAG: %q", out)
	}

	// irrelevant: plain chat, no footer
	out, err = r.Handle(ctx, "s1", "unrelated topic")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "Sources:") {
		t.Errorf("irrelevant question should use chat: %q", out)
	}
}

func TestRouterStats(t *testing.T) {
	r, _ := newTestRouter(t, ModeChat)
	ctx := context.Background()

	if _, err := r.Handle(ctx, "s1", "hello"); err != nil {
		t.Fatal(err)
	}
	out, err := r.Handle(ctx, "s1", "/stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2 messages") {
		t.Errorf("stats = %q", out)
	}
	if !strings.Contains(out, "Knowledge base: 1 chunks in test") {
		t.Errorf("stats missing kb count: %q", out)
	}
	if !strings.Contains(out, "embedder: stub-embed") {
		t.Errorf("stats missing embedder: %q", out)
	}
	if !strings.Contains(out, ".txt") || !strings.Contains(out, ".pdf") {
		t.Errorf("stats missing formats: %q", out)
	}
}

func TestRouterClearWipesKnowledgeBase(t *testing.T) {
	r, _ := newTestRouter(t, ModeChat)
	ctx := context.Background()

	if _, err := r.Handle(ctx, "s1", "hello"); err != nil {
		t.Fatal(err)
	}
	out, err := r.Handle(ctx, "s1", "/clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Knowledge base cleared") {
		t.Errorf("clear = %q", out)
	}

	out, _ = r.Handle(ctx, "s1", "/stats")
	if !strings.Contains(out, "0 chunks") {
		t.Errorf("chunks remain after clear: %q", out)
	}
	// conversation history is untouched
	if !strings.Contains(out, "2 messages") {
		t.Errorf("history lost by /clear: %q", out)
	}
}

func TestRouterResetClearsHistory(t *testing.T) {
	r, _ := newTestRouter(t, ModeChat)
	ctx := context.Background()

	if _, err := r.Handle(ctx, "s1", "hello"); err != nil {
		t.Fatal(err)
	}
	out, err := r.Handle(ctx, "s1", "/reset")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "history cleared") {
		t.Errorf("reset = %q", out)
	}

	out, _ = r.Handle(ctx, "s1", "/stats")
	if !strings.Contains(out, "0 messages") {
		t.Errorf("stats after reset = %q", out)
	}
	// the knowledge base is untouched
	if !strings.Contains(out, "1 chunks") {
		t.Errorf("knowledge base lost by /reset: %q", out)
	}
}

func TestRouterHelp(t *testing.T) {
	r, _ := newTestRouter(t, ModeChat)
	out, err := r.Handle(context.Background(), "s1", "/help")
	if err != nil {
		t.Fatal(err)
	}
	for _, cmd := range []string{"/chat", "/rag", "/auto", "/agent", "/stats", "/clear", "/reset"} {
		if !strings.Contains(out, cmd) {
			t.Errorf("help missing %s", cmd)
		}
	}
}

func TestRouterMissingBackends(t *testing.T) {
	chatSvc := newChatService(llm.NewMockProvider("reply"), Options{})
	r := NewRouter(chatSvc, nil, nil, ModeAgent)
	ctx := context.Background()

	out, err := r.Handle(ctx, "s1", "anything")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not available") {
		t.Errorf("out = %q", out)
	}

	if _, err := r.Handle(ctx, "s1", "/rag"); err != nil {
		t.Fatal(err)
	}
	out, err = r.Handle(ctx, "s1", "anything")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not available") {
		t.Errorf("out = %q", out)
	}

	out, err = r.Handle(ctx, "s1", "/clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not available") {
		t.Errorf("clear without rag = %q", out)
	}
}

func TestRouterHandleImage(t *testing.T) {
	r, mock := newTestRouter(t, ModeChat)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := r.HandleImage(ctx, "s1", "what is this?", path)
	if err != nil {
		t.Fatalf("HandleImage: %v", err)
	}
	if out != "model reply" {
		t.Errorf("out = %q", out)
	}

	req := mock.LastRequest()
	last := req.Messages[len(req.Messages)-1]
	if last.Content != "what is this?" {
		t.Errorf("prompt = %q", last.Content)
	}
	if len(last.Images) != 1 {
		t.Fatalf("images = %d, want 1", len(last.Images))
	}
	want := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
	if last.Images[0] != want {
		t.Errorf("image payload not base64 of the file")
	}

	// empty prompt falls back to a default
	if _, err := r.HandleImage(ctx, "s1", "", path); err != nil {
		t.Fatal(err)
	}
	req = mock.LastRequest()
	last = req.Messages[len(req.Messages)-1]
	if !strings.Contains(last.Content, "Describe this image") {
		t.Errorf("default prompt = %q", last.Content)
	}

	if _, err := r.HandleImage(ctx, "s1", "hi", filepath.Join(t.TempDir(), "notes.txt")); err == nil {
		t.Error("expected error for non-image file")
	}
}
