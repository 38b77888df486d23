package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaChat(t *testing.T) {
	var got chatPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{
			"message": {"role": "assistant", "content": "hi there"},
			"done": true,
			"prompt_eval_count": 12,
			"eval_count": 5
		}`)
	}))
	defer srv.Close()

	p := NewOllama(srv.URL)
	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:       "gemma3:4b",
		Messages:    []Message{{Role: RoleUser, Content: "hello"}},
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if resp.Content != "hi there" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 17 {
		t.Errorf("TotalTokens = %d, want 17", resp.Usage.TotalTokens)
	}

	if got.Model != "gemma3:4b" {
		t.Errorf("request model = %q", got.Model)
	}
	if got.Stream {
		t.Error("non-streaming call sent stream=true")
	}
	if temp, ok := got.Options["temperature"]; !ok || temp != 0.7 {
		t.Errorf("temperature option = %v", got.Options)
	}
}

func TestOllamaChatToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{"type": "function", "function": {"name": "add", "arguments": "{\"a\":1,\"b\":2}"}}]
			},
			"done": true
		}`)
	}))
	defer srv.Close()

	resp, err := NewOllama(srv.URL).Chat(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Function.Name != "add" {
		t.Errorf("ToolCalls = %+v", resp.ToolCalls)
	}
}

func TestOllamaChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewOllama(srv.URL).Chat(context.Background(), ChatRequest{Model: "nope"}); err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestOllamaChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message": {"role": "assistant", "content": "hel"}, "done": false}`)
		fmt.Fprintln(w, `{"message": {"role": "assistant", "content": "lo"}, "done": false}`)
		fmt.Fprintln(w, `{"message": {"role": "assistant", "content": ""}, "done": true, "prompt_eval_count": 3, "eval_count": 2}`)
	}))
	defer srv.Close()

	chunks, err := NewOllama(srv.URL).ChatStream(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	var content string
	var final *StreamChunk
	for chunk := range chunks {
		if chunk.Error != nil {
			t.Fatalf("chunk error: %v", chunk.Error)
		}
		content += chunk.Content
		if chunk.Done {
			c := chunk
			final = &c
		}
	}

	if content != "hello" {
		t.Errorf("streamed content = %q", content)
	}
	if final == nil {
		t.Fatal("no done chunk received")
	}
	if final.Usage == nil || final.Usage.TotalTokens != 5 {
		t.Errorf("final usage = %+v", final.Usage)
	}
}
