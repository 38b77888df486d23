package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaProvider talks to a local Ollama server over its /api/chat
// endpoint. Messages carrying Images are forwarded as-is; Ollama routes
// them to vision-capable models.
type OllamaProvider struct {
	baseURL string
	client  *http.Client
}

var _ StreamingProvider = (*OllamaProvider)(nil)

// OllamaOption configures the provider.
type OllamaOption func(*OllamaProvider)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) OllamaOption {
	return func(p *OllamaProvider) {
		if c != nil {
			p.client = c
		}
	}
}

// NewOllama creates a provider for the server at baseURL, defaulting to
// http://localhost:11434.
func NewOllama(baseURL string, opts ...OllamaOption) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	p := &OllamaProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type chatPayload struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Tools    []Tool         `json:"tools,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

// chatEvent is one /api/chat response object. Non-streaming calls get
// exactly one with Done set; NDJSON streams get one per line.
type chatEvent struct {
	Message         Message `json:"message"`
	Done            bool    `json:"done"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

func (e chatEvent) usage() Usage {
	return Usage{
		PromptTokens:     e.PromptEvalCount,
		CompletionTokens: e.EvalCount,
		TotalTokens:      e.PromptEvalCount + e.EvalCount,
	}
}

func (p *OllamaProvider) post(ctx context.Context, req ChatRequest, stream bool) (*http.Response, error) {
	payload := chatPayload{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   stream,
		Tools:    req.Tools,
	}
	if req.Temperature != 0 {
		payload.Options = map[string]any{"temperature": req.Temperature}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama chat call failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return resp, nil
}

// Chat sends a non-streaming chat request.
func (p *OllamaProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	resp, err := p.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var event chatEvent
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}

	return &ChatResponse{
		Content:   event.Message.Content,
		ToolCalls: event.Message.ToolCalls,
		Usage:     event.usage(),
	}, nil
}

// ChatStream sends a streaming chat request and returns a channel of
// chunks. The channel closes after the final chunk, which carries Done,
// any tool calls and the usage totals.
func (p *OllamaProvider) ChatStream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	resp, err := p.post(ctx, req, true)
	if err != nil {
		return nil, err
	}

	chunks := make(chan StreamChunk, 100)
	go p.readStream(ctx, resp.Body, chunks)
	return chunks, nil
}

// readStream consumes the NDJSON body line by line until the done event
// or an error. Ollama sends tool calls whole, not as deltas, so the
// last set seen wins.
func (p *OllamaProvider) readStream(ctx context.Context, body io.ReadCloser, chunks chan<- StreamChunk) {
	defer close(chunks)
	defer body.Close()

	scanner := bufio.NewReader(body)
	var toolCalls []ToolCall

	for {
		if err := ctx.Err(); err != nil {
			chunks <- StreamChunk{Error: err}
			return
		}

		line, err := scanner.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				chunks <- StreamChunk{Error: err}
			}
			return
		}

		var event chatEvent
		if err := json.Unmarshal(line, &event); err != nil {
			// skip malformed lines
			continue
		}

		if len(event.Message.ToolCalls) > 0 {
			toolCalls = event.Message.ToolCalls
		}

		if event.Done {
			usage := event.usage()
			chunks <- StreamChunk{Done: true, ToolCalls: toolCalls, Usage: &usage}
			return
		}

		if event.Message.Content != "" {
			chunks <- StreamChunk{Content: event.Message.Content}
		}
	}
}
