package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skillet-ai/skillet/pkg/errors"
	"github.com/skillet-ai/skillet/pkg/llm"
	"github.com/skillet-ai/skillet/pkg/memory"
)

// Options configures a chat Service.
type Options struct {
	Model        string
	SystemPrompt string
	Temperature  float64
	// MaxHistory bounds how many messages are replayed to the model.
	// Zero means the default of 20.
	MaxHistory int
}

// Service runs multi-turn conversations against an LLM provider with
// persistent per-session history.
type Service struct {
	provider llm.Provider
	store    memory.ConversationStore
	opts     Options
	logger   *slog.Logger

	now func() time.Time
}

// NewService creates a chat service. The store's own truncation is not
// used; the service applies its MaxHistory window when replaying.
func NewService(provider llm.Provider, store memory.ConversationStore, opts Options) *Service {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = 20
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = "You are a helpful assistant."
	}
	return &Service{
		provider: provider,
		store:    store,
		opts:     opts,
		logger:   slog.Default().With("component", "chat"),
		now:      time.Now,
	}
}

// Send appends the user message to the session, calls the model with the
// bounded history, records the reply and returns it. Images carry
// base64-encoded payloads for vision models.
func (s *Service) Send(ctx context.Context, sessionID, content string, images ...string) (string, error) {
	userMsg := memory.ConversationMessage{Role: string(llm.RoleUser), Content: content}
	if err := s.store.AppendMessage(ctx, sessionID, userMsg); err != nil {
		return "", errors.New(errors.CodeMemoryError, "failed to record message", err)
	}

	history, err := s.store.Messages(ctx, sessionID)
	if err != nil {
		return "", errors.New(errors.CodeMemoryError, "failed to load history", err)
	}
	if len(history) > s.opts.MaxHistory {
		history = history[len(history)-s.opts.MaxHistory:]
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: s.systemPrompt()})
	for i, h := range history {
		msg := llm.Message{Role: llm.Role(h.Role), Content: h.Content}
		// images ride along only on the message being sent now
		if i == len(history)-1 && len(images) > 0 {
			msg.Images = images
		}
		msgs = append(msgs, msg)
	}

	resp, err := s.provider.Chat(ctx, llm.ChatRequest{
		Model:       s.opts.Model,
		Messages:    msgs,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return "", llmUnavailable(err)
	}

	reply := memory.ConversationMessage{Role: string(llm.RoleAssistant), Content: resp.Content}
	if err := s.store.AppendMessage(ctx, sessionID, reply); err != nil {
		return "", errors.New(errors.CodeMemoryError, "failed to record reply", err)
	}
	return resp.Content, nil
}

// systemPrompt stamps the configured prompt with the current time so the
// model can answer date questions.
func (s *Service) systemPrompt() string {
	return fmt.Sprintf("%s\n\nCurrent date and time: %s",
		s.opts.SystemPrompt, s.now().Format("Monday, 2 January 2006 15:04 MST"))
}

// History returns the session's bounded history.
func (s *Service) History(ctx context.Context, sessionID string) ([]memory.ConversationMessage, error) {
	history, err := s.store.Messages(ctx, sessionID)
	if err != nil {
		return nil, errors.New(errors.CodeMemoryError, "failed to load history", err)
	}
	if len(history) > s.opts.MaxHistory {
		history = history[len(history)-s.opts.MaxHistory:]
	}
	return history, nil
}

// MessageCount returns the number of stored messages for the session.
func (s *Service) MessageCount(ctx context.Context, sessionID string) (int, error) {
	return s.store.Count(ctx, sessionID)
}

// Clear wipes the session's history.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return errors.New(errors.CodeMemoryError, "failed to clear history", err)
	}
	return nil
}

// llmUnavailable converts raw transport failures into a user-facing
// error that suggests the usual cause.
func llmUnavailable(err error) error {
	msg := "model call failed"
	if isConnectionError(err) {
		msg = "could not reach the model, is Ollama running?"
	}
	return errors.New(errors.CodeLLMError, msg, err)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	text := err.Error()
	return strings.Contains(text, "connection refused") ||
		strings.Contains(text, "no such host") ||
		strings.Contains(text, "connect:")
}
