package memory

import (
	"context"
	"time"
)

// ConversationMessage represents a single message in a session's history.
type ConversationMessage struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"session_id"`
	Role       string            `json:"role"` // system, user, assistant, tool
	Content    string            `json:"content"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ConversationStore stores and retrieves ordered conversation history
// for multi-turn chat sessions.
type ConversationStore interface {
	// AppendMessage adds a message to the session's history.
	AppendMessage(ctx context.Context, sessionID string, msg ConversationMessage) error

	// Messages retrieves the session's history in order, with the
	// configured truncation applied.
	Messages(ctx context.Context, sessionID string) ([]ConversationMessage, error)

	// Count returns the number of stored messages for the session,
	// before truncation.
	Count(ctx context.Context, sessionID string) (int, error)

	// Clear removes all messages for a session.
	Clear(ctx context.Context, sessionID string) error
}

// ConversationConfig configures a conversation store.
type ConversationConfig struct {
	// Truncation bounds the history returned by Messages. Nil means
	// unbounded.
	Truncation TruncationStrategy
}

// TruncationStrategy bounds conversation length.
type TruncationStrategy interface {
	// Truncate reduces messages while preserving context, returning
	// the bounded list.
	Truncate(ctx context.Context, messages []ConversationMessage) ([]ConversationMessage, error)
}

// WindowStrategy keeps only the last MaxMessages messages. When
// KeepSystemMessages is set, system messages survive the window and
// count against it.
type WindowStrategy struct {
	MaxMessages        int
	KeepSystemMessages bool
}

// Truncate implements TruncationStrategy.
func (w *WindowStrategy) Truncate(_ context.Context, messages []ConversationMessage) ([]ConversationMessage, error) {
	if w.MaxMessages <= 0 || len(messages) <= w.MaxMessages {
		return messages, nil
	}

	if !w.KeepSystemMessages {
		return messages[len(messages)-w.MaxMessages:], nil
	}

	var system, other []ConversationMessage
	for _, msg := range messages {
		if msg.Role == "system" {
			system = append(system, msg)
		} else {
			other = append(other, msg)
		}
	}

	keep := w.MaxMessages - len(system)
	if keep < 0 {
		keep = 0
	}
	if len(other) > keep {
		other = other[len(other)-keep:]
	}
	return append(system, other...), nil
}
