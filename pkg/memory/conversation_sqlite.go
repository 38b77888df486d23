package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteConversation persists conversation history in SQLite so sessions
// survive restarts.
type SQLiteConversation struct {
	db     *sql.DB
	config ConversationConfig
}

// NewSQLiteConversation creates a SQLite-backed conversation store and
// ensures its schema.
func NewSQLiteConversation(db *sql.DB, config ConversationConfig) (*SQLiteConversation, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureConversationSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteConversation{db: db, config: config}, nil
}

// OpenSQLiteConversation opens (or creates) the database at path and
// returns a store over it.
func OpenSQLiteConversation(path string, config ConversationConfig) (*SQLiteConversation, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteConversation(db, config)
}

func ensureConversationSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS conversation_messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tool_call_id TEXT NOT NULL DEFAULT '',
			metadata_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_conversation_session
			ON conversation_messages (session_id, created_at);
	`)
	return err
}

func (s *SQLiteConversation) AppendMessage(ctx context.Context, sessionID string, msg ConversationMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.SessionID == "" {
		msg.SessionID = sessionID
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	metadata, err := json.Marshal(msg.Metadata)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (id, session_id, role, content, tool_call_id, metadata_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		msg.ID,
		msg.SessionID,
		msg.Role,
		msg.Content,
		msg.ToolCallID,
		string(metadata),
		msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteConversation) Messages(ctx context.Context, sessionID string) ([]ConversationMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, tool_call_id, metadata_json, created_at
		FROM conversation_messages
		WHERE session_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []ConversationMessage
	for rows.Next() {
		var msg ConversationMessage
		var metadata, createdAt string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.ToolCallID, &metadata, &createdAt); err != nil {
			return nil, err
		}
		if metadata != "" && metadata != "null" {
			if err := json.Unmarshal([]byte(metadata), &msg.Metadata); err != nil {
				return nil, err
			}
		}
		msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.config.Truncation != nil && len(messages) > 0 {
		return s.config.Truncation.Truncate(ctx, messages)
	}
	return messages, nil
}

func (s *SQLiteConversation) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation_messages WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

func (s *SQLiteConversation) Clear(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM conversation_messages WHERE session_id = ?`, sessionID)
	return err
}

// Close closes the underlying database.
func (s *SQLiteConversation) Close() error {
	return s.db.Close()
}

var _ ConversationStore = (*SQLiteConversation)(nil)
