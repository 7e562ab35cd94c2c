package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const timestampLayout = time.RFC3339Nano

// Turn is one message of a chat transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is a persisted chat transcript.
type Session struct {
	UserID       int64
	SessionID    string
	Conversation []Turn
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GetOrCreateSession loads the transcript for (userID, sessionID), creating an
// empty one when none exists.
func (s *Store) GetOrCreateSession(ctx context.Context, userID int64, sessionID string) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("session id required")
	}
	now := s.now().UTC().Format(timestampLayout)
	if _, err := execWithRetry(ctx, s.db,
		`INSERT INTO chat_sessions (user_id, session_id, conversation, created_at, updated_at)
		 VALUES (?, ?, '[]', ?, ?) ON CONFLICT (user_id, session_id) DO NOTHING`,
		userID, sessionID, now, now,
	); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	var raw, created, updated string
	err := s.db.QueryRowContext(ctx,
		"SELECT conversation, created_at, updated_at FROM chat_sessions WHERE user_id = ? AND session_id = ?",
		userID, sessionID,
	).Scan(&raw, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	session := &Session{UserID: userID, SessionID: sessionID}
	if err := unmarshalList(raw, &session.Conversation); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	session.CreatedAt, _ = time.Parse(timestampLayout, created)
	session.UpdatedAt, _ = time.Parse(timestampLayout, updated)
	return session, nil
}

// SaveConversation overwrites the stored transcript with session.Conversation.
func (s *Store) SaveConversation(ctx context.Context, session *Session) error {
	if session == nil {
		return errors.New("save conversation: nil session")
	}
	encoded, err := json.Marshal(session.Conversation)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	if session.Conversation == nil {
		encoded = []byte("[]")
	}
	now := s.now().UTC()
	res, err := execWithRetry(ctx, s.db,
		"UPDATE chat_sessions SET conversation = ?, updated_at = ? WHERE user_id = ? AND session_id = ?",
		string(encoded), now.Format(timestampLayout), session.UserID, session.SessionID,
	)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	session.UpdatedAt = now
	return nil
}
