package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// GetMessagesBySessionID retrieves a session's full message log in append
// order.
func GetMessagesBySessionID(ctx context.Context, db sqlscan.Querier, sessionID string) ([]Message, error) {
	query := `SELECT id, session_id, role, content, thread_id, tool_calls, reply_count, last_reply_ts, created_at_ms
		FROM messages WHERE session_id = ? ORDER BY created_at_ms, id`
	var messages []Message
	if err := sqlscan.Select(ctx, db, &messages, query, sessionID); err != nil {
		return nil, err
	}
	return messages, nil
}

// InsertMessage appends a message to the log.
func InsertMessage(ctx context.Context, db Execer, message *Message) error {
	query := `INSERT INTO messages (id, session_id, role, content, thread_id, tool_calls, reply_count, last_reply_ts, created_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		message.ID,
		message.SessionID,
		message.Role,
		message.Content,
		message.ThreadID,
		message.ToolCalls,
		message.ReplyCount,
		message.LastReplyTimestamp,
		message.Timestamp,
	)
	return err
}

// BumpThreadRoot increments the reply counter on a thread-root message and
// stamps the reply time. Callers run it in the same transaction as the reply
// insert so the pair is never observable apart.
func BumpThreadRoot(ctx context.Context, db Execer, sessionID, rootID string, replyTimestamp int64) error {
	query := `UPDATE messages SET reply_count = reply_count + 1, last_reply_ts = ? WHERE session_id = ? AND id = ?`
	_, err := db.ExecContext(ctx, query, replyTimestamp, sessionID, rootID)
	return err
}

// DeleteMessagesBySessionID wipes a session's message log. Returns the number
// of rows removed.
func DeleteMessagesBySessionID(ctx context.Context, db Execer, sessionID string) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetConversation retrieves a session's settings row, or nil if none exists.
func GetConversation(ctx context.Context, db sqlscan.Querier, sessionID string) (*Conversation, error) {
	query := `SELECT session_id, model, updated_at_ms FROM conversations WHERE session_id = ?`
	var conv Conversation
	err := sqlscan.Get(ctx, db, &conv, query, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// UpsertConversation stores a session's settings row.
func UpsertConversation(ctx context.Context, db Execer, conv *Conversation) error {
	if conv.UpdatedAt == 0 {
		conv.UpdatedAt = time.Now().UnixMilli()
	}
	query := `INSERT INTO conversations (session_id, model, updated_at_ms) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET model = excluded.model, updated_at_ms = excluded.updated_at_ms`
	_, err := db.ExecContext(ctx, query, conv.SessionID, conv.Model, conv.UpdatedAt)
	return err
}
