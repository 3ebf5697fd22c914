package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/donna-ai/donna/store"
)

func (d *DB) CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	fields := []string{"uid", "user_id", "session_id", "role", "content", "actions", "created_ts"}
	args := []any{create.UID, create.UserID, create.SessionID, create.Role, create.Content, create.Actions, create.CreatedTs}

	stmt := `INSERT INTO chat_message (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create chat_message: %w", err)
	}

	return create, nil
}

func (d *DB) UpdateChatMessageActions(ctx context.Context, uid string, actions string) error {
	result, err := d.db.ExecContext(ctx, `UPDATE chat_message SET actions = `+placeholder(1)+` WHERE uid = `+placeholder(2), actions, uid)
	if err != nil {
		return fmt.Errorf("failed to update chat_message actions: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("chat_message not found")
	}
	return nil
}

func (d *DB) ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
	}
	if find.SessionID != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *find.SessionID)
	}

	order := "ASC"
	if find.OrderDescending {
		order = "DESC"
	}
	query := `SELECT id, uid, user_id, session_id, role, content, actions, created_ts FROM chat_message WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_ts ` + order + `, id ` + order
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat_messages: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ChatMessage, 0)
	for rows.Next() {
		message := &store.ChatMessage{}
		if err := rows.Scan(&message.ID, &message.UID, &message.UserID, &message.SessionID, &message.Role, &message.Content, &message.Actions, &message.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan chat_message: %w", err)
		}
		list = append(list, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat_messages: %w", err)
	}

	return list, nil
}

func (d *DB) ListChatSessions(ctx context.Context, userID int32) ([]*store.ChatSession, error) {
	query := `SELECT
			session_id,
			COALESCE((SELECT m.content FROM chat_message m WHERE m.session_id = chat_message.session_id AND m.user_id = ` + placeholder(1) + ` AND m.role = 'user' ORDER BY m.created_ts ASC, m.id ASC LIMIT 1), '') AS title,
			COUNT(*) AS message_count,
			MIN(created_ts) AS started_ts,
			MAX(created_ts) AS updated_ts
		FROM chat_message
		WHERE user_id = ` + placeholder(2) + `
		GROUP BY session_id
		ORDER BY updated_ts DESC`

	rows, err := d.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ChatSession, 0)
	for rows.Next() {
		session := &store.ChatSession{}
		if err := rows.Scan(&session.SessionID, &session.Title, &session.MessageCount, &session.StartedTs, &session.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		list = append(list, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat sessions: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteChatMessages(ctx context.Context, delete *store.DeleteChatMessage) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM chat_message WHERE user_id = `+placeholder(1)+` AND session_id = `+placeholder(2), delete.UserID, delete.SessionID)
	if err != nil {
		return fmt.Errorf("failed to delete chat_messages: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("chat session not found")
	}

	return nil
}
