package db

import "context"

const chatColumns = `id, conversation_id, owner_id, role, content, matcher, created_at`

const insertChatMessage = `INSERT INTO chat_messages (` + chatColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// InsertChatMessage appends a transcript row.
func (q *Queries) InsertChatMessage(ctx context.Context, arg ChatMessage) error {
	_, err := q.db.ExecContext(ctx, insertChatMessage,
		arg.ID,
		arg.ConversationID,
		arg.OwnerID,
		arg.Role,
		arg.Content,
		arg.Matcher,
		arg.CreatedAt,
	)
	return err
}

const listRecentChatMessages = `SELECT ` + chatColumns + ` FROM chat_messages
WHERE conversation_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?`

type ListRecentChatMessagesParams struct {
	ConversationID string
	Limit          int64
}

// ListRecentChatMessages returns the newest messages of a conversation, newest first.
func (q *Queries) ListRecentChatMessages(ctx context.Context, arg ListRecentChatMessagesParams) ([]ChatMessage, error) {
	return q.listChat(ctx, listRecentChatMessages, arg.ConversationID, arg.Limit)
}

const listRecentChatMessagesByOwner = `SELECT ` + chatColumns + ` FROM chat_messages
WHERE owner_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?`

type ListRecentChatMessagesByOwnerParams struct {
	OwnerID string
	Limit   int64
}

// ListRecentChatMessagesByOwner returns the newest messages across all of an
// owner's conversations, newest first.
func (q *Queries) ListRecentChatMessagesByOwner(ctx context.Context, arg ListRecentChatMessagesByOwnerParams) ([]ChatMessage, error) {
	return q.listChat(ctx, listRecentChatMessagesByOwner, arg.OwnerID, arg.Limit)
}

func (q *Queries) listChat(ctx context.Context, query string, args ...any) ([]ChatMessage, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.OwnerID,
			&m.Role,
			&m.Content,
			&m.Matcher,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const deleteChatMessagesBefore = `DELETE FROM chat_messages WHERE created_at < ?`

// DeleteChatMessagesBefore removes messages created before the cutoff and
// returns how many were removed.
func (q *Queries) DeleteChatMessagesBefore(ctx context.Context, before int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteChatMessagesBefore, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
