package stores

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/colonyops/taskpilot/internal/core/chat"
	"github.com/colonyops/taskpilot/internal/data/db"
	"github.com/colonyops/taskpilot/pkg/randid"
)

// chatIDLength is the length of generated transcript message IDs.
const chatIDLength = 12

// ChatStore implements chat.Store using SQLite.
type ChatStore struct {
	db *db.DB
}

var _ chat.Store = (*ChatStore)(nil)

// NewChatStore creates a new SQLite-backed transcript store.
func NewChatStore(db *db.DB) *ChatStore {
	return &ChatStore{db: db}
}

// Append writes messages in one transaction, generating IDs and timestamps
// when unset.
func (s *ChatStore) Append(ctx context.Context, msgs ...chat.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]db.ChatMessage, len(msgs))
	for i, m := range msgs {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		if m.ID == "" {
			m.ID = randid.Generate(chatIDLength)
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		rows[i] = db.ChatMessage{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			OwnerID:        m.OwnerID,
			Role:           string(m.Role),
			Content:        m.Content,
			Matcher:        m.Matcher,
			CreatedAt:      m.CreatedAt.UnixNano(),
		}
	}

	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		for _, row := range rows {
			if err := q.InsertChatMessage(ctx, row); err != nil {
				return fmt.Errorf("insert message %s: %w", row.ID, err)
			}
		}
		return nil
	})
	return storeError("append chat messages", err)
}

// Recent returns the newest messages of a conversation, oldest first.
func (s *ChatStore) Recent(ctx context.Context, conversationID string, limit int) ([]chat.Message, error) {
	rows, err := s.db.Queries().ListRecentChatMessages(ctx, db.ListRecentChatMessagesParams{
		ConversationID: conversationID,
		Limit:          int64(limit),
	})
	if err != nil {
		return nil, storeError("list chat messages", err)
	}
	return rowsToMessages(rows), nil
}

// RecentByOwner returns the newest messages across an owner's conversations,
// oldest first.
func (s *ChatStore) RecentByOwner(ctx context.Context, ownerID string, limit int) ([]chat.Message, error) {
	rows, err := s.db.Queries().ListRecentChatMessagesByOwner(ctx, db.ListRecentChatMessagesByOwnerParams{
		OwnerID: ownerID,
		Limit:   int64(limit),
	})
	if err != nil {
		return nil, storeError("list chat messages", err)
	}
	return rowsToMessages(rows), nil
}

// PruneBefore removes messages created before cutoff.
func (s *ChatStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := s.db.Queries().DeleteChatMessagesBefore(ctx, cutoff.UnixNano())
	if err != nil {
		return 0, storeError("prune chat messages", err)
	}
	return int(n), nil
}

// rowsToMessages converts newest-first rows into an oldest-first transcript.
func rowsToMessages(rows []db.ChatMessage) []chat.Message {
	msgs := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, chat.Message{
			ID:             row.ID,
			ConversationID: row.ConversationID,
			OwnerID:        row.OwnerID,
			Role:           chat.Role(row.Role),
			Content:        row.Content,
			Matcher:        row.Matcher,
			CreatedAt:      time.Unix(0, row.CreatedAt),
		})
	}
	slices.Reverse(msgs)
	return msgs
}
