package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskpilot/internal/core/chat"
	"github.com/colonyops/taskpilot/internal/data/db"
)

func newChatStore(t *testing.T) *ChatStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewChatStore(database)
}

func TestChatStore_AppendAndRecent(t *testing.T) {
	ctx := context.Background()
	store := newChatStore(t)

	base := time.Now()
	var msgs []chat.Message
	for i, content := range []string{"one", "two", "three"} {
		msgs = append(msgs, chat.Message{
			ConversationID: "conv-1",
			OwnerID:        "alice",
			Role:           chat.RoleUser,
			Content:        content,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		})
	}
	require.NoError(t, store.Append(ctx, msgs...))
	require.NoError(t, store.Append(ctx, chat.Message{
		ConversationID: "conv-2", OwnerID: "alice", Role: chat.RoleUser, Content: "other",
	}))

	recent, err := store.Recent(ctx, "conv-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content)
	assert.Equal(t, "three", recent[1].Content)
	assert.NotEmpty(t, recent[0].ID)

	byOwner, err := store.RecentByOwner(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, byOwner, 4)
	assert.Equal(t, "one", byOwner[0].Content)
}

func TestChatStore_Append_Validates(t *testing.T) {
	store := newChatStore(t)

	err := store.Append(context.Background(), chat.Message{ConversationID: "c", Role: chat.RoleUser})
	require.ErrorIs(t, err, chat.ErrEmptyContent)
}

func TestChatStore_PruneBefore(t *testing.T) {
	ctx := context.Background()
	store := newChatStore(t)

	now := time.Now()
	require.NoError(t, store.Append(ctx,
		chat.Message{ConversationID: "c", OwnerID: "alice", Role: chat.RoleUser, Content: "old", CreatedAt: now.Add(-48 * time.Hour)},
		chat.Message{ConversationID: "c", OwnerID: "alice", Role: chat.RoleAssistant, Content: "new", CreatedAt: now},
	))

	removed, err := store.PruneBefore(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	recent, err := store.Recent(ctx, "c", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].Content)
}
