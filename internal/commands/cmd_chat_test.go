package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskpilot/internal/core/config"
	"github.com/colonyops/taskpilot/internal/data/db"
	"github.com/colonyops/taskpilot/internal/data/stores"
	"github.com/colonyops/taskpilot/internal/taskpilot"
)

func newTestApp(t *testing.T) (*taskpilot.App, *Flags) {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	app := taskpilot.NewApp(&cfg, database,
		stores.NewTaskStore(database), stores.NewChatStore(database),
		nil, nil, zerolog.Nop())
	return app, &Flags{Config: &cfg, Owner: "alice"}
}

func TestChatCmd_Loop(t *testing.T) {
	ctx := context.Background()
	app, flags := newTestApp(t)
	cmd := &ChatCmd{flags: flags, app: app, conversation: DefaultConversation}

	input := strings.Join([]string{
		"create tasks:\\",
		"1. Pay rent\\",
		"2. Water plants",
		"",
		"mark all tasks as complete",
		"mark all tasks as complete",
		"hello",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, cmd.loop(ctx, strings.NewReader(input), &out, false, ""))

	text := out.String()
	assert.Contains(t, text, "2 tasks created.")
	assert.Contains(t, text, "2 tasks marked as complete.")
	assert.Contains(t, text, "No tasks needed to be marked as complete.")
	assert.Contains(t, text, "No action taken.")

	assert.Equal(t, "No action taken.", cmd.lastReply(ctx))
}

func TestStyleReply_KeepsText(t *testing.T) {
	for _, reply := range []string{
		"✅ 1 tasks deleted.",
		"❌ Failed to delete tasks: task store unavailable.",
		"ℹ️ No tasks needed to be deleted.",
		"No action taken.",
	} {
		assert.Contains(t, styleReply(reply), reply)
	}
}
