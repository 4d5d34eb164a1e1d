package eventbus_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/colonyops/taskpilot/internal/core/eventbus"
	"github.com/colonyops/taskpilot/internal/core/eventbus/testbus"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	var buf bytes.Buffer
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	tb.PublishTasksChanged(eventbus.TasksChangedPayload{OwnerID: "me", TaskIDs: []string{"a"}})
	tb.PublishCommandProcessed(eventbus.CommandProcessedPayload{ConversationID: "c1", Matcher: "bulk-delete"})

	tb.AssertPublished(t, eventbus.EventCommandProcessed)
	assert.Contains(t, buf.String(), `"event":"tasks.changed"`)
	assert.Contains(t, buf.String(), `"event":"command.processed"`)
}
