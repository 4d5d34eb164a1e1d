package taskpilot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskpilot/internal/core/chat"
	"github.com/colonyops/taskpilot/internal/core/eventbus"
	"github.com/colonyops/taskpilot/internal/core/eventbus/testbus"
	"github.com/colonyops/taskpilot/internal/core/task"
	"github.com/colonyops/taskpilot/internal/data/stores"
)

type commandFixture struct {
	svc        *CommandService
	store      *faultyStore
	transcript *stores.ChatStore
	bus        *testbus.Bus
}

func newCommandFixture(t *testing.T) commandFixture {
	t.Helper()
	database := openDB(t)
	store := &faultyStore{Store: stores.NewTaskStore(database)}
	transcript := stores.NewChatStore(database)
	bus := testbus.New(t)

	return commandFixture{
		svc:        NewCommandService(store, transcript, bus.EventBus, fixedClock, zerolog.Nop()),
		store:      store,
		transcript: transcript,
		bus:        bus,
	}
}

func (f commandFixture) send(t *testing.T, text string) string {
	t.Helper()
	return f.svc.Process(context.Background(), chat.Inbound{
		ConversationID: "conv-1",
		OwnerID:        "alice",
		Text:           text,
	})
}

func (f commandFixture) tasks(t *testing.T) map[string]task.Task {
	t.Helper()
	list, err := f.store.ListTasks(context.Background(), "alice")
	require.NoError(t, err)
	byTitle := make(map[string]task.Task, len(list))
	for _, tk := range list {
		byTitle[tk.Title] = tk
	}
	return byTitle
}

func TestCommandService_BulkCompleteIsIdempotent(t *testing.T) {
	f := newCommandFixture(t)
	seed(t, f.store, "alice",
		task.Task{Title: "Buy milk", Completed: true},
		task.Task{Title: "Call mom"},
	)

	reply := f.send(t, "mark all tasks as complete")
	assert.Equal(t, "✅ 1 tasks marked as complete.", reply)

	tasks := f.tasks(t)
	assert.True(t, tasks["Buy milk"].Completed)
	assert.True(t, tasks["Call mom"].Completed)
	assert.True(t, testNow.Equal(tasks["Call mom"].LastModifiedAt))
	assert.False(t, testNow.Equal(tasks["Buy milk"].LastModifiedAt))

	reply = f.send(t, "mark all tasks as complete")
	assert.Equal(t, "ℹ️ No tasks needed to be marked as complete.", reply)
	assert.Equal(t, int32(1), f.store.batches.Load())
}

func TestCommandService_BulkAddTags(t *testing.T) {
	f := newCommandFixture(t)
	seed(t, f.store, "alice",
		task.Task{Title: "Write report", Tags: []string{"work"}},
		task.Task{Title: "Plan trip"},
	)

	reply := f.send(t, "add tags Work, urgent to all tasks")
	assert.Equal(t, "✅ 2 tasks tagged with urgent, work.", reply)

	for _, tk := range f.tasks(t) {
		assert.Equal(t, []string{"urgent", "work"}, tk.Tags, tk.Title)
	}

	reply = f.send(t, "add tags work to all tasks")
	assert.Equal(t, "ℹ️ No tasks needed to be tagged with work.", reply)
}

func TestCommandService_CreateTasks(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := newCommandFixture(t)

		reply := f.send(t, "create tasks: a, b, c")
		assert.Equal(t, "✅ 3 tasks created.", reply)

		tasks := f.tasks(t)
		require.Len(t, tasks, 3)
		for _, title := range []string{"a", "b", "c"} {
			tk, ok := tasks[title]
			require.True(t, ok, title)
			assert.Equal(t, task.PriorityMedium, tk.Priority)
			assert.Nil(t, tk.DueDate)
			assert.True(t, testNow.Equal(tk.CreatedAt))
		}
	})

	t.Run("shared priority and due date", func(t *testing.T) {
		f := newCommandFixture(t)

		reply := f.send(t, "create high priority tasks: a, b, c due tomorrow")
		assert.Equal(t, "✅ 3 tasks created.", reply)

		want := testNow.AddDate(0, 0, 1)
		tasks := f.tasks(t)
		require.Len(t, tasks, 3)
		for _, title := range []string{"a", "b", "c"} {
			tk, ok := tasks[title]
			require.True(t, ok, title)
			assert.Equal(t, task.PriorityHigh, tk.Priority)
			require.NotNil(t, tk.DueDate)
			assert.True(t, want.Equal(*tk.DueDate))
		}
	})
}

func TestCommandService_ReferencePrecedence(t *testing.T) {
	f := newCommandFixture(t)
	seed(t, f.store, "alice",
		task.Task{Title: "Monthly Report"},
		task.Task{Title: "Report"},
	)

	reply := f.send(t, `add tag finance to "Report"`)
	assert.Equal(t, "✅ 1 tasks tagged with finance.", reply)

	tasks := f.tasks(t)
	assert.Equal(t, []string{"finance"}, tasks["Report"].Tags)
	assert.Empty(t, tasks["Monthly Report"].Tags)
}

func TestCommandService_NoIntent(t *testing.T) {
	f := newCommandFixture(t)
	seed(t, f.store, "alice", task.Task{Title: "Buy milk"})

	assert.Equal(t, "No action taken.", f.send(t, "hello there, how are you?"))
	assert.Equal(t, "No action taken.", f.send(t, "   "))
	assert.Equal(t, int32(0), f.store.batches.Load())
}

func TestCommandService_RejectedBatchLeavesTasksUnchanged(t *testing.T) {
	f := newCommandFixture(t)
	seed(t, f.store, "alice", task.Task{Title: "A"}, task.Task{Title: "B"})

	done := true
	f.store.poison = &task.Patch{TaskID: "missing", Completed: &done}

	reply := f.send(t, "mark all tasks as complete")
	assert.Equal(t, "❌ Failed to mark tasks as complete: changes were rejected, nothing was saved.", reply)

	for _, tk := range f.tasks(t) {
		assert.False(t, tk.Completed, tk.Title)
	}
	f.bus.AssertNotPublished(t, eventbus.EventTasksChanged, 50*time.Millisecond)
}

func TestCommandService_StoreUnavailable(t *testing.T) {
	f := newCommandFixture(t)
	f.store.listErr = fmt.Errorf("list tasks: %w", task.ErrStoreUnavailable)

	reply := f.send(t, "mark all tasks as complete")
	assert.Equal(t, "❌ Failed to load tasks: task store unavailable.", reply)
}

func TestCommandService_RecordsTranscriptAndEvents(t *testing.T) {
	f := newCommandFixture(t)
	seed(t, f.store, "alice", task.Task{Title: "Call mom"})

	reply := f.send(t, "mark all tasks as complete")

	msgs, err := f.transcript.Recent(context.Background(), "conv-1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.RoleUser, msgs[0].Role)
	assert.Equal(t, "mark all tasks as complete", msgs[0].Content)
	assert.Equal(t, chat.RoleAssistant, msgs[1].Role)
	assert.Equal(t, reply, msgs[1].Content)
	assert.Equal(t, "bulk-completion", msgs[1].Matcher)

	require.True(t, f.bus.WaitFor(eventbus.EventCommandProcessed, time.Second))
	require.True(t, f.bus.WaitFor(eventbus.EventTasksChanged, time.Second))

	processed := f.bus.Payloads(eventbus.EventCommandProcessed)
	require.Len(t, processed, 1)
	p := processed[0].(eventbus.CommandProcessedPayload)
	assert.Equal(t, "conv-1", p.ConversationID)
	assert.Equal(t, "bulk-completion", p.Matcher)
	assert.Equal(t, 1, p.Affected)
	assert.False(t, p.Failed)
}

func TestCommandService_TruncatesOnRuneBoundary(t *testing.T) {
	f := newCommandFixture(t)

	text := strings.Repeat("é", chat.MaxContentSize/2+1)
	f.send(t, text)

	msgs, err := f.transcript.Recent(context.Background(), "conv-1", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.RoleUser, msgs[0].Role)
	assert.True(t, utf8.ValidString(msgs[0].Content))
	assert.Len(t, msgs[0].Content, chat.MaxContentSize)
}

func TestCommandService_CompletionWithQualifiers(t *testing.T) {
	f := newCommandFixture(t)
	tomorrow := testNow.AddDate(0, 0, 1)
	seed(t, f.store, "alice",
		task.Task{Title: "Ship release", Priority: task.PriorityHigh},
		task.Task{Title: "Water plants", Priority: task.PriorityLow, DueDate: &tomorrow},
		task.Task{Title: "File taxes", Priority: task.PriorityMedium},
	)

	reply := f.send(t, "mark all high priority tasks as complete")
	assert.Equal(t, "✅ 1 tasks marked as complete.", reply)

	tasks := f.tasks(t)
	assert.True(t, tasks["Ship release"].Completed)
	assert.Equal(t, task.PriorityHigh, tasks["Ship release"].Priority)
	assert.False(t, tasks["Water plants"].Completed)
	assert.False(t, tasks["File taxes"].Completed)

	reply = f.send(t, "mark all tasks due tomorrow as complete")
	assert.Equal(t, "✅ 1 tasks marked as complete.", reply)

	tasks = f.tasks(t)
	assert.True(t, tasks["Water plants"].Completed)
	assert.True(t, tomorrow.Equal(*tasks["Water plants"].DueDate))
	assert.False(t, tasks["File taxes"].Completed)
}

func TestCommandService_SerializesConversation(t *testing.T) {
	f := newCommandFixture(t)
	seed(t, f.store, "alice", task.Task{Title: "A"}, task.Task{Title: "B"})

	const n = 8
	replies := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			replies[i] = f.send(t, "mark all tasks as complete")
		}()
	}
	wg.Wait()

	var applied int
	for _, r := range replies {
		if r == "✅ 2 tasks marked as complete." {
			applied++
		} else {
			assert.Equal(t, "ℹ️ No tasks needed to be marked as complete.", r)
		}
	}
	assert.Equal(t, 1, applied)
}
