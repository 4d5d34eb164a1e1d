package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskpilot/internal/core/dates"
	"github.com/colonyops/taskpilot/internal/core/task"
)

var now = time.Date(2026, time.October, 14, 10, 30, 0, 0, time.UTC)

func snapshot() []task.Task {
	return []task.Task{
		{ID: "t1", Title: "Buy milk", Priority: task.PriorityMedium, Tags: []string{}},
		{ID: "t2", Title: "Call mom", Completed: true, Priority: task.PriorityMedium, Tags: []string{}},
		{
			ID: "t3", Title: "Groceries", Priority: task.PriorityLow, Tags: []string{"home"},
			Subtasks: []task.Subtask{
				{ID: "s1", Title: "buy eggs"},
				{ID: "s2", Title: "bread", Completed: true},
			},
		},
	}
}

func mustResolve(t *testing.T, phrase string) time.Time {
	t.Helper()
	d, ok := dates.Resolve(phrase, now)
	require.True(t, ok, phrase)
	return d
}

func TestClassify(t *testing.T) {
	nextMonday := mustResolve(t, "next Monday")
	tomorrow := mustResolve(t, "tomorrow")

	tests := []struct {
		name    string
		text    string
		matcher string
		want    Intent
	}{
		{
			name:    "bulk complete",
			text:    "mark all tasks as complete",
			matcher: MatchBulkCompletion,
			want:    SetCompletion{Scope: AllTasks(), Completed: true},
		},
		{
			name:    "bulk done",
			text:    "Please mark every task done",
			matcher: MatchBulkCompletion,
			want:    SetCompletion{Scope: AllTasks(), Completed: true},
		},
		{
			name:    "bulk incomplete",
			text:    "mark all tasks as incomplete",
			matcher: MatchBulkCompletion,
			want:    SetCompletion{Scope: AllTasks(), Completed: false},
		},
		{
			name:    "bulk delete completed",
			text:    "delete all completed tasks",
			matcher: MatchBulkDelete,
			want:    DeleteTasks{Scope: Scope{Filter: FilterCompleted}},
		},
		{
			name:    "bulk delete everything",
			text:    "clear all tasks",
			matcher: MatchBulkDelete,
			want:    DeleteTasks{Scope: AllTasks()},
		},
		{
			name:    "bulk priority after",
			text:    "set priority to high for all tasks",
			matcher: MatchBulkPriority,
			want:    SetPriority{Scope: AllTasks(), Priority: task.PriorityHigh},
		},
		{
			name:    "bulk priority before",
			text:    "make all incomplete tasks low priority",
			matcher: MatchBulkPriority,
			want:    SetPriority{Scope: Scope{Filter: FilterIncomplete}, Priority: task.PriorityLow},
		},
		{
			name:    "bulk priority of tasks to value",
			text:    "set priority of all tasks to high",
			matcher: MatchBulkPriority,
			want:    SetPriority{Scope: AllTasks(), Priority: task.PriorityHigh},
		},
		{
			name:    "bulk priority change with filter",
			text:    "change the priority of all completed tasks to low",
			matcher: MatchBulkPriority,
			want:    SetPriority{Scope: Scope{Filter: FilterCompleted}, Priority: task.PriorityLow},
		},
		{
			name:    "bulk priority equals",
			text:    "set the priority of every task = medium",
			matcher: MatchBulkPriority,
			want:    SetPriority{Scope: AllTasks(), Priority: task.PriorityMedium},
		},
		{
			name:    "bulk complete narrowed by priority",
			text:    "mark all high priority tasks as complete",
			matcher: MatchBulkCompletion,
			want:    SetCompletion{Scope: Scope{Filter: FilterAll, Priority: task.PriorityHigh}, Completed: true},
		},
		{
			name:    "bulk complete narrowed by due date",
			text:    "mark all tasks due tomorrow as done",
			matcher: MatchBulkCompletion,
			want:    SetCompletion{Scope: Scope{Filter: FilterAll, DueOn: &tomorrow}, Completed: true},
		},
		{
			name:    "bulk due date incomplete only",
			text:    "set due date to next Monday for all incomplete tasks",
			matcher: MatchBulkDueDate,
			want:    SetDueDate{Scope: Scope{Filter: FilterIncomplete}, Due: nextMonday},
		},
		{
			name:    "bulk add tags",
			text:    "add tags work, urgent to all tasks",
			matcher: MatchBulkAddTags,
			want:    AddTags{Scope: AllTasks(), Tags: []string{"urgent", "work"}},
		},
		{
			name:    "bulk add tags narrowed by due date",
			text:    "add tags work, urgent to all tasks due next Monday",
			matcher: MatchBulkAddTags,
			want:    AddTags{Scope: Scope{Filter: FilterAll, DueOn: &nextMonday}, Tags: []string{"urgent", "work"}},
		},
		{
			name:    "add tag to quoted task",
			text:    `add tag urgent to "Buy milk"`,
			matcher: MatchAddTags,
			want:    AddTags{Scope: OneTask("t1"), Tags: []string{"urgent"}},
		},
		{
			name:    "tag with phrasing",
			text:    "tag Call mom with family and phone",
			matcher: MatchAddTags,
			want:    AddTags{Scope: OneTask("t2"), Tags: []string{"family", "phone"}},
		},
		{
			name:    "remove tag from named task",
			text:    "remove tag #Home from the task Groceries",
			matcher: MatchRemoveTags,
			want:    RemoveTags{Scope: OneTask("t3"), Tags: []string{"home"}},
		},
		{
			name:    "remove tags from all tasks",
			text:    "remove tags urgent from all tasks",
			matcher: MatchRemoveTags,
			want:    RemoveTags{Scope: AllTasks(), Tags: []string{"urgent"}},
		},
		{
			name:    "add subtask",
			text:    "add subtask call store to Groceries",
			matcher: MatchAddSubtask,
			want:    AddSubtask{TaskID: "t3", Title: "call store"},
		},
		{
			name:    "add quoted subtask",
			text:    `add a subtask "pick up, flowers" to "Groceries"`,
			matcher: MatchAddSubtask,
			want:    AddSubtask{TaskID: "t3", Title: "pick up, flowers"},
		},
		{
			name:    "toggle subtask",
			text:    "mark subtask buy eggs in Groceries as done",
			matcher: MatchToggleSubtask,
			want:    ToggleSubtask{TaskID: "t3", SubtaskID: "s1"},
		},
		{
			name:    "remove subtask",
			text:    "remove subtask bread from Groceries",
			matcher: MatchRemoveSubtask,
			want:    RemoveSubtask{TaskID: "t3", SubtaskID: "s2"},
		},
		{
			name:    "create colon list",
			text:    "create tasks: Pay rent, Water plants, Email Bob",
			matcher: MatchBulkCreate,
			want: CreateTasks{
				Titles:   []string{"Pay rent", "Water plants", "Email Bob"},
				Priority: task.PriorityMedium,
			},
		},
		{
			name:    "create with shared modifiers",
			text:    "create high priority tasks: Pay rent, Water plants due tomorrow",
			matcher: MatchBulkCreate,
			want: CreateTasks{
				Titles:   []string{"Pay rent", "Water plants"},
				Priority: task.PriorityHigh,
				Due:      &tomorrow,
			},
		},
		{
			name:    "create numbered lines",
			text:    "add the following tasks:\n1. Pay rent\n2. Water plants",
			matcher: MatchBulkCreate,
			want: CreateTasks{
				Titles:   []string{"Pay rent", "Water plants"},
				Priority: task.PriorityMedium,
			},
		},
		{
			name:    "create following phrasing with final and",
			text:    "create the following tasks buy bread, call dad and walk dog",
			matcher: MatchBulkCreate,
			want: CreateTasks{
				Titles:   []string{"buy bread", "call dad", "walk dog"},
				Priority: task.PriorityMedium,
			},
		},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(tt.text, snapshot(), now)
			require.NoError(t, err)
			assert.Equal(t, tt.matcher, got.Matcher)
			assert.Equal(t, tt.want, got.Intent)
		})
	}
}

func TestClassify_NoActionableIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: "   "},
		{name: "small talk", text: "hello there, how are you?"},
		{name: "bulk without command", text: "mark all tasks as green"},
		{name: "priority without value", text: "set priority for all tasks"},
		{name: "unresolvable due date", text: "set due date for all tasks to someday"},
		{name: "unknown task", text: `add tag urgent to "Renew passport"`},
		{name: "unknown subtask", text: "remove subtask fold laundry from Groceries"},
		{name: "empty create list", text: "create tasks:"},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Classify(tt.text, snapshot(), now)
			assert.ErrorIs(t, err, ErrNoActionableIntent)
		})
	}
}

func TestClassify_Precedence(t *testing.T) {
	c := NewClassifier()

	t.Run("matchers run in a fixed order", func(t *testing.T) {
		assert.Equal(t, []string{
			MatchBulkCompletion,
			MatchBulkDelete,
			MatchBulkPriority,
			MatchBulkDueDate,
			MatchBulkAddTags,
			MatchAddTags,
			MatchRemoveTags,
			MatchAddSubtask,
			MatchToggleSubtask,
			MatchRemoveSubtask,
			MatchBulkCreate,
		}, c.Matchers())
	})

	t.Run("deletion is not read as completion", func(t *testing.T) {
		got, err := c.Classify("remove all finished tasks", snapshot(), now)
		require.NoError(t, err)
		assert.Equal(t, MatchBulkDelete, got.Matcher)
	})

	t.Run("tag edits are not read as bulk deletes", func(t *testing.T) {
		got, err := c.Classify("remove tag work from every task", snapshot(), now)
		require.NoError(t, err)
		assert.Equal(t, MatchRemoveTags, got.Matcher)
	})

	t.Run("creation lists are not read as bulk deletes", func(t *testing.T) {
		for _, text := range []string{
			"create tasks: delete old files, clean all desks",
			"create tasks: remove all stickers, buy milk",
		} {
			got, err := c.Classify(text, snapshot(), now)
			require.NoError(t, err, text)
			assert.Equal(t, MatchBulkCreate, got.Matcher, text)
		}

		got, err := c.Classify("create tasks: delete old files, clean all desks", snapshot(), now)
		require.NoError(t, err)
		assert.Equal(t, []string{"delete old files", "clean all desks"}, got.Intent.(CreateTasks).Titles)
	})

	t.Run("completion wins over priority and due vocabulary", func(t *testing.T) {
		for _, text := range []string{
			"mark all high priority tasks as complete",
			"mark all tasks due tomorrow as complete",
			"mark every low priority task as not done",
		} {
			got, err := c.Classify(text, snapshot(), now)
			require.NoError(t, err, text)
			assert.Equal(t, MatchBulkCompletion, got.Matcher, text)
		}
	})

	t.Run("priority and due changes need a setting verb", func(t *testing.T) {
		_, err := c.Classify("show all high priority tasks", snapshot(), now)
		assert.ErrorIs(t, err, ErrNoActionableIntent)

		_, err = c.Classify("list all tasks due tomorrow", snapshot(), now)
		assert.ErrorIs(t, err, ErrNoActionableIntent)
	})

	t.Run("creation with priority is not a bulk priority change", func(t *testing.T) {
		got, err := c.Classify("create multiple tasks: Pay rent, Water plants with high priority", snapshot(), now)
		require.NoError(t, err)
		assert.Equal(t, MatchBulkCreate, got.Matcher)
		ct := got.Intent.(CreateTasks)
		assert.Equal(t, []string{"Pay rent", "Water plants"}, ct.Titles)
		assert.Equal(t, task.PriorityHigh, ct.Priority)
	})

	t.Run("classification is pure", func(t *testing.T) {
		snap := snapshot()
		first, err := c.Classify("add tags work to all tasks", snap, now)
		require.NoError(t, err)
		second, err := c.Classify("add tags work to all tasks", snap, now)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, snapshot(), snap)
	})
}
