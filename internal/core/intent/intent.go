// Package intent turns free-form chat text into typed task commands.
//
// Each command kind is a concrete struct implementing Intent. A Classifier
// tries an ordered list of matchers against the text and returns the first
// one whose trigger and extraction both succeed.
package intent

import (
	"errors"
	"time"

	"github.com/colonyops/taskpilot/internal/core/task"
)

// ErrNoActionableIntent is returned when no matcher fully extracts a command
// from the message. It is not a failure; the caller answers conversationally.
var ErrNoActionableIntent = errors.New("no actionable intent")

// Kind names the command an Intent represents.
type Kind string

const (
	KindSetCompletion Kind = "set-completion"
	KindDeleteTasks   Kind = "delete-tasks"
	KindSetPriority   Kind = "set-priority"
	KindSetDueDate    Kind = "set-due-date"
	KindAddTags       Kind = "add-tags"
	KindRemoveTags    Kind = "remove-tags"
	KindAddSubtask    Kind = "add-subtask"
	KindToggleSubtask Kind = "toggle-subtask"
	KindRemoveSubtask Kind = "remove-subtask"
	KindCreateTasks   Kind = "create-tasks"
)

// Intent is a classified command with typed parameters.
type Intent interface {
	Kind() Kind
}

// Filter narrows a bulk scope by completion state.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterCompleted  Filter = "completed"
	FilterIncomplete Filter = "incomplete"
)

// Scope selects the tasks an intent applies to: either one task by ID, or
// every task passing Filter. A set Priority or DueOn narrows a bulk scope
// further.
type Scope struct {
	TaskID   string
	Filter   Filter
	Priority task.Priority
	DueOn    *time.Time
}

// AllTasks is the unfiltered bulk scope.
func AllTasks() Scope { return Scope{Filter: FilterAll} }

// OneTask scopes an intent to a single task.
func OneTask(id string) Scope { return Scope{TaskID: id} }

// IsBulk reports whether the scope is resolved dynamically against the task
// list rather than naming one task.
func (s Scope) IsBulk() bool { return s.TaskID == "" }

// Matches reports whether t is inside the scope.
func (s Scope) Matches(t task.Task) bool {
	if s.TaskID != "" {
		return t.ID == s.TaskID
	}

	switch s.Filter {
	case FilterCompleted:
		if !t.Completed {
			return false
		}
	case FilterIncomplete:
		if t.Completed {
			return false
		}
	}

	if s.Priority != "" && t.Priority != s.Priority {
		return false
	}

	if s.DueOn != nil {
		if t.DueDate == nil {
			return false
		}
		loc := s.DueOn.Location()
		y1, m1, d1 := s.DueOn.Date()
		y2, m2, d2 := t.DueDate.In(loc).Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	return true
}

// SetCompletion marks every task in scope complete or incomplete.
type SetCompletion struct {
	Scope     Scope
	Completed bool
}

// DeleteTasks removes every task in scope.
type DeleteTasks struct {
	Scope Scope
}

// SetPriority sets the priority of every task in scope.
type SetPriority struct {
	Scope    Scope
	Priority task.Priority
}

// SetDueDate sets the due date of every task in scope.
type SetDueDate struct {
	Scope Scope
	Due   time.Time
}

// AddTags adds tags to every task in scope.
type AddTags struct {
	Scope Scope
	Tags  []string
}

// RemoveTags removes tags from every task in scope.
type RemoveTags struct {
	Scope Scope
	Tags  []string
}

// AddSubtask appends a subtask to one task.
type AddSubtask struct {
	TaskID string
	Title  string
}

// ToggleSubtask flips the completion of one subtask.
type ToggleSubtask struct {
	TaskID    string
	SubtaskID string
}

// RemoveSubtask deletes one subtask.
type RemoveSubtask struct {
	TaskID    string
	SubtaskID string
}

// CreateTasks creates one task per title, all sharing Priority and Due.
type CreateTasks struct {
	Titles   []string
	Priority task.Priority
	Due      *time.Time
}

func (SetCompletion) Kind() Kind { return KindSetCompletion }
func (DeleteTasks) Kind() Kind   { return KindDeleteTasks }
func (SetPriority) Kind() Kind   { return KindSetPriority }
func (SetDueDate) Kind() Kind    { return KindSetDueDate }
func (AddTags) Kind() Kind       { return KindAddTags }
func (RemoveTags) Kind() Kind    { return KindRemoveTags }
func (AddSubtask) Kind() Kind    { return KindAddSubtask }
func (ToggleSubtask) Kind() Kind { return KindToggleSubtask }
func (RemoveSubtask) Kind() Kind { return KindRemoveSubtask }
func (CreateTasks) Kind() Kind   { return KindCreateTasks }
