package task

import (
	"context"
	"errors"
	"slices"
	"time"
)

var (
	// ErrNotFound is returned when a task does not exist in the caller's scope.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidTitle is returned when a task title is empty.
	ErrInvalidTitle = errors.New("task title cannot be empty")
	// ErrMissingOwner is returned when a task has no owner.
	ErrMissingOwner = errors.New("task owner is required")
	// ErrStoreUnavailable is returned when the store cannot be reached.
	ErrStoreUnavailable = errors.New("task store unavailable")
	// ErrPartialWriteRejected is returned when an atomic batch could not be
	// applied. No write from the batch is visible.
	ErrPartialWriteRejected = errors.New("batch rejected by task store")
)

// Patch describes the field changes for one task. Nil fields are left
// untouched.
type Patch struct {
	TaskID    string
	Completed *bool
	Priority  *Priority
	DueDate   *time.Time
	Tags      *[]string
	Subtasks  *[]Subtask
}

// IsZero reports whether the patch touches no field.
func (p Patch) IsZero() bool {
	return p.Completed == nil && p.Priority == nil && p.DueDate == nil &&
		p.Tags == nil && p.Subtasks == nil
}

// Apply writes the patched fields onto t. Tags are normalized on the way in.
func (p Patch) Apply(t *Task) {
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Tags != nil {
		t.Tags = NormalizeTags(*p.Tags)
	}
	if p.Subtasks != nil {
		t.Subtasks = slices.Clone(*p.Subtasks)
	}
}

// Changes reports whether applying the patch would alter t.
func (p Patch) Changes(t Task) bool {
	if p.Completed != nil && *p.Completed != t.Completed {
		return true
	}
	if p.Priority != nil && *p.Priority != t.Priority {
		return true
	}
	if p.DueDate != nil && !sameDue(p.DueDate, t.DueDate) {
		return true
	}
	if p.Tags != nil && !EqualTags(*p.Tags, t.Tags) {
		return true
	}
	if p.Subtasks != nil && !slices.Equal(*p.Subtasks, t.Subtasks) {
		return true
	}
	return false
}

// Batch is a set of writes applied together or not at all.
type Batch struct {
	Creates []Task
	Patches []Patch
	Deletes []string
}

// Len returns the number of writes in the batch.
func (b Batch) Len() int {
	return len(b.Creates) + len(b.Patches) + len(b.Deletes)
}

// Store defines task persistence. Every method is scoped to ownerID; a task
// owned by another principal behaves as if it did not exist.
type Store interface {
	// ListTasks returns a consistent snapshot of the owner's tasks ordered by
	// creation time.
	ListTasks(ctx context.Context, ownerID string) ([]Task, error)

	// Get returns a single task. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, ownerID, id string) (Task, error)

	// Create persists a new task. The store assigns ID, CreatedAt and
	// LastModifiedAt when unset and writes them back into t.
	Create(ctx context.Context, t *Task) error

	// AddMany creates tasks atomically, stamping each with stampedAt.
	AddMany(ctx context.Context, ownerID string, tasks []Task, stampedAt time.Time) ([]Task, error)

	// ApplyBatch applies creates, patches, and deletes in one transaction and
	// stamps every touched task with stampedAt. Returns
	// ErrPartialWriteRejected if any write cannot be applied and
	// ErrStoreUnavailable if the store cannot be reached.
	ApplyBatch(ctx context.Context, ownerID string, batch Batch, stampedAt time.Time) error

	// MutateTags performs a read-modify-write of the task's tags.
	MutateTags(ctx context.Context, ownerID, id string, fn func(tags []string) []string) (Task, error)

	// MutateSubtasks performs a read-modify-write of the task's subtasks.
	// An error from fn aborts the write.
	MutateSubtasks(ctx context.Context, ownerID, id string, fn func(subtasks []Subtask) ([]Subtask, error)) (Task, error)

	// Delete removes a task. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, ownerID, id string) error
}
