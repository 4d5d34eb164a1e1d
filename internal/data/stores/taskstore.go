package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/taskpilot/internal/core/task"
	"github.com/colonyops/taskpilot/internal/data/db"
)

// TaskStore implements task.Store using SQLite.
type TaskStore struct {
	db  *db.DB
	now func() time.Time
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db, now: time.Now}
}

// WithClock replaces the clock used to stamp direct edits.
func (s *TaskStore) WithClock(now func() time.Time) *TaskStore {
	s.now = now
	return s
}

// ListTasks returns the owner's tasks in creation order.
func (s *TaskStore) ListTasks(ctx context.Context, ownerID string) ([]task.Task, error) {
	rows, err := s.db.Queries().ListTasksByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError("list tasks", err)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTask(row)
		if err != nil {
			return nil, fmt.Errorf("convert task %s: %w", row.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Get returns a task by ID. Returns task.ErrNotFound if it does not exist or
// belongs to another owner.
func (s *TaskStore) Get(ctx context.Context, ownerID, id string) (task.Task, error) {
	return getTask(ctx, s.db.Queries(), ownerID, id)
}

// Create persists a new task, assigning ID and timestamps when unset.
func (s *TaskStore) Create(ctx context.Context, t *task.Task) error {
	stamp := s.now()
	prepareNew(t, t.OwnerID, stamp)
	if err := t.Validate(); err != nil {
		return err
	}

	row, err := taskToRow(*t)
	if err != nil {
		return err
	}
	if err := s.db.Queries().InsertTask(ctx, row); err != nil {
		return storeError("create task", err)
	}
	return nil
}

// AddMany creates tasks in one transaction. Either all are created or none.
func (s *TaskStore) AddMany(ctx context.Context, ownerID string, tasks []task.Task, stampedAt time.Time) ([]task.Task, error) {
	created := make([]task.Task, len(tasks))
	for i, t := range tasks {
		t = t.Clone()
		prepareNew(&t, ownerID, stampedAt)
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		created[i] = t
	}

	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		for _, t := range created {
			if err := insertTask(ctx, q, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, batchError("add tasks", err)
	}
	return created, nil
}

// ApplyBatch applies every write in one transaction. A patch or delete whose
// target is missing, or owned by someone else, rolls the whole batch back.
func (s *TaskStore) ApplyBatch(ctx context.Context, ownerID string, batch task.Batch, stampedAt time.Time) error {
	if batch.Len() == 0 {
		return nil
	}

	creates := make([]task.Task, len(batch.Creates))
	for i, t := range batch.Creates {
		t = t.Clone()
		prepareNew(&t, ownerID, stampedAt)
		if err := t.Validate(); err != nil {
			return fmt.Errorf("apply batch: %w: create %d: %w", task.ErrPartialWriteRejected, i, err)
		}
		creates[i] = t
	}

	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		for _, t := range creates {
			if err := insertTask(ctx, q, t); err != nil {
				return err
			}
		}

		for _, p := range batch.Patches {
			if _, err := patchTask(ctx, q, ownerID, p.TaskID, stampedAt, func(t *task.Task) error {
				p.Apply(t)
				return nil
			}); err != nil {
				return err
			}
		}

		for _, id := range batch.Deletes {
			n, err := q.DeleteTask(ctx, db.DeleteTaskParams{ID: id, OwnerID: ownerID})
			if err != nil {
				return fmt.Errorf("delete task %s: %w", id, err)
			}
			if n == 0 {
				return fmt.Errorf("delete task %s: %w", id, task.ErrNotFound)
			}
		}
		return nil
	})
	return batchError("apply batch", err)
}

// MutateTags reads, transforms, and writes a task's tags in one transaction.
func (s *TaskStore) MutateTags(ctx context.Context, ownerID, id string, fn func(tags []string) []string) (task.Task, error) {
	return s.mutate(ctx, ownerID, id, func(t *task.Task) error {
		t.Tags = task.NormalizeTags(fn(slices.Clone(t.Tags)))
		return nil
	})
}

// MutateSubtasks reads, transforms, and writes a task's subtasks in one
// transaction. An error from fn aborts without writing.
func (s *TaskStore) MutateSubtasks(ctx context.Context, ownerID, id string, fn func(subtasks []task.Subtask) ([]task.Subtask, error)) (task.Task, error) {
	return s.mutate(ctx, ownerID, id, func(t *task.Task) error {
		next, err := fn(slices.Clone(t.Subtasks))
		if err != nil {
			return err
		}
		t.Subtasks = next
		return nil
	})
}

func (s *TaskStore) mutate(ctx context.Context, ownerID, id string, edit func(*task.Task) error) (task.Task, error) {
	var out task.Task
	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		t, err := patchTask(ctx, q, ownerID, id, s.now(), edit)
		out = t
		return err
	})
	if err != nil {
		return task.Task{}, storeError("mutate task", err)
	}
	return out, nil
}

// Delete removes a task. Returns task.ErrNotFound if it does not exist.
func (s *TaskStore) Delete(ctx context.Context, ownerID, id string) error {
	n, err := s.db.Queries().DeleteTask(ctx, db.DeleteTaskParams{ID: id, OwnerID: ownerID})
	if err != nil {
		return storeError("delete task", err)
	}
	if n == 0 {
		return task.ErrNotFound
	}
	return nil
}

func getTask(ctx context.Context, q *db.Queries, ownerID, id string) (task.Task, error) {
	row, err := q.GetTask(ctx, db.GetTaskParams{ID: id, OwnerID: ownerID})
	if IsNotFoundError(err) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, storeError("get task", err)
	}
	return rowToTask(row)
}

// patchTask loads a row inside the transaction, applies edit, and writes it
// back stamped with stampedAt.
func patchTask(ctx context.Context, q *db.Queries, ownerID, id string, stampedAt time.Time, edit func(*task.Task) error) (task.Task, error) {
	t, err := getTask(ctx, q, ownerID, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("patch task %s: %w", id, err)
	}

	if err := edit(&t); err != nil {
		return task.Task{}, err
	}
	t.Normalize()
	t.LastModifiedAt = stampedAt

	row, err := taskToRow(t)
	if err != nil {
		return task.Task{}, err
	}
	n, err := q.UpdateTask(ctx, row)
	if err != nil {
		return task.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	if n == 0 {
		return task.Task{}, fmt.Errorf("update task %s: %w", id, task.ErrNotFound)
	}
	return t, nil
}

func insertTask(ctx context.Context, q *db.Queries, t task.Task) error {
	row, err := taskToRow(t)
	if err != nil {
		return err
	}
	if err := q.InsertTask(ctx, row); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("insert task %s: duplicate id: %w", t.ID, err)
		}
		return fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	return nil
}

// batchError maps a failed transaction onto ErrStoreUnavailable when the
// store could not be reached and ErrPartialWriteRejected otherwise.
func batchError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, task.ErrStoreUnavailable), isUnavailableError(err):
		return storeError(op, err)
	case errors.Is(err, task.ErrPartialWriteRejected):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, task.ErrPartialWriteRejected, err)
	}
}

// prepareNew fills the fields the store owns on a new task.
func prepareNew(t *task.Task, ownerID string, stamp time.Time) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if ownerID != "" {
		t.OwnerID = ownerID
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = stamp
	}
	t.LastModifiedAt = stamp
	t.Normalize()
}

func rowToTask(row db.Task) (task.Task, error) {
	t := task.Task{
		ID:             row.ID,
		OwnerID:        row.OwnerID,
		Title:          row.Title,
		Description:    row.Description,
		Completed:      row.Completed,
		Priority:       task.Priority(row.Priority),
		CreatedAt:      time.Unix(0, row.CreatedAt),
		LastModifiedAt: time.Unix(0, row.LastModifiedAt),
	}
	if row.DueDate.Valid {
		due := time.Unix(0, row.DueDate.Int64)
		t.DueDate = &due
	}
	if err := json.Unmarshal([]byte(row.Tags), &t.Tags); err != nil {
		return task.Task{}, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Subtasks), &t.Subtasks); err != nil {
		return task.Task{}, fmt.Errorf("decode subtasks: %w", err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []task.Subtask{}
	}
	return t, nil
}

func taskToRow(t task.Task) (db.Task, error) {
	tags, err := json.Marshal(task.NormalizeTags(t.Tags))
	if err != nil {
		return db.Task{}, fmt.Errorf("encode tags: %w", err)
	}
	subtasks := t.Subtasks
	if subtasks == nil {
		subtasks = []task.Subtask{}
	}
	subtasksJSON, err := json.Marshal(subtasks)
	if err != nil {
		return db.Task{}, fmt.Errorf("encode subtasks: %w", err)
	}

	row := db.Task{
		ID:             t.ID,
		OwnerID:        t.OwnerID,
		Title:          t.Title,
		Description:    t.Description,
		Completed:      t.Completed,
		Priority:       string(t.Priority),
		Tags:           string(tags),
		Subtasks:       string(subtasksJSON),
		CreatedAt:      t.CreatedAt.UnixNano(),
		LastModifiedAt: t.LastModifiedAt.UnixNano(),
	}
	if t.DueDate != nil {
		row.DueDate = sql.NullInt64{Int64: t.DueDate.UnixNano(), Valid: true}
	}
	return row, nil
}
