package taskpilot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/colonyops/taskpilot/internal/core/eventbus"
	"github.com/colonyops/taskpilot/internal/core/task"
)

// ErrSubtaskNotFound is returned when a subtask reference matches nothing.
var ErrSubtaskNotFound = errors.New("subtask not found")

// ErrInvalidPriority is returned when a priority is not low, medium or high.
var ErrInvalidPriority = errors.New("invalid priority")

// ListFilter narrows TaskService.List. Zero values match everything.
type ListFilter struct {
	// Tag is a glob matched against each normalized tag, e.g. "proj-*".
	Tag       string
	Completed *bool
	Priority  task.Priority
}

// NewTask holds the caller-supplied fields of a directly created task.
type NewTask struct {
	Title       string
	Description string
	Priority    task.Priority
	DueDate     *time.Time
	Tags        []string
}

// TaskService wraps task.Store with direct edits and change notifications.
type TaskService struct {
	store           task.Store
	bus             *eventbus.EventBus
	defaultPriority task.Priority
	log             zerolog.Logger
}

// NewTaskService creates a TaskService. Tasks created without a priority get
// defaultPriority.
func NewTaskService(store task.Store, bus *eventbus.EventBus, defaultPriority task.Priority, log zerolog.Logger) *TaskService {
	if !defaultPriority.IsValid() {
		defaultPriority = task.PriorityMedium
	}
	return &TaskService{
		store:           store,
		bus:             bus,
		defaultPriority: defaultPriority,
		log:             log.With().Str("component", "task-service").Logger(),
	}
}

// Create adds a task for ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, in NewTask) (task.Task, error) {
	t, err := s.newTask(ownerID, in)
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	if err := s.store.Create(ctx, &t); err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.changed(ownerID, t.ID)
	return t, nil
}

// Import creates every task in one transaction. Either all are created or
// none are.
func (s *TaskService) Import(ctx context.Context, ownerID string, in []NewTask) ([]task.Task, error) {
	tasks := make([]task.Task, len(in))
	for i, nt := range in {
		t, err := s.newTask(ownerID, nt)
		if err != nil {
			return nil, fmt.Errorf("import task %d: %w", i, err)
		}
		tasks[i] = t
	}

	created, err := s.store.AddMany(ctx, ownerID, tasks, time.Now())
	if err != nil {
		return nil, fmt.Errorf("import tasks: %w", err)
	}

	ids := make([]string, len(created))
	for i, t := range created {
		ids[i] = t.ID
	}
	s.changed(ownerID, ids...)
	return created, nil
}

func (s *TaskService) newTask(ownerID string, in NewTask) (task.Task, error) {
	t := task.Task{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Tags:        in.Tags,
	}
	if t.Priority == "" {
		t.Priority = s.defaultPriority
	}
	if !t.Priority.IsValid() {
		return task.Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, in.Priority)
	}
	return t, nil
}

// Get returns a task by ID.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (task.Task, error) {
	return s.store.Get(ctx, ownerID, id)
}

// Find returns the task whose ID is ref or, failing that, whose title best
// matches ref.
func (s *TaskService) Find(ctx context.Context, ownerID, ref string) (task.Task, error) {
	if t, err := s.store.Get(ctx, ownerID, ref); err == nil {
		return t, nil
	} else if !errors.Is(err, task.ErrNotFound) {
		return task.Task{}, err
	}

	tasks, err := s.store.ListTasks(ctx, ownerID)
	if err != nil {
		return task.Task{}, err
	}
	t, ok := task.ResolveTitle(ref, tasks)
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

// List returns the owner's tasks in creation order, filtered.
func (s *TaskService) List(ctx context.Context, ownerID string, filter ListFilter) ([]task.Task, error) {
	if filter.Tag != "" && !doublestar.ValidatePattern(filter.Tag) {
		return nil, fmt.Errorf("invalid tag pattern %q", filter.Tag)
	}

	tasks, err := s.store.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return slices.DeleteFunc(tasks, func(t task.Task) bool {
		return !filter.matches(t)
	}), nil
}

func (f ListFilter) matches(t task.Task) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Tag == "" {
		return true
	}
	return slices.ContainsFunc(t.Tags, func(tag string) bool {
		ok, _ := doublestar.Match(f.Tag, tag)
		return ok
	})
}

// Complete sets a task's completion flag. Setting the current value is a
// no-op that writes nothing.
func (s *TaskService) Complete(ctx context.Context, ownerID, id string, completed bool) (task.Task, error) {
	t, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("complete task: %w", err)
	}

	patch := task.Patch{TaskID: id, Completed: &completed}
	if !patch.Changes(t) {
		return t, nil
	}

	stamp := time.Now()
	err = s.store.ApplyBatch(ctx, ownerID, task.Batch{Patches: []task.Patch{patch}}, stamp)
	if err != nil {
		return task.Task{}, fmt.Errorf("complete task: %w", err)
	}

	patch.Apply(&t)
	t.LastModifiedAt = stamp
	s.changed(ownerID, id)
	return t, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.changed(ownerID, id)
	return nil
}

// AddTags unions tags into the task's tag set.
func (s *TaskService) AddTags(ctx context.Context, ownerID, id string, tags ...string) (task.Task, error) {
	t, err := s.store.MutateTags(ctx, ownerID, id, func(current []string) []string {
		return task.UnionTags(current, tags)
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("add tags: %w", err)
	}
	s.changed(ownerID, id)
	return t, nil
}

// RemoveTags removes tags from the task's tag set.
func (s *TaskService) RemoveTags(ctx context.Context, ownerID, id string, tags ...string) (task.Task, error) {
	t, err := s.store.MutateTags(ctx, ownerID, id, func(current []string) []string {
		return task.DifferenceTags(current, tags)
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("remove tags: %w", err)
	}
	s.changed(ownerID, id)
	return t, nil
}

// AddSubtask appends a new incomplete subtask.
func (s *TaskService) AddSubtask(ctx context.Context, ownerID, id, title string) (task.Task, error) {
	sub := task.NewSubtask(title)
	if sub.Title == "" {
		return task.Task{}, fmt.Errorf("add subtask: %w", task.ErrInvalidTitle)
	}

	t, err := s.store.MutateSubtasks(ctx, ownerID, id, func(current []task.Subtask) ([]task.Subtask, error) {
		return append(current, sub), nil
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("add subtask: %w", err)
	}
	s.changed(ownerID, id)
	return t, nil
}

// ToggleSubtask flips the completion of the subtask whose ID or title matches
// ref.
func (s *TaskService) ToggleSubtask(ctx context.Context, ownerID, id, ref string) (task.Task, error) {
	t, err := s.store.MutateSubtasks(ctx, ownerID, id, func(current []task.Subtask) ([]task.Subtask, error) {
		i, err := subtaskIndex(current, ref)
		if err != nil {
			return nil, err
		}
		current[i].Completed = !current[i].Completed
		return current, nil
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("toggle subtask: %w", err)
	}
	s.changed(ownerID, id)
	return t, nil
}

// RemoveSubtask deletes the subtask whose ID or title matches ref.
func (s *TaskService) RemoveSubtask(ctx context.Context, ownerID, id, ref string) (task.Task, error) {
	t, err := s.store.MutateSubtasks(ctx, ownerID, id, func(current []task.Subtask) ([]task.Subtask, error) {
		i, err := subtaskIndex(current, ref)
		if err != nil {
			return nil, err
		}
		return slices.Delete(current, i, i+1), nil
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("remove subtask: %w", err)
	}
	s.changed(ownerID, id)
	return t, nil
}

func subtaskIndex(subtasks []task.Subtask, ref string) (int, error) {
	if i := slices.IndexFunc(subtasks, func(s task.Subtask) bool { return s.ID == ref }); i >= 0 {
		return i, nil
	}
	sub, ok := task.FindSubtask(ref, subtasks)
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrSubtaskNotFound, ref)
	}
	return slices.IndexFunc(subtasks, func(s task.Subtask) bool { return s.ID == sub.ID }), nil
}

// Watch streams the owner's task list: once immediately, then after every
// change to that owner's tasks. The channel closes when ctx is done. A
// snapshot that cannot be delivered before the next change is replaced.
func (s *TaskService) Watch(ctx context.Context, ownerID string) <-chan []task.Task {
	out := make(chan []task.Task, 1)
	notify := make(chan struct{}, 1)
	notify <- struct{}{}

	unsubscribe := func() {}
	if s.bus != nil {
		unsubscribe = s.bus.SubscribeTasksChanged(func(p eventbus.TasksChangedPayload) {
			if p.OwnerID != ownerID {
				return
			}
			select {
			case notify <- struct{}{}:
			default:
			}
		})
	}

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case <-notify:
			}

			tasks, err := s.store.ListTasks(ctx, ownerID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Warn().Err(err).Str("owner_id", ownerID).Msg("watch: failed to list tasks")
				continue
			}

			// Drop a stale undelivered snapshot.
			select {
			case <-out:
			default:
			}

			select {
			case out <- tasks:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (s *TaskService) changed(ownerID string, ids ...string) {
	if s.bus == nil {
		return
	}
	s.bus.PublishTasksChanged(eventbus.TasksChangedPayload{OwnerID: ownerID, TaskIDs: ids})
}
