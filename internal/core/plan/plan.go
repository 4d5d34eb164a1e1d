// Package plan turns a classified intent and a task snapshot into the set of
// writes needed to carry it out.
package plan

import (
	"fmt"
	"slices"
	"strings"

	"github.com/colonyops/taskpilot/internal/core/intent"
	"github.com/colonyops/taskpilot/internal/core/task"
)

// DueLayout formats due dates in action descriptions.
const DueLayout = "Jan 2, 2006"

// Plan is the outcome of Build. Action completes "tasks ..." in success text
// and Verb completes "Failed to ..." in failure text.
type Plan struct {
	Kind    intent.Kind
	Action  string
	Verb    string
	Patches []task.Patch
	Deletes []string
	Creates []task.Task
	Titles  []string
}

// Empty reports whether the plan has no writes.
func (p Plan) Empty() bool {
	return len(p.Patches) == 0 && len(p.Deletes) == 0 && len(p.Creates) == 0
}

// Affected is the number of tasks the plan touches.
func (p Plan) Affected() int {
	return len(p.Patches) + len(p.Deletes) + len(p.Creates)
}

// Batch converts the plan into a store batch.
func (p Plan) Batch() task.Batch {
	return task.Batch{Creates: p.Creates, Patches: p.Patches, Deletes: p.Deletes}
}

// Build computes the writes for in against snapshot. Tasks whose touched
// fields already hold the target value are skipped. Build does not modify
// snapshot.
func Build(in intent.Intent, snapshot []task.Task) Plan {
	p := Plan{Kind: in.Kind()}

	switch v := in.(type) {
	case intent.SetCompletion:
		state := "complete"
		if !v.Completed {
			state = "incomplete"
		}
		p.Action = "marked as " + state
		p.Verb = "mark tasks as " + state
		completed := v.Completed
		p.patchEach(snapshot, v.Scope, func(task.Task) task.Patch {
			return task.Patch{Completed: &completed}
		})

	case intent.DeleteTasks:
		p.Action, p.Verb = "deleted", "delete tasks"
		for _, t := range snapshot {
			if v.Scope.Matches(t) {
				p.Deletes = append(p.Deletes, t.ID)
				p.Titles = append(p.Titles, t.Title)
			}
		}

	case intent.SetPriority:
		p.Action = fmt.Sprintf("set to %s priority", v.Priority)
		p.Verb = "set priority"
		priority := v.Priority
		p.patchEach(snapshot, v.Scope, func(task.Task) task.Patch {
			return task.Patch{Priority: &priority}
		})

	case intent.SetDueDate:
		p.Action = "set due " + v.Due.Format(DueLayout)
		p.Verb = "set due date"
		due := v.Due
		p.patchEach(snapshot, v.Scope, func(task.Task) task.Patch {
			return task.Patch{DueDate: &due}
		})

	case intent.AddTags:
		tags := task.NormalizeTags(v.Tags)
		p.Action = "tagged with " + strings.Join(tags, ", ")
		p.Verb = "add tags"
		p.patchEach(snapshot, v.Scope, func(t task.Task) task.Patch {
			next := task.UnionTags(t.Tags, tags)
			return task.Patch{Tags: &next}
		})

	case intent.RemoveTags:
		tags := task.NormalizeTags(v.Tags)
		p.Action = "untagged (" + strings.Join(tags, ", ") + ")"
		p.Verb = "remove tags"
		p.patchEach(snapshot, v.Scope, func(t task.Task) task.Patch {
			next := task.DifferenceTags(t.Tags, tags)
			return task.Patch{Tags: &next}
		})

	case intent.AddSubtask:
		p.Action = fmt.Sprintf("given subtask %q", v.Title)
		p.Verb = "add subtask"
		p.patchOne(snapshot, v.TaskID, func(subs []task.Subtask) []task.Subtask {
			return append(subs, task.NewSubtask(v.Title))
		})

	case intent.ToggleSubtask:
		p.Verb = "update subtask"
		p.Action = "updated"
		p.patchOne(snapshot, v.TaskID, func(subs []task.Subtask) []task.Subtask {
			i := slices.IndexFunc(subs, func(s task.Subtask) bool { return s.ID == v.SubtaskID })
			if i < 0 {
				return subs
			}
			subs[i].Completed = !subs[i].Completed
			state := "complete"
			if !subs[i].Completed {
				state = "incomplete"
			}
			p.Action = fmt.Sprintf("updated (subtask %q marked %s)", subs[i].Title, state)
			return subs
		})

	case intent.RemoveSubtask:
		p.Verb = "remove subtask"
		p.Action = "updated"
		p.patchOne(snapshot, v.TaskID, func(subs []task.Subtask) []task.Subtask {
			i := slices.IndexFunc(subs, func(s task.Subtask) bool { return s.ID == v.SubtaskID })
			if i < 0 {
				return subs
			}
			p.Action = fmt.Sprintf("updated (subtask %q removed)", subs[i].Title)
			return slices.Delete(subs, i, i+1)
		})

	case intent.CreateTasks:
		p.Action, p.Verb = "created", "create tasks"
		priority := v.Priority
		if !priority.IsValid() {
			priority = task.PriorityMedium
		}
		for _, title := range v.Titles {
			t := task.Task{Title: title, Priority: priority}
			if v.Due != nil {
				due := *v.Due
				t.DueDate = &due
			}
			t.Normalize()
			p.Creates = append(p.Creates, t)
			p.Titles = append(p.Titles, t.Title)
		}
	}

	return p
}

// patchEach adds a patch for every in-scope task the patch would change.
func (p *Plan) patchEach(snapshot []task.Task, scope intent.Scope, build func(task.Task) task.Patch) {
	for _, t := range snapshot {
		if !scope.Matches(t) {
			continue
		}
		patch := build(t)
		if !patch.Changes(t) {
			continue
		}
		patch.TaskID = t.ID
		p.Patches = append(p.Patches, patch)
		p.Titles = append(p.Titles, t.Title)
	}
}

// patchOne rewrites the subtask list of a single task. edit receives a copy
// of the current list.
func (p *Plan) patchOne(snapshot []task.Task, id string, edit func([]task.Subtask) []task.Subtask) {
	i := slices.IndexFunc(snapshot, func(t task.Task) bool { return t.ID == id })
	if i < 0 {
		return
	}
	t := snapshot[i]
	next := edit(slices.Clone(t.Subtasks))
	patch := task.Patch{TaskID: t.ID, Subtasks: &next}
	if !patch.Changes(t) {
		return
	}
	p.Patches = append(p.Patches, patch)
	p.Titles = append(p.Titles, t.Title)
}
