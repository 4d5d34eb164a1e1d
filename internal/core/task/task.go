// Package task defines the task domain model shared by the store, the
// command interpreter, and the CLI.
package task

import (
	"slices"
	"strings"
	"time"

	"github.com/colonyops/taskpilot/pkg/randid"
)

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts a case-insensitive name into a Priority.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	return p, p.IsValid()
}

// SubtaskIDLength is the length of generated subtask identifiers.
const SubtaskIDLength = 8

// Subtask is an ordered checklist entry inside a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// NewSubtask returns an incomplete subtask with a generated ID.
func NewSubtask(title string) Subtask {
	return Subtask{ID: randid.Generate(SubtaskIDLength), Title: strings.TrimSpace(title)}
}

// Task is the unit of work owned by exactly one principal.
type Task struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Completed      bool       `json:"completed"`
	Priority       Priority   `json:"priority"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Tags           []string   `json:"tags"`
	Subtasks       []Subtask  `json:"subtasks"`
	CreatedAt      time.Time  `json:"created_at"`
	LastModifiedAt time.Time  `json:"last_modified_at"`
}

// Clone returns a deep copy of t so callers can modify slices and the due
// date without aliasing a snapshot.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	out.Tags = slices.Clone(t.Tags)
	out.Subtasks = slices.Clone(t.Subtasks)
	return out
}

// Normalize applies defaults and repairs the tag and subtask invariants:
// a priority is always set, tags are normalized, and every subtask has a
// unique ID.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	if !t.Priority.IsValid() {
		t.Priority = PriorityMedium
	}
	t.Tags = NormalizeTags(t.Tags)
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}

	seen := make(map[string]bool, len(t.Subtasks))
	for i := range t.Subtasks {
		for t.Subtasks[i].ID == "" || seen[t.Subtasks[i].ID] {
			t.Subtasks[i].ID = randid.Generate(SubtaskIDLength)
		}
		seen[t.Subtasks[i].ID] = true
	}
}

// Validate checks the fields a caller must provide.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrInvalidTitle
	}
	if t.OwnerID == "" {
		return ErrMissingOwner
	}
	return nil
}

// HasTag reports whether the task carries tag (compared after normalization).
func (t Task) HasTag(tag string) bool {
	norm := NormalizeTags([]string{tag})
	if len(norm) == 0 {
		return false
	}
	return slices.Contains(t.Tags, norm[0])
}

// SubtaskIndex returns the index of the subtask with the given ID, or -1.
func (t Task) SubtaskIndex(id string) int {
	return slices.IndexFunc(t.Subtasks, func(s Subtask) bool { return s.ID == id })
}

// NormalizeTags lowercases and trims tags, strips a leading '#', drops
// empties and duplicates, and returns the result sorted. The result is never
// nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		tag = strings.TrimLeft(tag, "#")
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// UnionTags returns the normalized union of current and add.
func UnionTags(current, add []string) []string {
	return NormalizeTags(append(slices.Clone(current), add...))
}

// DifferenceTags returns the normalized tags of current not present in remove.
func DifferenceTags(current, remove []string) []string {
	drop := NormalizeTags(remove)
	out := make([]string, 0, len(current))
	for _, tag := range NormalizeTags(current) {
		if !slices.Contains(drop, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// EqualTags reports whether two tag sets are equal after normalization.
func EqualTags(a, b []string) bool {
	return slices.Equal(NormalizeTags(a), NormalizeTags(b))
}

// sameDue compares two optional due dates by instant.
func sameDue(a, b *time.Time) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return a.Equal(*b)
	}
}
