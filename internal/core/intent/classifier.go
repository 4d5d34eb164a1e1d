package intent

import (
	"regexp"
	"strings"
	"time"

	"github.com/colonyops/taskpilot/internal/core/dates"
	"github.com/colonyops/taskpilot/internal/core/task"
)

// Matcher names, in evaluation order.
const (
	MatchBulkCompletion = "bulk-completion"
	MatchBulkDelete     = "bulk-delete"
	MatchBulkPriority   = "bulk-priority"
	MatchBulkDueDate    = "bulk-due-date"
	MatchBulkAddTags    = "bulk-add-tags"
	MatchAddTags        = "add-tags"
	MatchRemoveTags     = "remove-tags"
	MatchAddSubtask     = "add-subtask"
	MatchToggleSubtask  = "toggle-subtask"
	MatchRemoveSubtask  = "remove-subtask"
	MatchBulkCreate     = "bulk-create"
)

// Match is a successful classification.
type Match struct {
	Matcher string
	Intent  Intent
}

// message is the per-call input handed to every matcher.
type message struct {
	text     string
	snapshot []task.Task
	now      time.Time
}

func (m *message) has(re *regexp.Regexp) bool {
	return re.MatchString(m.text)
}

// isCreation reports whether the text reads as a request to create a list
// of tasks.
func (m *message) isCreation() bool {
	if !m.has(reCreateVerb) {
		return false
	}
	return strings.Contains(m.text, ":") || m.has(reFollowing) || len(listLines(m.text)) > 0
}

// matcher pairs a cheap vocabulary trigger with a full extraction. A matcher
// whose trigger fires but whose extraction fails yields to the next one.
type matcher struct {
	name    string
	trigger func(m *message) bool
	extract func(m *message) (Intent, bool)
}

// Classifier maps chat text to an Intent using a fixed, ordered matcher list.
type Classifier struct {
	matchers []matcher
}

// NewClassifier returns a Classifier with the built-in matchers.
func NewClassifier() *Classifier {
	return &Classifier{matchers: defaultMatchers()}
}

// Matchers returns matcher names in evaluation order.
func (c *Classifier) Matchers() []string {
	names := make([]string, len(c.matchers))
	for i, mt := range c.matchers {
		names[i] = mt.name
	}
	return names
}

// Classify returns the first matcher that fully extracts a command from text.
// snapshot resolves title references and now anchors relative dates. Returns
// ErrNoActionableIntent when nothing matches.
func (c *Classifier) Classify(text string, snapshot []task.Task, now time.Time) (Match, error) {
	text = strings.TrimSpace(text)
	if !gate(text) {
		return Match{}, ErrNoActionableIntent
	}

	m := &message{text: text, snapshot: snapshot, now: now}
	for _, mt := range c.matchers {
		if !mt.trigger(m) {
			continue
		}
		if in, ok := mt.extract(m); ok {
			return Match{Matcher: mt.name, Intent: in}, nil
		}
	}
	return Match{}, ErrNoActionableIntent
}

// gate admits only text carrying bulk vocabulary, a quoted title, or a task
// noun.
func gate(text string) bool {
	if text == "" {
		return false
	}
	return reBulk.MatchString(text) || reQuoted.MatchString(text) || reTaskNoun.MatchString(text)
}

func defaultMatchers() []matcher {
	return []matcher{
		{
			name: MatchBulkCompletion,
			trigger: func(m *message) bool {
				return m.has(reBulk) && (m.has(reCompletion) || m.has(reIncompletion)) && m.has(reMarkVerb) &&
					!m.has(reDelete) && !m.has(reTag) && !m.has(reSubtask) && !m.isCreation() &&
					(m.has(reAsState) || (!m.has(rePriority) && !m.has(reDue)))
			},
			extract: func(m *message) (Intent, bool) {
				// Priority and due phrases qualify which tasks are marked.
				scope := bulkScope(reAsState.ReplaceAllString(m.text, ""), m.now)
				scope.Filter = FilterAll
				return SetCompletion{Scope: scope, Completed: !m.has(reIncompletion)}, true
			},
		},
		{
			name: MatchBulkDelete,
			trigger: func(m *message) bool {
				return m.has(reBulk) && m.has(reDelete) &&
					!m.has(reTag) && !m.has(reSubtask) && !m.has(rePriority) && !m.has(reDue) &&
					!m.isCreation()
			},
			extract: func(m *message) (Intent, bool) {
				return DeleteTasks{Scope: Scope{Filter: filterOf(m.text)}}, true
			},
		},
		{
			name: MatchBulkPriority,
			trigger: func(m *message) bool {
				return m.has(reBulk) && m.has(rePriority) && m.has(reSetVerb) && !m.has(reAsState) &&
					!m.has(reTag) && !m.has(reSubtask) && !m.isCreation()
			},
			extract: func(m *message) (Intent, bool) {
				p, ok := priorityIn(m.text)
				if !ok {
					return nil, false
				}
				return SetPriority{Scope: Scope{Filter: filterOf(stripPriorityWords(m.text))}, Priority: p}, true
			},
		},
		{
			name: MatchBulkDueDate,
			trigger: func(m *message) bool {
				return m.has(reBulk) && m.has(reDue) && m.has(reSetVerb) && !m.has(reAsState) &&
					!m.has(reTag) && !m.has(reSubtask) && !m.isCreation()
			},
			extract: func(m *message) (Intent, bool) {
				due, ok := dates.Resolve(m.text, m.now)
				if !ok {
					return nil, false
				}
				return SetDueDate{Scope: Scope{Filter: filterOf(m.text)}, Due: due}, true
			},
		},
		{
			name:    MatchBulkAddTags,
			trigger: addTagsTrigger,
			extract: func(m *message) (Intent, bool) {
				tags, target, ok := addTagsParts(m.text)
				if !ok || !reBulk.MatchString(target) {
					return nil, false
				}
				return AddTags{Scope: bulkScope(target, m.now), Tags: tags}, true
			},
		},
		{
			name:    MatchAddTags,
			trigger: addTagsTrigger,
			extract: func(m *message) (Intent, bool) {
				tags, target, ok := addTagsParts(m.text)
				if !ok || reBulk.MatchString(target) {
					return nil, false
				}
				t, ok := resolveTarget(target, m.snapshot)
				if !ok {
					return nil, false
				}
				return AddTags{Scope: OneTask(t.ID), Tags: tags}, true
			},
		},
		{
			name: MatchRemoveTags,
			trigger: func(m *message) bool {
				return m.has(reTag) && m.has(reRemoveVerb) && !m.has(reSubtask)
			},
			extract: func(m *message) (Intent, bool) {
				sm := reTagsFrom.FindStringSubmatch(m.text)
				if sm == nil {
					return nil, false
				}
				tags := parseTags(sm[1])
				if len(tags) == 0 {
					return nil, false
				}
				if reBulk.MatchString(sm[2]) {
					return RemoveTags{Scope: bulkScope(sm[2], m.now), Tags: tags}, true
				}
				t, ok := resolveTarget(sm[2], m.snapshot)
				if !ok {
					return nil, false
				}
				return RemoveTags{Scope: OneTask(t.ID), Tags: tags}, true
			},
		},
		{
			name: MatchAddSubtask,
			trigger: func(m *message) bool {
				return m.has(reSubtask) && m.has(reAddWord)
			},
			extract: func(m *message) (Intent, bool) {
				title, parent, ok := addSubtaskParts(m.text)
				if !ok {
					return nil, false
				}
				t, ok := resolveTarget(parent, m.snapshot)
				if !ok {
					return nil, false
				}
				return AddSubtask{TaskID: t.ID, Title: title}, true
			},
		},
		{
			name: MatchToggleSubtask,
			trigger: func(m *message) bool {
				return m.has(reSubtask) && m.has(reToggleVerb) && !m.has(reRemoveVerb) && !m.has(reAddWord)
			},
			extract: func(m *message) (Intent, bool) {
				t, st, ok := resolveSubtask(m.text, m.snapshot)
				if !ok {
					return nil, false
				}
				return ToggleSubtask{TaskID: t.ID, SubtaskID: st.ID}, true
			},
		},
		{
			name: MatchRemoveSubtask,
			trigger: func(m *message) bool {
				return m.has(reSubtask) && m.has(reRemoveVerb)
			},
			extract: func(m *message) (Intent, bool) {
				t, st, ok := resolveSubtask(m.text, m.snapshot)
				if !ok {
					return nil, false
				}
				return RemoveSubtask{TaskID: t.ID, SubtaskID: st.ID}, true
			},
		},
		{
			name: MatchBulkCreate,
			trigger: func(m *message) bool {
				return m.has(reCreateVerb) && (m.has(reTasksPlural) || m.has(reFollowing)) &&
					!m.has(reTag) && !m.has(reSubtask)
			},
			extract: extractCreate,
		},
	}
}

func addTagsTrigger(m *message) bool {
	return m.has(reTag) && (m.has(reAddVerb) || m.has(reTagWith)) && !m.has(reRemoveVerb) && !m.has(reSubtask)
}

// addTagsParts returns the tags and target phrase of an add-tags command.
// Both "add tags a, b to X" and "tag X with a, b" are understood.
func addTagsParts(text string) (tags []string, target string, ok bool) {
	if sm := reTagsTo.FindStringSubmatch(text); sm != nil {
		tags, target = parseTags(sm[1]), sm[2]
	} else if sm := reTagWith.FindStringSubmatch(text); sm != nil {
		target, tags = sm[1], parseTags(sm[2])
	}
	return tags, target, len(tags) > 0 && strings.TrimSpace(target) != ""
}

// stripPriorityWords removes the priority phrase so its value is not read as
// a completion filter.
func stripPriorityWords(text string) string {
	text = rePriorityBefore.ReplaceAllString(text, "")
	return rePriorityAfter.ReplaceAllString(text, "")
}

// resolveTarget resolves a task reference, preferring a quoted title inside
// the phrase.
func resolveTarget(target string, snapshot []task.Task) (task.Task, bool) {
	if q := reQuoted.FindStringSubmatch(target); q != nil {
		target = q[1]
	}
	ref := cleanTarget(target)
	if ref == "" {
		return task.Task{}, false
	}
	return task.ResolveTitle(ref, snapshot)
}

func addSubtaskParts(text string) (title, parent string, ok bool) {
	if qs := reQuoted.FindAllStringSubmatch(text, -1); len(qs) >= 2 {
		return strings.TrimSpace(qs[0][1]), qs[1][1], true
	}
	sm := reAddSubtask.FindStringSubmatch(text)
	if sm == nil {
		return "", "", false
	}
	title = task.CleanReference(sm[1])
	return title, sm[2], title != ""
}

// resolveSubtask finds the parent task and subtask named in a toggle or
// remove command.
func resolveSubtask(text string, snapshot []task.Task) (task.Task, task.Subtask, bool) {
	var subRef, parentRef string
	if qs := reQuoted.FindAllStringSubmatch(text, -1); len(qs) >= 2 {
		subRef, parentRef = qs[0][1], qs[1][1]
	} else {
		sm := reSubtaskRef.FindStringSubmatch(reAsState.ReplaceAllString(text, ""))
		if sm == nil {
			return task.Task{}, task.Subtask{}, false
		}
		subRef, parentRef = sm[1], sm[2]
	}

	parent, ok := resolveTarget(parentRef, snapshot)
	if !ok {
		return task.Task{}, task.Subtask{}, false
	}
	st, ok := task.FindSubtask(task.CleanReference(subRef), parent.Subtasks)
	if !ok {
		return task.Task{}, task.Subtask{}, false
	}
	return parent, st, true
}

func extractCreate(m *message) (Intent, bool) {
	var titles []string
	switch {
	case reColonList.MatchString(m.text):
		titles = splitItems(reColonList.FindStringSubmatch(m.text)[1])
	case reFollowingList.MatchString(m.text):
		titles = splitItems(reFollowingList.FindStringSubmatch(m.text)[1])
	default:
		titles = splitItems(strings.Join(listLines(m.text), "\n"))
	}
	if len(titles) == 0 {
		return nil, false
	}

	ct := CreateTasks{Titles: titles, Priority: task.PriorityMedium}
	if p, ok := priorityIn(m.text); ok {
		ct.Priority = p
	}
	if sm := reCreateDue.FindStringSubmatch(m.text); sm != nil {
		if due, ok := dates.Resolve(sm[1], m.now); ok {
			ct.Due = &due
		}
	}
	return ct, true
}
