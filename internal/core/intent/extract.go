package intent

import (
	"regexp"
	"strings"
	"time"

	"github.com/colonyops/taskpilot/internal/core/dates"
	"github.com/colonyops/taskpilot/internal/core/task"
)

// filterOf reads a completion-state qualifier out of text. Incomplete
// vocabulary is checked first since "not complete" also contains "complete".
func filterOf(text string) Filter {
	switch {
	case reIncompletion.MatchString(text):
		return FilterIncomplete
	case reCompletion.MatchString(text):
		return FilterCompleted
	default:
		return FilterAll
	}
}

// bulkScope builds a bulk scope from a target phrase like
// "all incomplete high priority tasks due next Monday".
func bulkScope(target string, now time.Time) Scope {
	s := Scope{Filter: filterOf(target)}
	if m := rePriorityBefore.FindStringSubmatch(target); m != nil {
		s.Priority, _ = task.ParsePriority(m[1])
	}
	if loc := reDue.FindStringIndex(target); loc != nil {
		if due, ok := dates.Resolve(target[loc[1]:], now); ok {
			s.DueOn = &due
		}
	}
	return s
}

// parseTags splits a tag phrase on commas and whitespace and drops
// connective words.
func parseTags(s string) []string {
	parts := reTagSplit.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = task.CleanReference(p)
		switch strings.ToLower(p) {
		case "", "and", "&", "the", "tag", "tags":
			continue
		}
		out = append(out, p)
	}
	return task.NormalizeTags(out)
}

// cleanTarget strips quotes, punctuation and a leading "the task" from a
// task reference.
func cleanTarget(s string) string {
	s = task.CleanReference(s)
	s = reTargetPrefix.ReplaceAllString(s, "")
	return task.CleanReference(s)
}

// priorityIn returns the priority named in text, if any.
func priorityIn(text string) (task.Priority, bool) {
	for _, re := range []*regexp.Regexp{rePrioritySetTo, rePriorityBefore, rePriorityAfter} {
		if m := re.FindStringSubmatch(text); m != nil {
			if p, ok := task.ParsePriority(m[1]); ok {
				return p, true
			}
		}
	}
	return "", false
}

// splitItems splits a creation list into titles. Items are separated by
// commas, semicolons or newlines; when there are several comma items the last
// one is additionally split on "and".
func splitItems(s string) []string {
	raw := reListSplit.Split(s, -1)
	if len(raw) > 1 {
		last := raw[len(raw)-1]
		raw = append(raw[:len(raw)-1], reAndSplit.Split(last, -1)...)
	}

	items := make([]string, 0, len(raw))
	for _, it := range raw {
		it = reListMarker.ReplaceAllString(it, "")
		it = rePriorityBefore.ReplaceAllString(it, "")
		it = rePriorityAfter.ReplaceAllString(it, "")
		it = reCreateDue.ReplaceAllString(it, "")
		it = strings.TrimSpace(it)
		it = strings.TrimPrefix(it, "and ")
		it = strings.TrimSuffix(strings.TrimSpace(it), " with")
		it = task.CleanReference(it)
		if it != "" {
			items = append(items, it)
		}
	}
	return items
}

// listLines returns the bodies of numbered or bulleted lines in text.
func listLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if m := reListLine.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}
