package task

import (
	"strings"

	"golang.org/x/text/cases"
)

// referenceCutset is stripped from both ends of a reference fragment.
const referenceCutset = " \t\r\n\"'“”‘’`.,;:!?"

// CleanReference trims whitespace, surrounding quotes, and trailing
// punctuation from a free-text reference.
func CleanReference(fragment string) string {
	return strings.Trim(fragment, referenceCutset)
}

// fold returns the case-folded form of s. A Caser keeps state between calls,
// so a fresh one is used each time.
func fold(s string) string {
	return cases.Fold().String(s)
}

// matchTitles returns the indexes of titles that equal fragment and the
// indexes of titles that contain, or are contained in, fragment. Both
// comparisons are case-insensitive and both lists keep input order.
func matchTitles(fragment string, titles []string) (exact, contains []int) {
	needle := fold(CleanReference(fragment))
	if needle == "" {
		return nil, nil
	}

	for i, title := range titles {
		hay := fold(strings.TrimSpace(title))
		if hay == "" {
			continue
		}
		if hay == needle {
			exact = append(exact, i)
		}
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			contains = append(contains, i)
		}
	}
	return exact, contains
}

// FindByTitle returns the tasks matching fragment. A unique case-insensitive
// exact title match is returned alone; otherwise every task whose title
// contains fragment, or is contained in it, is returned in list order.
func FindByTitle(fragment string, candidates []Task) []Task {
	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}

	exact, contains := matchTitles(fragment, titles)
	if len(exact) == 1 {
		return []Task{candidates[exact[0]]}
	}

	out := make([]Task, 0, len(contains))
	for _, i := range contains {
		out = append(out, candidates[i])
	}
	return out
}

// ResolveTitle picks a single task for fragment. Ambiguity is not reported:
// the first exact match wins, then the first containment match in list order.
func ResolveTitle(fragment string, candidates []Task) (Task, bool) {
	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}

	exact, contains := matchTitles(fragment, titles)
	switch {
	case len(exact) > 0:
		return candidates[exact[0]], true
	case len(contains) > 0:
		return candidates[contains[0]], true
	default:
		return Task{}, false
	}
}

// FindSubtask resolves fragment against a task's subtasks with the same
// exact-then-containment rule as ResolveTitle.
func FindSubtask(fragment string, subtasks []Subtask) (Subtask, bool) {
	titles := make([]string, len(subtasks))
	for i, s := range subtasks {
		titles[i] = s.Title
	}

	exact, contains := matchTitles(fragment, titles)
	switch {
	case len(exact) > 0:
		return subtasks[exact[0]], true
	case len(contains) > 0:
		return subtasks[contains[0]], true
	default:
		return Subtask{}, false
	}
}
