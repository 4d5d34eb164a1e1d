// Package dates resolves date-referring phrases ("tomorrow", "next Friday",
// "in 5 days", "15th of December") into concrete instants relative to a
// reference time. Resolution is deterministic for a fixed reference and keeps
// the reference's clock time.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reWeekday = regexp.MustCompile(`(?i)\b(?:(next|this|on|coming)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

	reToday     = regexp.MustCompile(`(?i)\btoday\b`)
	reTomorrow  = regexp.MustCompile(`(?i)\btomorrow\b`)
	reNextWeek  = regexp.MustCompile(`(?i)\bnext\s+week\b`)
	reNextMonth = regexp.MustCompile(`(?i)\bnext\s+month\b`)

	monthNames = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|apr|jun|jul|aug|sept|sep|oct|nov|dec`
	reDayMonth = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthNames + `)\b`)
	reMonthDay = regexp.MustCompile(`(?i)\b(` + monthNames + `)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)

	reInCount = regexp.MustCompile(`(?i)\bin\s+(\d+|one|two|three|four|five|six|seven|eight|nine|ten)\s+(days?|weeks?)\b`)

	numberWords = map[string]int{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	}
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var months = map[string]time.Month{
	"january":   time.January,
	"jan":       time.January,
	"february":  time.February,
	"feb":       time.February,
	"march":     time.March,
	"april":     time.April,
	"apr":       time.April,
	"may":       time.May,
	"june":      time.June,
	"jun":       time.June,
	"july":      time.July,
	"jul":       time.July,
	"august":    time.August,
	"aug":       time.August,
	"september": time.September,
	"sept":      time.September,
	"sep":       time.September,
	"october":   time.October,
	"oct":       time.October,
	"november":  time.November,
	"nov":       time.November,
	"december":  time.December,
	"dec":       time.December,
}

// Resolve returns the instant referred to by the first date phrase found in
// text. Patterns are tried in a fixed order (weekday, relative unit, day of
// month, relative count) and the first satisfied one wins; phrases are never
// combined. The second return value is false when no phrase matches.
func Resolve(text string, now time.Time) (time.Time, bool) {
	for _, resolve := range []func(string, time.Time) (time.Time, bool){
		resolveWeekday,
		resolveRelativeUnit,
		resolveDayOfMonth,
		resolveRelativeCount,
	} {
		if t, ok := resolve(text, now); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// resolveWeekday handles "next Friday", "this Monday", "on Tuesday" and bare
// weekday names. Today is excluded unless the modifier is "this".
func resolveWeekday(text string, now time.Time) (time.Time, bool) {
	m := reWeekday.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	modifier := strings.ToLower(m[1])
	target := weekdays[strings.ToLower(m[2])]

	ahead := (int(target) - int(now.Weekday()) + 7) % 7
	if ahead == 0 && modifier != "this" {
		ahead = 7
	}
	return now.AddDate(0, 0, ahead), true
}

func resolveRelativeUnit(text string, now time.Time) (time.Time, bool) {
	switch {
	case reToday.MatchString(text):
		return now, true
	case reTomorrow.MatchString(text):
		return now.AddDate(0, 0, 1), true
	case reNextWeek.MatchString(text):
		return now.AddDate(0, 0, 7), true
	case reNextMonth.MatchString(text):
		return now.AddDate(0, 1, 0), true
	}
	return time.Time{}, false
}

// resolveDayOfMonth handles "15th of December", "15 December" and
// "December 15th". A month earlier in the year than now rolls to next year.
func resolveDayOfMonth(text string, now time.Time) (time.Time, bool) {
	var dayStr, monthStr string
	if m := reDayMonth.FindStringSubmatch(text); m != nil {
		dayStr, monthStr = m[1], m[2]
	} else if m := reMonthDay.FindStringSubmatch(text); m != nil {
		monthStr, dayStr = m[1], m[2]
	} else {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month := months[strings.ToLower(monthStr)]

	year := now.Year()
	if month < now.Month() {
		year++
	}

	t := time.Date(year, month, day, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
	if t.Month() != month {
		// Day does not exist in that month (e.g. 31st of April).
		return time.Time{}, false
	}
	return t, true
}

func resolveRelativeCount(text string, now time.Time) (time.Time, bool) {
	m := reInCount.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	n, ok := numberWords[strings.ToLower(m[1])]
	if !ok {
		var err error
		n, err = strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
	}

	if strings.HasPrefix(strings.ToLower(m[2]), "week") {
		n *= 7
	}
	return now.AddDate(0, 0, n), true
}
