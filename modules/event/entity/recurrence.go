package entity

import (
	"strings"
	"time"
)

// SimpleOccurrences is how many extra rows a recurrence hint produces.
const SimpleOccurrences = 10

type Occurrence struct {
	Start time.Time
	End   time.Time
}

var simpleSteps = map[string]func(time.Time) time.Time{
	"weekly":   func(t time.Time) time.Time { return t.AddDate(0, 0, 7) },
	"biweekly": func(t time.Time) time.Time { return t.AddDate(0, 0, 14) },
	"monthly":  func(t time.Time) time.Time { return t.AddDate(0, 1, 0) },
}

func IsSimpleHint(hint string) bool {
	_, ok := simpleSteps[normalizeHint(hint)]
	return ok
}

// ExpandSimpleRecurrence returns the SimpleOccurrences occurrences following
// start/end for hint. Each one is stepped from the previous occurrence, so
// month-end normalisation carries forward. Unknown hints yield nothing.
func ExpandSimpleRecurrence(start, end time.Time, hint string) []Occurrence {
	step, ok := simpleSteps[normalizeHint(hint)]
	if !ok {
		return nil
	}

	out := make([]Occurrence, 0, SimpleOccurrences)
	for i := 0; i < SimpleOccurrences; i++ {
		start, end = step(start), step(end)
		out = append(out, Occurrence{Start: start, End: end})
	}
	return out
}

func normalizeHint(hint string) string {
	return strings.ToLower(strings.TrimSpace(hint))
}
