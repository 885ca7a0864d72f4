/*
workweek.go - Calendar label resolution

PURPOSE:
  Maps the free-text calendar label attached to a resource (e.g. "Sun-Thu",
  "mon - fri", "Sat-Wed shift") to a concrete set of active weekdays.

MATCHING RULES:
  1. Labels are lowercased and stripped of all whitespace.
  2. Each known pattern key is tested with a substring match, in order;
     the first hit wins ("Sun-Thu (Dubai)" still resolves to Sun-Thu).
  3. No match, or an empty label, falls back to Monday-Friday.

  Resolution is a pure function with no failure mode: every input maps to
  some five-day pattern.

SEE ALSO:
  - capacity.go: Uses the pattern to count base workdays
  - absence.go: Uses the pattern to skip holiday hours on off days
*/
package engine

import (
	"strings"
	"time"
)

// WorkWeek is the set of weekdays a resource is expected to work.
type WorkWeek map[time.Weekday]bool

// Includes reports whether the weekday is an active working day.
func (w WorkWeek) Includes(day time.Weekday) bool { return w[day] }

// Workdays returns the number of active days per week.
func (w WorkWeek) Workdays() int { return len(w) }

func newWorkWeek(days ...time.Weekday) WorkWeek {
	w := make(WorkWeek, len(days))
	for _, d := range days {
		w[d] = true
	}
	return w
}

// DefaultWorkWeek is Monday through Friday, used when no label matches.
func DefaultWorkWeek() WorkWeek {
	return newWorkWeek(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
}

// workWeekPattern pairs a normalized label key with its weekday set.
// Order matters: the first key contained in the label wins.
type workWeekPattern struct {
	key  string
	days WorkWeek
}

var workWeekPatterns = []workWeekPattern{
	{"sun-thu", newWorkWeek(time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday)},
	{"sunday-thursday", newWorkWeek(time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday)},
	{"mon-fri", newWorkWeek(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)},
	{"monday-friday", newWorkWeek(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)},
	{"sat-wed", newWorkWeek(time.Saturday, time.Sunday, time.Monday, time.Tuesday, time.Wednesday)},
	{"saturday-wednesday", newWorkWeek(time.Saturday, time.Sunday, time.Monday, time.Tuesday, time.Wednesday)},
	{"fri-tue", newWorkWeek(time.Friday, time.Saturday, time.Sunday, time.Monday, time.Tuesday)},
	{"friday-tuesday", newWorkWeek(time.Friday, time.Saturday, time.Sunday, time.Monday, time.Tuesday)},
}

// ResolveWorkWeek maps a calendar label to its work-week pattern.
// Unknown or empty labels resolve to the default Monday-Friday week.
func ResolveWorkWeek(label string) WorkWeek {
	normalized := strings.ToLower(label)
	normalized = strings.Join(strings.Fields(normalized), "")

	for _, p := range workWeekPatterns {
		if strings.Contains(normalized, p.key) {
			return p.days
		}
	}
	return DefaultWorkWeek()
}
