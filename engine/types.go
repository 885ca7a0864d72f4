/*
Package engine implements the capacity and allocation apportionment core.

PURPOSE:
  This package answers two questions for a creative workforce:
  1. How many hours COULD a resource work in a window? (capacity)
  2. What fraction of a scheduling record belongs to a window? (apportionment)

  It reconciles four independent calendars into consistent hour values:
  - the resource's work-week pattern (e.g. "Sun-Thu")
  - the time-off ledger
  - company holiday windows (stored in UTC, observed at local +3h)
  - an arbitrary reporting window

KEY CONCEPTS IN THIS FILE (types.go):
  - Resource: a staff member whose capacity is being measured
  - TimeOffRecord / HolidayWindow: the two absence sources
  - SchedulingSlot: a planned allocation, possibly spanning outside the window
  - AvailabilitySummary: base/time-off/holiday hours with derived availability

DESIGN PRINCIPLES:
  1. Purity: no I/O, no shared mutable state, safe for concurrent callers
  2. Precision: decimal.Decimal for all hour and ratio arithmetic
  3. Tolerance: malformed or unknown records are dropped and logged, never
     surfaced as errors - they represent data sparsity, not faults

USAGE:
  builder := &engine.AbsenceBuilder{TimeOff: timeOff, Holidays: holidays}
  capacity := engine.CapacityCalculator{Absences: builder}
  summaries := capacity.Calculate(resources, monthStart, monthEnd)

SEE ALSO:
  - workweek.go: Calendar label resolution
  - absence.go: Per-day absence ledger construction
  - capacity.go: Available hours calculation
  - allocation.go: Slot apportionment ratios
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// WorkdayHours is one working day's worth of hours. Absence hours on any
// single day are capped at this value regardless of how many sources overlap.
var WorkdayHours = decimal.NewFromInt(8)

// LocalOffset shifts holiday window instants from their stored timezone (UTC)
// to the company's local timezone before any day-boundary logic runs.
const LocalOffset = 3 * time.Hour

// =============================================================================
// INPUT RECORDS - supplied in-memory by a data-access collaborator
// =============================================================================

// Resource is a staff member whose capacity and scheduled work are measured.
// CalendarLabel is free text (e.g. "Sun-Thu"); empty means the default
// work week. OrgKey selects which holiday windows apply; zero means the
// resource belongs to no holiday group.
type Resource struct {
	ID            int
	Name          string
	CalendarLabel string
	OrgKey        int
}

// TimeOffRecord is a single day of excused hours, pre-filtered to the
// time-off category by the collaborator.
type TimeOffRecord struct {
	ResourceID int
	Date       Date
	Hours      decimal.Decimal
}

// HolidayWindow is a leave period shared by every resource under OrgKey.
// Start and End are instants in the source timezone (UTC); they must be
// shifted by LocalOffset before date extraction.
type HolidayWindow struct {
	OrgKey int
	Start  time.Time
	End    time.Time
	Label  string
}

// SchedulingSlot is a planned allocation of a resource's time. It may span
// before or after the reporting window. A slot with End <= Start or a
// non-positive AllocatedHours is invalid and silently dropped.
type SchedulingSlot struct {
	ResourceID     int
	Start          time.Time
	End            time.Time
	AllocatedHours decimal.Decimal
}

// Window is an inclusive [Start, End] pair of calendar dates. The
// surrounding product always passes a calendar month, but the engine accepts
// any range with Start <= End.
type Window struct {
	Start Date
	End   Date
}

// Contains reports whether d falls within the window.
func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + "]"
}

// =============================================================================
// AVAILABILITY SUMMARY - capacity output per resource
// =============================================================================

// HolidayDetail is one holiday window's contribution for a resource,
// retained for UI breakdown. Display dates derive from the shifted instants.
type HolidayDetail struct {
	Label string
	Start Date
	End   Date
	Hours decimal.Decimal
}

// AvailabilitySummary holds the capacity components for one resource over a
// reporting window. AvailableHours is derived, never stored.
type AvailabilitySummary struct {
	ResourceID   int
	BaseHours    decimal.Decimal
	TimeOffHours decimal.Decimal
	HolidayHours decimal.Decimal
	Holidays     []HolidayDetail
}

// AvailableHours returns max(base - time off - holidays, 0).
func (s AvailabilitySummary) AvailableHours() decimal.Decimal {
	available := s.BaseHours.Sub(s.TimeOffHours).Sub(s.HolidayHours)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// hoursBetween converts the span from a to b into decimal hours.
// Returns zero when b is not after a.
func hoursBetween(a, b time.Time) decimal.Decimal {
	if !b.After(a) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(b.Sub(a).Hours())
}

func minDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// clampRatio clamps a ratio to [0, 1].
func clampRatio(r decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if r.IsNegative() {
		return decimal.Zero
	}
	if r.GreaterThan(one) {
		return one
	}
	return r
}

// indexResources builds an id lookup for the requested resource set.
func indexResources(resources []Resource) map[int]Resource {
	byID := make(map[int]Resource, len(resources))
	for _, r := range resources {
		byID[r.ID] = r
	}
	return byID
}
