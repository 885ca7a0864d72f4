/*
capacity.go - Available hours calculation

PURPOSE:
  Computes gross, time-off, holiday, and net available hours per resource
  over a reporting window. This is the "how many hours COULD they work"
  half of the engine.

ALGORITHM:
  1. Resolve the resource's work-week pattern from its calendar label.
  2. base = workdays in the inclusive window x WorkdayHours.
  3. Build one absence ledger over the window; split its totals into
     time-off vs holiday hours and keep the per-window holiday breakdown.
  4. available = max(base - time off - holidays, 0), derived on read.

  No division happens here; utilization percentages belong to the
  reporting layer.

SEE ALSO:
  - absence.go: Ledger construction
  - reporting/utilization.go: Divides these numbers into percentages
*/
package engine

import "github.com/shopspring/decimal"

// CapacityCalculator computes availability summaries from the work-week
// pattern and the absence ledger.
type CapacityCalculator struct {
	Absences *AbsenceBuilder
}

// Calculate returns an AvailabilitySummary for every requested resource
// over the inclusive [from, to] window. Resources with no time-off or no
// holiday group yield zero components, not errors.
func (c CapacityCalculator) Calculate(resources []Resource, from, to Date) map[int]AvailabilitySummary {
	summaries := make(map[int]AvailabilitySummary, len(resources))
	if to.Before(from) {
		return summaries
	}

	ledger := c.Absences.Build(resources, from, to)

	for _, r := range resources {
		pattern := ResolveWorkWeek(r.CalendarLabel)
		base := decimal.NewFromInt(int64(countWorkdays(from, to, pattern))).Mul(WorkdayHours)

		summaries[r.ID] = AvailabilitySummary{
			ResourceID:   r.ID,
			BaseHours:    base,
			TimeOffHours: ledger.TimeOffTotal(r.ID),
			HolidayHours: ledger.HolidayTotal(r.ID),
			Holidays:     ledger.HolidayDetails(r.ID),
		}
	}
	return summaries
}

// countWorkdays walks every calendar day in the inclusive range and counts
// the ones whose weekday belongs to the pattern.
func countWorkdays(from, to Date, pattern WorkWeek) int {
	count := 0
	for day := from; !day.After(to); day = day.AddDays(1) {
		if pattern.Includes(day.Weekday()) {
			count++
		}
	}
	return count
}
