/*
absence.go - Per-day absence ledger construction

PURPOSE:
  Merges the two absence sources - time-off entries and company holiday
  windows - into a per-resource, per-day map of non-working hours over an
  arbitrary date span.

INVARIANT:
  Absence hours for any single (resource, day) never exceed one working
  day's worth (WorkdayHours), no matter how many sources overlap. Time-off
  is applied first; holiday hours only fill the remaining headroom.

HOLIDAY TIMEZONE RULE:
  Holiday windows are stored in UTC and must be shifted by LocalOffset
  BEFORE any day-boundary logic. An end instant that lands exactly on local
  midnight is exclusive: the holiday ends at the close of the previous
  local day. Any other end instant is inclusive of its local day.

ERROR HANDLING:
  Records referencing resources outside the requested set, and windows with
  inverted time ranges, are dropped and logged at a diagnostic level. They
  represent expected data sparsity, not faults. A resource with no absences
  simply has no ledger entry; callers treat a missing key as zero.

SEE ALSO:
  - capacity.go: Splits ledger totals into time-off vs holiday hours
  - allocation.go: Subtracts ledger hours from slot working-hour walks
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// ABSENCE LEDGER - merged per-day absence hours
// =============================================================================

// AbsenceLedger is the merged, per-day map of excused hours per resource.
// The two sources stay distinguishable so the capacity calculator can report
// them separately; HoursOn returns the combined, capped value.
type AbsenceLedger struct {
	timeOff map[int]map[Date]decimal.Decimal
	holiday map[int]map[Date]decimal.Decimal
	details map[int][]HolidayDetail
}

func newAbsenceLedger() *AbsenceLedger {
	return &AbsenceLedger{
		timeOff: make(map[int]map[Date]decimal.Decimal),
		holiday: make(map[int]map[Date]decimal.Decimal),
		details: make(map[int][]HolidayDetail),
	}
}

// HoursOn returns the combined absence hours for a (resource, day), capped
// at one working day. Missing entries are zero.
func (l *AbsenceLedger) HoursOn(resourceID int, day Date) decimal.Decimal {
	total := l.timeOff[resourceID][day].Add(l.holiday[resourceID][day])
	return minDecimal(total, WorkdayHours)
}

// TimeOffOn returns the time-off hours for a (resource, day).
func (l *AbsenceLedger) TimeOffOn(resourceID int, day Date) decimal.Decimal {
	return l.timeOff[resourceID][day]
}

// HolidayOn returns the holiday hours for a (resource, day).
func (l *AbsenceLedger) HolidayOn(resourceID int, day Date) decimal.Decimal {
	return l.holiday[resourceID][day]
}

// TimeOffTotal sums a resource's time-off hours across the built span.
func (l *AbsenceLedger) TimeOffTotal(resourceID int) decimal.Decimal {
	return sumDays(l.timeOff[resourceID])
}

// HolidayTotal sums a resource's holiday hours across the built span.
func (l *AbsenceLedger) HolidayTotal(resourceID int) decimal.Decimal {
	return sumDays(l.holiday[resourceID])
}

// HolidayDetails returns the per-window holiday breakdown for a resource,
// ordered by display start date. The slice is a copy; mutating it does not
// touch the ledger.
func (l *AbsenceLedger) HolidayDetails(resourceID int) []HolidayDetail {
	details := l.details[resourceID]
	if details == nil {
		return nil
	}
	return append([]HolidayDetail(nil), details...)
}

func sumDays(days map[Date]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, h := range days {
		total = total.Add(h)
	}
	return total
}

// =============================================================================
// ABSENCE BUILDER
// =============================================================================

// AbsenceBuilder builds absence ledgers from raw records supplied by the
// data-access collaborator. The builder itself is stateless between Build
// calls; each call produces a fresh ledger for the requested span.
type AbsenceBuilder struct {
	TimeOff  []TimeOffRecord
	Holidays []HolidayWindow

	// Log receives dropped-record diagnostics. Nil means silent.
	Log logrus.FieldLogger
}

// Build merges both absence sources for the given resources over the
// inclusive [from, to] date span.
func (b *AbsenceBuilder) Build(resources []Resource, from, to Date) *AbsenceLedger {
	ledger := newAbsenceLedger()
	byID := indexResources(resources)

	b.applyTimeOff(ledger, byID, from, to)
	b.applyHolidays(ledger, resources, from, to)

	for id := range ledger.details {
		sort.Slice(ledger.details[id], func(i, j int) bool {
			a, z := ledger.details[id][i], ledger.details[id][j]
			if !a.Start.Equal(z.Start) {
				return a.Start.Before(z.Start)
			}
			return a.Label < z.Label
		})
	}
	return ledger
}

func (b *AbsenceBuilder) applyTimeOff(ledger *AbsenceLedger, byID map[int]Resource, from, to Date) {
	for _, rec := range b.TimeOff {
		if _, known := byID[rec.ResourceID]; !known {
			b.debug(logrus.Fields{"resource_id": rec.ResourceID, "date": rec.Date.String()},
				"dropping time-off record for unknown resource")
			continue
		}
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		if !rec.Hours.IsPositive() {
			b.debug(logrus.Fields{"resource_id": rec.ResourceID, "date": rec.Date.String()},
				"dropping time-off record with non-positive hours")
			continue
		}

		days := ledger.timeOff[rec.ResourceID]
		if days == nil {
			days = make(map[Date]decimal.Decimal)
			ledger.timeOff[rec.ResourceID] = days
		}
		days[rec.Date] = minDecimal(days[rec.Date].Add(rec.Hours), WorkdayHours)
	}
}

func (b *AbsenceBuilder) applyHolidays(ledger *AbsenceLedger, resources []Resource, from, to Date) {
	// Group resources by holiday group and resolve each pattern once.
	byOrg := make(map[int][]Resource)
	patterns := make(map[int]WorkWeek, len(resources))
	for _, r := range resources {
		patterns[r.ID] = ResolveWorkWeek(r.CalendarLabel)
		if r.OrgKey != 0 {
			byOrg[r.OrgKey] = append(byOrg[r.OrgKey], r)
		}
	}

	for _, w := range b.Holidays {
		members := byOrg[w.OrgKey]
		if len(members) == 0 {
			continue
		}

		start := w.Start.UTC().Add(LocalOffset)
		end := w.End.UTC().Add(LocalOffset)
		if !end.After(start) {
			b.warn(logrus.Fields{"label": w.Label, "org_key": w.OrgKey},
				"dropping holiday window with inverted time range")
			continue
		}

		startDay := DateOf(start)
		endDay := DateOf(end)
		// A local-midnight end is exclusive: the holiday ends at the close
		// of the previous local day.
		if end.Equal(endDay.Time()) {
			endDay = endDay.AddDays(-1)
		}
		if endDay.Before(startDay) {
			continue
		}

		windowHours := make(map[int]decimal.Decimal, len(members))
		first, last := startDay, endDay
		if first.Before(from) {
			first = from
		}
		if last.After(to) {
			last = to
		}

		for day := first; !day.After(last); day = day.AddDays(1) {
			dayStart := day.Time()
			dayEnd := dayStart.Add(24 * time.Hour)
			segStart := maxTime(start, dayStart)
			segEnd := minTime(end, dayEnd)
			if !segEnd.After(segStart) {
				continue
			}
			dayHours := minDecimal(hoursBetween(segStart, segEnd), WorkdayHours)

			for _, member := range members {
				if !patterns[member.ID].Includes(day.Weekday()) {
					continue
				}
				added := ledger.addHoliday(member.ID, day, dayHours)
				if added.IsPositive() {
					windowHours[member.ID] = windowHours[member.ID].Add(added)
				}
			}
		}

		for _, member := range members {
			hours := windowHours[member.ID]
			if !hours.IsPositive() {
				continue
			}
			ledger.details[member.ID] = append(ledger.details[member.ID], HolidayDetail{
				Label: w.Label,
				Start: startDay,
				End:   endDay,
				Hours: hours,
			})
		}
	}
}

// addHoliday credits holiday hours on a day, limited to the headroom left
// under the per-day cap after time-off and earlier holiday windows.
// Returns the hours actually added.
func (l *AbsenceLedger) addHoliday(resourceID int, day Date, hours decimal.Decimal) decimal.Decimal {
	headroom := WorkdayHours.Sub(l.timeOff[resourceID][day]).Sub(l.holiday[resourceID][day])
	if !headroom.IsPositive() {
		return decimal.Zero
	}
	added := minDecimal(hours, headroom)
	if !added.IsPositive() {
		return decimal.Zero
	}

	days := l.holiday[resourceID]
	if days == nil {
		days = make(map[Date]decimal.Decimal)
		l.holiday[resourceID] = days
	}
	days[day] = days[day].Add(added)
	return added
}

func (b *AbsenceBuilder) debug(fields logrus.Fields, msg string) {
	if b.Log != nil {
		b.Log.WithFields(fields).Debug(msg)
	}
}

func (b *AbsenceBuilder) warn(fields logrus.Fields, msg string) {
	if b.Log != nil {
		b.Log.WithFields(fields).Warn(msg)
	}
}
