/*
allocation.go - Slot apportionment ratios

PURPOSE:
  Apportions scheduling slots that may span multiple months, weekends, and
  absences into the fraction attributable to a reporting window, weighted
  by actual working hours rather than raw elapsed time.

ALGORITHM (per batch):
  1. Drop invalid slots: inverted time range, non-positive allocation, or a
     resource outside the requested set.
  2. Build ONE absence ledger over the union span of all surviving slots
     (min start .. max end) - not the reporting window. A slot's full
     working-hour denominator must reflect its true extent, and sharing the
     ledger avoids per-slot recomputation.
  3. Per slot:
       denominator = working hours across the whole slot
       overlap     = slot intersected with the window; empty -> skip
       ratio       = working hours in overlap / denominator
  4. Degenerate slots (denominator zero after weekend/absence exclusion)
     fall back to a raw wall-clock ratio so their allocation is never
     silently dropped. This can over- or under-state hours for slots with
     heavy absence overlap; it is a deliberate approximation.
  5. Clamp the ratio to [0, 1] and accumulate allocated x ratio.

  The output map is fully populated: resources with no contributing slots
  report zero, not an absent key.

SEE ALSO:
  - absence.go: Shared ledger over the union span
  - workweek.go: Weekday exclusion during the day walk
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AllocationCalculator apportions scheduling slots into reporting windows.
type AllocationCalculator struct {
	Absences *AbsenceBuilder

	// Log receives dropped-slot diagnostics. Nil means silent.
	Log logrus.FieldLogger
}

// Apportion returns the sum of apportioned hours per resource for the
// inclusive [from, to] window. Every requested resource has an entry.
func (c AllocationCalculator) Apportion(slots []SchedulingSlot, resources []Resource, from, to Date) map[int]decimal.Decimal {
	totals := make(map[int]decimal.Decimal, len(resources))
	for _, r := range resources {
		totals[r.ID] = decimal.Zero
	}

	byID := indexResources(resources)
	valid := c.filterSlots(slots, byID)
	if len(valid) == 0 {
		return totals
	}

	// One ledger over the full span touched by all slots.
	spanStart, spanEnd := slotSpan(valid)
	ledger := c.Absences.Build(resources, DateOf(spanStart), DateOf(spanEnd))

	windowStart := from.Time()
	windowEnd := to.AddDays(1).Time() // window is inclusive of its end date

	patterns := make(map[int]WorkWeek, len(resources))
	for _, r := range resources {
		patterns[r.ID] = ResolveWorkWeek(r.CalendarLabel)
	}

	for _, slot := range valid {
		pattern := patterns[slot.ResourceID]

		overlapStart := maxTime(slot.Start, windowStart)
		overlapEnd := minTime(slot.End, windowEnd)
		if !overlapEnd.After(overlapStart) {
			continue
		}

		denominator := workingHours(slot.Start, slot.End, slot.ResourceID, pattern, ledger)

		var ratio decimal.Decimal
		if denominator.IsPositive() {
			overlapHours := workingHours(overlapStart, overlapEnd, slot.ResourceID, pattern, ledger)
			ratio = overlapHours.Div(denominator)
		} else {
			// Degenerate slot: all weekend or fully absent. Fall back to the
			// wall-clock ratio rather than dropping the allocation.
			c.debug(logrus.Fields{"resource_id": slot.ResourceID, "start": slot.Start, "end": slot.End},
				"slot has no working hours, using wall-clock ratio")
			ratio = hoursBetween(overlapStart, overlapEnd).Div(hoursBetween(slot.Start, slot.End))
		}

		ratio = clampRatio(ratio)
		if ratio.IsZero() {
			continue
		}
		totals[slot.ResourceID] = totals[slot.ResourceID].Add(slot.AllocatedHours.Mul(ratio))
	}
	return totals
}

// filterSlots drops malformed slots and slots referencing unknown resources.
func (c AllocationCalculator) filterSlots(slots []SchedulingSlot, byID map[int]Resource) []SchedulingSlot {
	valid := slots[:0:0]
	for _, slot := range slots {
		if _, known := byID[slot.ResourceID]; !known {
			c.debug(logrus.Fields{"resource_id": slot.ResourceID}, "dropping slot for unknown resource")
			continue
		}
		if !slot.End.After(slot.Start) {
			c.debug(logrus.Fields{"resource_id": slot.ResourceID, "start": slot.Start, "end": slot.End},
				"dropping slot with inverted time range")
			continue
		}
		if !slot.AllocatedHours.IsPositive() {
			c.debug(logrus.Fields{"resource_id": slot.ResourceID}, "dropping slot with non-positive allocation")
			continue
		}
		// Normalize to UTC so day boundaries line up with Date.Time().
		slot.Start = slot.Start.UTC()
		slot.End = slot.End.UTC()
		valid = append(valid, slot)
	}
	return valid
}

// slotSpan returns the minimum start and maximum end across the slots.
func slotSpan(slots []SchedulingSlot) (time.Time, time.Time) {
	start, end := slots[0].Start, slots[0].End
	for _, s := range slots[1:] {
		start = minTime(start, s.Start)
		end = maxTime(end, s.End)
	}
	return start, end
}

// workingHours walks each calendar day the [start, end) interval touches:
// the portion of the day inside the interval, capped at one working day,
// minus that day's absence hours (floored at zero), skipping weekdays
// outside the pattern entirely.
func workingHours(start, end time.Time, resourceID int, pattern WorkWeek, ledger *AbsenceLedger) decimal.Decimal {
	total := decimal.Zero
	for day := DateOf(start); !day.After(DateOf(end)); day = day.AddDays(1) {
		dayStart := day.Time()
		dayEnd := dayStart.Add(24 * time.Hour)
		segStart := maxTime(start, dayStart)
		segEnd := minTime(end, dayEnd)
		if !segEnd.After(segStart) {
			continue
		}
		if !pattern.Includes(day.Weekday()) {
			continue
		}

		available := minDecimal(hoursBetween(segStart, segEnd), WorkdayHours).Sub(ledger.HoursOn(resourceID, day))
		if available.IsPositive() {
			total = total.Add(available)
		}
	}
	return total
}

func (c AllocationCalculator) debug(fields logrus.Fields, msg string) {
	if c.Log != nil {
		c.Log.WithFields(fields).Debug(msg)
	}
}
