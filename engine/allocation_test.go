package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AxtonH/UtilizationDashboard-sub000/engine"
)

func apportion(t *testing.T, builder *engine.AbsenceBuilder, slots []engine.SchedulingSlot,
	resources []engine.Resource, from, to engine.Date) map[int]decimal.Decimal {
	t.Helper()
	calc := engine.AllocationCalculator{Absences: builder}
	return calc.Apportion(slots, resources, from, to)
}

func TestApportion_SlotFullyInsideWindow_FullAllocation(t *testing.T) {
	// GIVEN: A Mon-Fri resource, no absences, and a slot entirely inside
	//        the reporting window
	// THEN: ratio resolves to 1.0 and the full allocation is attributed

	slots := []engine.SchedulingSlot{{
		ResourceID:     1,
		Start:          utc(2025, time.September, 8, 0, 0, 0),
		End:            utc(2025, time.September, 13, 0, 0, 0),
		AllocatedHours: hrs(40),
	}}

	totals := apportion(t, &engine.AbsenceBuilder{}, slots,
		[]engine.Resource{monFriResource(1, 0)},
		engine.NewDate(2025, time.September, 1), engine.NewDate(2025, time.September, 30))

	assert.True(t, totals[1].Equal(hrs(40)), "got %s", totals[1])
}

func TestApportion_SlotFullyOutsideWindow_Zero(t *testing.T) {
	slots := []engine.SchedulingSlot{{
		ResourceID:     1,
		Start:          utc(2025, time.August, 4, 0, 0, 0),
		End:            utc(2025, time.August, 9, 0, 0, 0),
		AllocatedHours: hrs(40),
	}}

	totals := apportion(t, &engine.AbsenceBuilder{}, slots,
		[]engine.Resource{monFriResource(1, 0)},
		engine.NewDate(2025, time.September, 1), engine.NewDate(2025, time.September, 30))

	require.Contains(t, totals, 1, "output map is fully populated")
	assert.True(t, totals[1].IsZero())
}

func TestApportion_CrossMonthSlot_WorkingHourWeightedRatio(t *testing.T) {
	// GIVEN: A slot 2025-01-15T00:00 .. 2025-02-15T00:00 with 160 allocated
	//        hours and the window 2025-01-01..2025-01-31, Mon-Fri, no absences
	// THEN: ratio = working hours in [Jan 15, Feb 1) / working hours in the
	//       full span = 13 workdays / 23 workdays

	slots := []engine.SchedulingSlot{{
		ResourceID:     1,
		Start:          utc(2025, time.January, 15, 0, 0, 0),
		End:            utc(2025, time.February, 15, 0, 0, 0),
		AllocatedHours: hrs(160),
	}}

	totals := apportion(t, &engine.AbsenceBuilder{}, slots,
		[]engine.Resource{monFriResource(1, 0)},
		engine.NewDate(2025, time.January, 1), engine.NewDate(2025, time.January, 31))

	expected := 160.0 * 13.0 / 23.0
	got, _ := totals[1].Float64()
	assert.InDelta(t, expected, got, 0.0001)
}

func TestApportion_WeekendOnlySlot_WallClockFallback(t *testing.T) {
	// GIVEN: A slot entirely on Sat/Sun for a Mon-Fri resource (denominator
	//        is zero after weekend exclusion), half of it inside the window
	// THEN: The wall-clock ratio attributes half the allocation - the slot
	//       is never silently dropped

	slots := []engine.SchedulingSlot{{
		ResourceID:     1,
		Start:          utc(2025, time.August, 30, 0, 0, 0), // Saturday
		End:            utc(2025, time.September, 1, 0, 0, 0),
		AllocatedHours: hrs(10),
	}}

	totals := apportion(t, &engine.AbsenceBuilder{}, slots,
		[]engine.Resource{monFriResource(1, 0)},
		engine.NewDate(2025, time.August, 31), engine.NewDate(2025, time.September, 30))

	got, _ := totals[1].Float64()
	assert.InDelta(t, 5.0, got, 0.0001)
}

func TestApportion_FullyAbsentSlot_WallClockFallback(t *testing.T) {
	// GIVEN: A one-day slot on a Monday fully covered by time off
	// THEN: The denominator is zero and the wall-clock fallback applies

	monday := engine.NewDate(2025, time.September, 8)
	builder := &engine.AbsenceBuilder{
		TimeOff: []engine.TimeOffRecord{{ResourceID: 1, Date: monday, Hours: hrs(8)}},
	}
	slots := []engine.SchedulingSlot{{
		ResourceID:     1,
		Start:          monday.Time(),
		End:            monday.AddDays(1).Time(),
		AllocatedHours: hrs(8),
	}}

	totals := apportion(t, builder, slots,
		[]engine.Resource{monFriResource(1, 0)},
		engine.NewDate(2025, time.September, 1), engine.NewDate(2025, time.September, 30))

	// Whole slot is inside the window: wall-clock ratio is 1.
	assert.True(t, totals[1].Equal(hrs(8)), "got %s", totals[1])
}

func TestApportion_AbsenceReducesDenominator(t *testing.T) {
	// GIVEN: A two-workday slot with the first day fully absent, and a
	//        window covering only the second day
	// THEN: All working hours sit in the window, so the full allocation
	//       lands there

	slots := []engine.SchedulingSlot{{
		ResourceID:     1,
		Start:          utc(2025, time.September, 8, 0, 0, 0), // Mon
		End:            utc(2025, time.September, 10, 0, 0, 0),
		AllocatedHours: hrs(16),
	}}
	builder := &engine.AbsenceBuilder{
		TimeOff: []engine.TimeOffRecord{
			{ResourceID: 1, Date: engine.NewDate(2025, time.September, 8), Hours: hrs(8)},
		},
	}

	totals := apportion(t, builder, slots,
		[]engine.Resource{monFriResource(1, 0)},
		engine.NewDate(2025, time.September, 9), engine.NewDate(2025, time.September, 9))

	assert.True(t, totals[1].Equal(hrs(16)), "got %s", totals[1])
}

func TestApportion_InvalidSlotsDropped(t *testing.T) {
	slots := []engine.SchedulingSlot{
		{ // inverted range
			ResourceID:     1,
			Start:          utc(2025, time.September, 10, 0, 0, 0),
			End:            utc(2025, time.September, 8, 0, 0, 0),
			AllocatedHours: hrs(16),
		},
		{ // non-positive allocation
			ResourceID:     1,
			Start:          utc(2025, time.September, 8, 0, 0, 0),
			End:            utc(2025, time.September, 10, 0, 0, 0),
			AllocatedHours: hrs(0),
		},
		{ // unknown resource
			ResourceID:     42,
			Start:          utc(2025, time.September, 8, 0, 0, 0),
			End:            utc(2025, time.September, 10, 0, 0, 0),
			AllocatedHours: hrs(16),
		},
	}

	totals := apportion(t, &engine.AbsenceBuilder{}, slots,
		[]engine.Resource{monFriResource(1, 0)},
		engine.NewDate(2025, time.September, 1), engine.NewDate(2025, time.September, 30))

	require.Len(t, totals, 1)
	assert.True(t, totals[1].IsZero())
}

func TestApportion_TilingSlotsSumToAvailableHours(t *testing.T) {
	// GIVEN: Slots exactly tiling a week of the window, each allocated its
	//        working-hour content, no absences
	// THEN: The apportioned sum equals the available hours of that week

	var slots []engine.SchedulingSlot
	for day := 8; day <= 12; day++ { // Mon..Fri
		slots = append(slots, engine.SchedulingSlot{
			ResourceID:     1,
			Start:          utc(2025, time.September, day, 0, 0, 0),
			End:            utc(2025, time.September, day+1, 0, 0, 0),
			AllocatedHours: hrs(8),
		})
	}

	totals := apportion(t, &engine.AbsenceBuilder{}, slots,
		[]engine.Resource{monFriResource(1, 0)},
		engine.NewDate(2025, time.September, 8), engine.NewDate(2025, time.September, 12))

	assert.True(t, totals[1].Equal(hrs(40)), "got %s", totals[1])
}

func TestApportion_Idempotent(t *testing.T) {
	slots := []engine.SchedulingSlot{{
		ResourceID:     1,
		Start:          utc(2025, time.January, 15, 0, 0, 0),
		End:            utc(2025, time.February, 15, 0, 0, 0),
		AllocatedHours: hrs(160),
	}}
	resources := []engine.Resource{monFriResource(1, 0)}
	from, to := engine.NewDate(2025, time.January, 1), engine.NewDate(2025, time.January, 31)

	first := apportion(t, &engine.AbsenceBuilder{}, slots, resources, from, to)
	second := apportion(t, &engine.AbsenceBuilder{}, slots, resources, from, to)

	assert.True(t, first[1].Equal(second[1]))
}
