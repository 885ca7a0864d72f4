package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AxtonH/UtilizationDashboard-sub000/engine"
	"github.com/AxtonH/UtilizationDashboard-sub000/reporting"
	"github.com/AxtonH/UtilizationDashboard-sub000/source"
	"github.com/AxtonH/UtilizationDashboard-sub000/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func hrs(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func seedRecords() source.Records {
	return source.Records{
		Resources: []engine.Resource{
			{ID: 1, Name: "Zara", CalendarLabel: "Sun-Thu", OrgKey: 7},
		},
		TimeOff: []engine.TimeOffRecord{
			{ResourceID: 1, Date: engine.NewDate(2025, time.September, 8), Hours: hrs(8)},
			{ResourceID: 1, Date: engine.NewDate(2025, time.October, 2), Hours: hrs(8)},
		},
		Holidays: []engine.HolidayWindow{
			{OrgKey: 7, Label: "Company Day",
				Start: time.Date(2025, time.September, 3, 21, 0, 0, 0, time.UTC),
				End:   time.Date(2025, time.September, 4, 21, 0, 0, 0, time.UTC)},
			{OrgKey: 7, Label: "Winter Break",
				Start: time.Date(2025, time.December, 24, 21, 0, 0, 0, time.UTC),
				End:   time.Date(2025, time.December, 31, 21, 0, 0, 0, time.UTC)},
		},
		Slots: []engine.SchedulingSlot{
			// Overlaps September despite starting in August.
			{ResourceID: 1, AllocatedHours: hrs(160),
				Start: time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC)},
			{ResourceID: 1, AllocatedHours: hrs(40),
				Start: time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2025, time.November, 8, 0, 0, 0, 0, time.UTC)},
		},
		WorkLogs: []reporting.WorkLog{
			{ResourceID: 1, Date: engine.NewDate(2025, time.September, 7), Hours: hrs(7.5)},
		},
	}
}

func september() engine.Window {
	return engine.Window{
		Start: engine.NewDate(2025, time.September, 1),
		End:   engine.NewDate(2025, time.September, 30),
	}
}

func TestStore_SeedAndFetchRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Seed(ctx, seedRecords()))

	records, err := store.Fetch(ctx, september())
	require.NoError(t, err)

	require.Len(t, records.Resources, 1)
	assert.Equal(t, "Zara", records.Resources[0].Name)
	assert.Equal(t, "Sun-Thu", records.Resources[0].CalendarLabel)
	assert.Equal(t, 7, records.Resources[0].OrgKey)

	require.Len(t, records.WorkLogs, 1)
	assert.True(t, records.WorkLogs[0].Hours.Equal(hrs(7.5)))
}

func TestStore_Resources(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Seed(ctx, seedRecords()))

	resources, err := store.Resources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "Zara", resources[0].Name)
}

func TestStore_Fetch_FiltersDatedRecordsToWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Seed(ctx, seedRecords()))

	records, err := store.Fetch(ctx, september())
	require.NoError(t, err)

	// The October time-off entry is outside the window.
	require.Len(t, records.TimeOff, 1)
	assert.Equal(t, engine.NewDate(2025, time.September, 8), records.TimeOff[0].Date)
}

func TestStore_Fetch_ReturnsOverlappingSlotsAndHolidays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Seed(ctx, seedRecords()))

	records, err := store.Fetch(ctx, september())
	require.NoError(t, err)

	// The Aug 15 .. Sep 15 slot overlaps the window and keeps its full
	// extent; the November slot does not appear.
	require.Len(t, records.Slots, 1)
	assert.Equal(t, time.August, records.Slots[0].Start.Month())
	assert.True(t, records.Slots[0].AllocatedHours.Equal(hrs(160)))

	require.Len(t, records.Holidays, 1)
	assert.Equal(t, "Company Day", records.Holidays[0].Label)
}

func TestStore_Fetch_HolidayOnFirstLocalDayOfWindow(t *testing.T) {
	// GIVEN: A holiday stored as 2025-08-31 22:00 .. 23:00 UTC, which is
	//        2025-09-01 01:00 .. 02:00 local (+3h) and so contributes one
	//        hour of absence on the window's first day
	// WHEN: Fetching the September window
	// THEN: The holiday is returned even though its UTC instants precede
	//       the window's first UTC midnight

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Seed(ctx, source.Records{
		Resources: []engine.Resource{
			{ID: 1, Name: "Zara", CalendarLabel: "Sun-Thu", OrgKey: 7},
		},
		Holidays: []engine.HolidayWindow{
			{OrgKey: 7, Label: "Eve Observance",
				Start: time.Date(2025, time.August, 31, 22, 0, 0, 0, time.UTC),
				End:   time.Date(2025, time.August, 31, 23, 0, 0, 0, time.UTC)},
		},
	}))

	records, err := store.Fetch(ctx, september())
	require.NoError(t, err)

	require.Len(t, records.Holidays, 1)
	assert.Equal(t, "Eve Observance", records.Holidays[0].Label)

	builder := &engine.AbsenceBuilder{Holidays: records.Holidays}
	ledger := builder.Build(records.Resources, september().Start, september().End)
	assert.True(t, ledger.HolidayOn(1, engine.NewDate(2025, time.September, 1)).Equal(hrs(1)))
}

func TestStore_Fetch_HolidayBeyondLocalWindowExcluded(t *testing.T) {
	// A window starting 2025-09-30 21:00 UTC is 2025-10-01 00:00 local; it
	// contributes nothing to September and stays out of the fetch.

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Seed(ctx, source.Records{
		Holidays: []engine.HolidayWindow{
			{OrgKey: 7, Label: "October Day",
				Start: time.Date(2025, time.September, 30, 21, 0, 0, 0, time.UTC),
				End:   time.Date(2025, time.October, 1, 21, 0, 0, 0, time.UTC)},
		},
	}))

	records, err := store.Fetch(ctx, september())
	require.NoError(t, err)
	assert.Empty(t, records.Holidays)
}

func TestStore_Fetch_EmptyStore(t *testing.T) {
	store := newTestStore(t)

	records, err := store.Fetch(context.Background(), september())
	require.NoError(t, err)
	assert.Empty(t, records.Resources)
	assert.Empty(t, records.Slots)
}
