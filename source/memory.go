package source

import (
	"context"
	"sync"

	"github.com/AxtonH/UtilizationDashboard-sub000/engine"
	"github.com/AxtonH/UtilizationDashboard-sub000/reporting"
)

// =============================================================================
// MEMORY SOURCE - for tests and demos
// =============================================================================

// Memory is an in-memory Source. Safe for concurrent use; Fetch returns
// copies so callers can never mutate the seeded state.
type Memory struct {
	mu      sync.RWMutex
	records Records
}

// NewMemory creates a memory source seeded with the given records.
func NewMemory(records Records) *Memory {
	return &Memory{records: records}
}

// Fetch returns all seeded records regardless of window; the engine
// filters by date itself.
func (m *Memory) Fetch(ctx context.Context, window engine.Window) (Records, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Records{
		Resources: append([]engine.Resource(nil), m.records.Resources...),
		TimeOff:   append([]engine.TimeOffRecord(nil), m.records.TimeOff...),
		Holidays:  append([]engine.HolidayWindow(nil), m.records.Holidays...),
		Slots:     append([]engine.SchedulingSlot(nil), m.records.Slots...),
		WorkLogs:  append([]reporting.WorkLog(nil), m.records.WorkLogs...),
	}, nil
}

// Resources returns a copy of the seeded resource set.
func (m *Memory) Resources(ctx context.Context) ([]engine.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.Resource(nil), m.records.Resources...), nil
}

// AddResource appends a resource to the seeded set.
func (m *Memory) AddResource(r engine.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records.Resources = append(m.records.Resources, r)
}

// AddTimeOff appends a time-off record.
func (m *Memory) AddTimeOff(rec engine.TimeOffRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records.TimeOff = append(m.records.TimeOff, rec)
}

// AddHoliday appends a holiday window.
func (m *Memory) AddHoliday(w engine.HolidayWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records.Holidays = append(m.records.Holidays, w)
}

// AddSlot appends a scheduling slot.
func (m *Memory) AddSlot(s engine.SchedulingSlot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records.Slots = append(m.records.Slots, s)
}

// AddWorkLog appends a work log entry.
func (m *Memory) AddWorkLog(l reporting.WorkLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records.WorkLogs = append(m.records.WorkLogs, l)
}
