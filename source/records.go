/*
Package source defines the data contract between the engine and its
data-access collaborator.

PURPOSE:
  The engine is a pure batch computation: every input is an already-fetched
  in-memory value. This package names that seam. A Source hands over one
  Records bundle per reporting window; how the records were obtained
  (database, external planning system, fixtures) is the implementation's
  business.

IMPLEMENTATIONS:
  - source.Memory: in-memory, for tests and demo seeding
  - store/sqlite.Store: SQLite-backed record store

SEE ALSO:
  - engine/types.go: The record types themselves
*/
package source

import (
	"context"

	"github.com/AxtonH/UtilizationDashboard-sub000/engine"
	"github.com/AxtonH/UtilizationDashboard-sub000/reporting"
)

// Records bundles every input the engine and reporting layer consume for
// one calculation: the resource set, both absence sources, scheduling
// slots, and logged work.
type Records struct {
	Resources []engine.Resource
	TimeOff   []engine.TimeOffRecord
	Holidays  []engine.HolidayWindow
	Slots     []engine.SchedulingSlot
	WorkLogs  []reporting.WorkLog
}

// Source supplies records relevant to a reporting window. Implementations
// may over-fetch (the engine filters); they must include slots and holiday
// windows that merely OVERLAP the window, since both may extend outside it.
// The resource set is window-independent and exposed on its own.
type Source interface {
	Fetch(ctx context.Context, window engine.Window) (Records, error)
	Resources(ctx context.Context) ([]engine.Resource, error)
}
