/*
Package reporting aggregates engine outputs into utilization reports.

PURPOSE:
  The engine produces three independent hour values per resource: available
  hours (capacity), planned hours (apportioned allocations), and logged
  hours (work logs). This package divides them into the percentages the
  dashboard displays, per resource and company-wide.

DIVISION POLICY:
  The engine never divides; this layer owns every division and guards each
  one. A resource with zero available hours reports zero percentages,
  never NaN or Inf.

SEE ALSO:
  - engine/capacity.go: Available hours
  - engine/allocation.go: Planned hours
*/
package reporting

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/AxtonH/UtilizationDashboard-sub000/engine"
)

var hundred = decimal.NewFromInt(100)

// WorkLog is a single day of actually-logged hours, supplied by the
// data-access collaborator like every other record.
type WorkLog struct {
	ResourceID int
	Date       engine.Date
	Hours      decimal.Decimal
}

// Row is the utilization line for one resource (or the company total).
type Row struct {
	ResourceID int
	Name       string

	AvailableHours decimal.Decimal
	PlannedHours   decimal.Decimal
	LoggedHours    decimal.Decimal

	// Percentages of available hours. Zero when nothing is available.
	PlannedPct decimal.Decimal
	LoggedPct  decimal.Decimal
}

// Report is the full utilization view over a reporting window.
type Report struct {
	Window engine.Window
	Rows   []Row
	Total  Row
}

// Build combines availability summaries, apportioned planned hours, and
// work logs into a utilization report. Rows are sorted by resource name for
// stable output; missing map entries read as zero hours.
func Build(
	resources []engine.Resource,
	window engine.Window,
	summaries map[int]engine.AvailabilitySummary,
	planned map[int]decimal.Decimal,
	logs []WorkLog,
) Report {
	logged := sumLogs(logs, window)

	rows := make([]Row, 0, len(resources))
	total := Row{Name: "All resources"}

	for _, r := range resources {
		row := Row{
			ResourceID:     r.ID,
			Name:           r.Name,
			AvailableHours: summaries[r.ID].AvailableHours(),
			PlannedHours:   planned[r.ID],
			LoggedHours:    logged[r.ID],
		}
		row.PlannedPct = percentage(row.PlannedHours, row.AvailableHours)
		row.LoggedPct = percentage(row.LoggedHours, row.AvailableHours)
		rows = append(rows, row)

		total.AvailableHours = total.AvailableHours.Add(row.AvailableHours)
		total.PlannedHours = total.PlannedHours.Add(row.PlannedHours)
		total.LoggedHours = total.LoggedHours.Add(row.LoggedHours)
	}

	total.PlannedPct = percentage(total.PlannedHours, total.AvailableHours)
	total.LoggedPct = percentage(total.LoggedHours, total.AvailableHours)

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ResourceID < rows[j].ResourceID
	})

	return Report{Window: window, Rows: rows, Total: total}
}

// sumLogs totals logged hours per resource, restricted to the window.
// Logs for resources outside the requested set are simply never read.
func sumLogs(logs []WorkLog, window engine.Window) map[int]decimal.Decimal {
	totals := make(map[int]decimal.Decimal)
	for _, l := range logs {
		if !window.Contains(l.Date) || !l.Hours.IsPositive() {
			continue
		}
		totals[l.ResourceID] = totals[l.ResourceID].Add(l.Hours)
	}
	return totals
}

// percentage returns hours/available x 100, or zero when nothing is available.
func percentage(hours, available decimal.Decimal) decimal.Decimal {
	if !available.IsPositive() {
		return decimal.Zero
	}
	return hours.Div(available).Mul(hundred)
}
