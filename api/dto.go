/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  JSON shapes for the reporting API. These decouple the engine's decimal
  internals from the wire: hours and percentages serialize as float64,
  dates as "2006-01-02" strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients

SEE ALSO:
  - handlers.go: Builds these from engine/reporting outputs
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/AxtonH/UtilizationDashboard-sub000/engine"
	"github.com/AxtonH/UtilizationDashboard-sub000/reporting"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ResourceDTO represents a resource in API responses.
type ResourceDTO struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	CalendarLabel string `json:"calendar_label,omitempty"`
	OrgKey        int    `json:"org_key,omitempty"`
}

// HolidayDetailDTO is one holiday window's contribution for a resource.
type HolidayDetailDTO struct {
	Label string  `json:"label"`
	Start string  `json:"start"`
	End   string  `json:"end"`
	Hours float64 `json:"hours"`
}

// AvailabilityDTO is the capacity breakdown for one resource.
type AvailabilityDTO struct {
	ResourceID     int                `json:"resource_id"`
	Name           string             `json:"name"`
	BaseHours      float64            `json:"base_hours"`
	TimeOffHours   float64            `json:"time_off_hours"`
	HolidayHours   float64            `json:"holiday_hours"`
	AvailableHours float64            `json:"available_hours"`
	Holidays       []HolidayDetailDTO `json:"holidays,omitempty"`
}

// CapacityReportDTO is the capacity report over a window.
type CapacityReportDTO struct {
	Start     string            `json:"start"`
	End       string            `json:"end"`
	Resources []AvailabilityDTO `json:"resources"`
}

// UtilizationRowDTO is one utilization line.
type UtilizationRowDTO struct {
	ResourceID     int     `json:"resource_id,omitempty"`
	Name           string  `json:"name"`
	AvailableHours float64 `json:"available_hours"`
	PlannedHours   float64 `json:"planned_hours"`
	LoggedHours    float64 `json:"logged_hours"`
	PlannedPct     float64 `json:"planned_pct"`
	LoggedPct      float64 `json:"logged_pct"`
}

// UtilizationReportDTO is the utilization report over a window.
type UtilizationReportDTO struct {
	Start     string              `json:"start"`
	End       string              `json:"end"`
	Resources []UtilizationRowDTO `json:"resources"`
	Total     UtilizationRowDTO   `json:"total"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func toAvailabilityDTO(r engine.Resource, summary engine.AvailabilitySummary) AvailabilityDTO {
	dto := AvailabilityDTO{
		ResourceID:     r.ID,
		Name:           r.Name,
		BaseHours:      toFloat(summary.BaseHours),
		TimeOffHours:   toFloat(summary.TimeOffHours),
		HolidayHours:   toFloat(summary.HolidayHours),
		AvailableHours: toFloat(summary.AvailableHours()),
	}
	for _, h := range summary.Holidays {
		dto.Holidays = append(dto.Holidays, HolidayDetailDTO{
			Label: h.Label,
			Start: h.Start.String(),
			End:   h.End.String(),
			Hours: toFloat(h.Hours),
		})
	}
	return dto
}

func toUtilizationRowDTO(row reporting.Row) UtilizationRowDTO {
	return UtilizationRowDTO{
		ResourceID:     row.ResourceID,
		Name:           row.Name,
		AvailableHours: toFloat(row.AvailableHours),
		PlannedHours:   toFloat(row.PlannedHours),
		LoggedHours:    toFloat(row.LoggedHours),
		PlannedPct:     toFloat(row.PlannedPct),
		LoggedPct:      toFloat(row.LoggedPct),
	}
}
