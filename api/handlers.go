/*
handlers.go - HTTP handlers for the utilization reporting API

PURPOSE:
  Exposes the engine's outputs over REST. Handlers parse the reporting
  window, fetch records from the source, run the pure engine computation,
  and serialize the result.

ENDPOINTS:
  GET /api/resources                         List resources
  GET /api/reports/capacity?start=&end=      Availability summaries
  GET /api/reports/utilization?start=&end=   Utilization rows + totals

REQUEST FLOW:
  1. Parse and validate start/end dates (YYYY-MM-DD, start <= end)
  2. Fetch the record bundle for the window
  3. Run capacity / apportionment / reporting
  4. Serialize DTOs

ERROR HANDLING:
  - 400: missing or malformed window parameters
  - 500: record source failure
  Dropped records inside the engine are logged, never surfaced.

SEE ALSO:
  - dto.go: Response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/AxtonH/UtilizationDashboard-sub000/engine"
	"github.com/AxtonH/UtilizationDashboard-sub000/reporting"
	"github.com/AxtonH/UtilizationDashboard-sub000/source"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Source source.Source
	Log    logrus.FieldLogger
}

// NewHandler creates a handler backed by the given record source.
func NewHandler(src source.Source, log logrus.FieldLogger) *Handler {
	return &Handler{Source: src, Log: log}
}

// =============================================================================
// RESOURCE HANDLERS
// =============================================================================

// ListResources returns the known resource set.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.Source.Resources(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch resources", err)
		return
	}

	dtos := make([]ResourceDTO, len(resources))
	for i, res := range resources {
		dtos[i] = ResourceDTO{
			ID:            res.ID,
			Name:          res.Name,
			CalendarLabel: res.CalendarLabel,
			OrgKey:        res.OrgKey,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetCapacityReport returns availability summaries for the window.
func (h *Handler) GetCapacityReport(w http.ResponseWriter, r *http.Request) {
	window, ok := h.parseWindow(w, r)
	if !ok {
		return
	}

	records, err := h.Source.Fetch(r.Context(), window)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch records", err)
		return
	}

	builder := &engine.AbsenceBuilder{
		TimeOff:  records.TimeOff,
		Holidays: records.Holidays,
		Log:      h.Log,
	}
	summaries := engine.CapacityCalculator{Absences: builder}.
		Calculate(records.Resources, window.Start, window.End)

	report := CapacityReportDTO{
		Start: window.Start.String(),
		End:   window.End.String(),
	}
	for _, res := range records.Resources {
		report.Resources = append(report.Resources, toAvailabilityDTO(res, summaries[res.ID]))
	}
	writeJSON(w, http.StatusOK, report)
}

// GetUtilizationReport returns planned/logged utilization for the window.
func (h *Handler) GetUtilizationReport(w http.ResponseWriter, r *http.Request) {
	window, ok := h.parseWindow(w, r)
	if !ok {
		return
	}

	records, err := h.Source.Fetch(r.Context(), window)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch records", err)
		return
	}

	builder := &engine.AbsenceBuilder{
		TimeOff:  records.TimeOff,
		Holidays: records.Holidays,
		Log:      h.Log,
	}
	summaries := engine.CapacityCalculator{Absences: builder}.
		Calculate(records.Resources, window.Start, window.End)
	planned := engine.AllocationCalculator{Absences: builder, Log: h.Log}.
		Apportion(records.Slots, records.Resources, window.Start, window.End)

	result := reporting.Build(records.Resources, window, summaries, planned, records.WorkLogs)

	report := UtilizationReportDTO{
		Start: window.Start.String(),
		End:   window.End.String(),
		Total: toUtilizationRowDTO(result.Total),
	}
	for _, row := range result.Rows {
		report.Resources = append(report.Resources, toUtilizationRowDTO(row))
	}
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// HELPERS
// =============================================================================

// parseWindow reads start/end query parameters. On failure it writes a 400
// response and returns ok=false.
func (h *Handler) parseWindow(w http.ResponseWriter, r *http.Request) (engine.Window, bool) {
	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")
	if startParam == "" || endParam == "" {
		h.writeError(w, http.StatusBadRequest, "start and end query parameters are required (YYYY-MM-DD)", nil)
		return engine.Window{}, false
	}

	start, err := engine.ParseDate(startParam)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid start date %q", startParam), err)
		return engine.Window{}, false
	}
	end, err := engine.ParseDate(endParam)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid end date %q", endParam), err)
		return engine.Window{}, false
	}
	if end.Before(start) {
		h.writeError(w, http.StatusBadRequest, "end date is before start date", nil)
		return engine.Window{}, false
	}
	return engine.Window{Start: start, End: end}, true
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil && h.Log != nil {
		h.Log.WithError(err).Warn(msg)
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
