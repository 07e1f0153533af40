package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rcaballes/salesdesk/backend/internal/alerts"
	"github.com/rcaballes/salesdesk/backend/internal/analytics"
	"github.com/rcaballes/salesdesk/backend/internal/cache"
	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// ReportsHandler provides REST endpoints for on-demand report computation
type ReportsHandler struct {
	engine     *analytics.Engine
	activities *cache.ActivityCache
	roster     *cache.RosterCache
	thresholds alerts.Thresholds
	logger     zerolog.Logger
}

// NewReportsHandler creates a new ReportsHandler
func NewReportsHandler(engine *analytics.Engine, activities *cache.ActivityCache, roster *cache.RosterCache, thresholds alerts.Thresholds, logger zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		engine:     engine,
		activities: activities,
		roster:     roster,
		thresholds: thresholds,
		logger:     logger.With().Str("component", "reports_handler").Logger(),
	}
}

// GetReport computes a report for one grouping over an optional date range
// GET /api/reports/{grouping}?from=YYYY-MM-DD&to=YYYY-MM-DD&format=json|csv
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	grouping := types.Grouping(chi.URLParam(r, "grouping"))
	if !grouping.Valid() {
		http.Error(w, `{"error":"grouping must be agents, managers or heads"}`, http.StatusBadRequest)
		return
	}

	dateRange, err := analytics.ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
		return
	}

	activities := h.activities.Snapshot()
	accs := h.engine.Aggregate(activities, dateRange, grouping.KeyOf)
	report := h.engine.BuildReport(accs, grouping, dateRange, h.roster.DisplayName)
	alerts.CheckRowAlerts(report.Rows, h.thresholds)

	if r.URL.Query().Get("format") == "csv" {
		h.writeCSV(w, report, grouping)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *ReportsHandler) writeCSV(w http.ResponseWriter, report types.Report, grouping types.Grouping) {
	filename := fmt.Sprintf("%s-report-%s.csv", grouping, time.Now().Format("2006-01-02"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	csv := analytics.RenderCSV(analytics.ReportHeaders, analytics.ReportRecords(report))
	if _, err := w.Write([]byte(csv)); err != nil {
		h.logger.Error().Err(err).Msg("failed to write CSV response")
	}
}
