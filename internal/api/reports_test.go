package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rcaballes/salesdesk/backend/internal/alerts"
	"github.com/rcaballes/salesdesk/backend/internal/analytics"
	"github.com/rcaballes/salesdesk/backend/internal/cache"
	"github.com/rcaballes/salesdesk/backend/internal/types"
)

func newTestReportsHandler() (*ReportsHandler, *cache.ActivityCache) {
	logger := zerolog.New(&bytes.Buffer{})
	engine := analytics.NewEngine(analytics.DefaultRules(), analytics.DefaultOptions())
	activities := cache.NewActivityCache()
	roster := cache.NewRosterCache()
	th := alerts.Thresholds{LowConversionPercent: 10, SlowResponseSeconds: 3600}
	return NewReportsHandler(engine, activities, roster, th, logger), activities
}

func reportsRouter(h *ReportsHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/reports/{grouping}", h.GetReport)
	return r
}

func seedActivity(activities *cache.ActivityCache, id, agent string) {
	activities.Upsert(types.Activity{
		ID:          id,
		AgentRef:    agent,
		Traffic:     "Sales",
		WrapUp:      "Customer Inquiry Sales",
		Status:      "Converted into Sales",
		SOAmount:    "750",
		DateCreated: time.Now().Format("2006-01-02T15:04:05"),
	})
}

func TestGetReportJSON(t *testing.T) {
	h, activities := newTestReportsHandler()
	seedActivity(activities, "t1", "a1")

	req := httptest.NewRequest(http.MethodGet, "/api/reports/agents", nil)
	w := httptest.NewRecorder()
	reportsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var report types.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Grouping != types.GroupByAgent {
		t.Errorf("expected agents grouping, got %s", report.Grouping)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report.Rows))
	}
	if report.Rows[0].TotalAmount != 750 {
		t.Errorf("expected amount 750, got %v", report.Rows[0].TotalAmount)
	}
}

func TestGetReportInvalidGrouping(t *testing.T) {
	h, _ := newTestReportsHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/reports/teams", nil)
	w := httptest.NewRecorder()
	reportsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetReportInvalidDate(t *testing.T) {
	h, _ := newTestReportsHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/reports/agents?from=yesterday", nil)
	w := httptest.NewRecorder()
	reportsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetReportDateFilter(t *testing.T) {
	h, activities := newTestReportsHandler()
	seedActivity(activities, "t1", "a1")

	// Range far in the past excludes today's activity
	req := httptest.NewRequest(http.MethodGet, "/api/reports/agents?from=2020-01-01&to=2020-01-31", nil)
	w := httptest.NewRecorder()
	reportsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var report types.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if len(report.Rows) != 0 {
		t.Errorf("expected 0 rows outside range, got %d", len(report.Rows))
	}
}

func TestGetReportCSV(t *testing.T) {
	h, activities := newTestReportsHandler()
	seedActivity(activities, "t1", "a1")

	req := httptest.NewRequest(http.MethodGet, "/api/reports/agents?format=csv", nil)
	w := httptest.NewRecorder()
	reportsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv content type, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "agents-report-") {
		t.Errorf("expected attachment filename, got %s", cd)
	}

	body := w.Body.String()
	if !strings.HasPrefix(body, `"Rank"`) {
		t.Errorf("expected quoted header row, got %q", body[:40])
	}
	if !strings.Contains(body, `"a1"`) {
		t.Error("expected agent row in CSV output")
	}
}
