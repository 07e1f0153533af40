package analytics

import (
	"testing"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

func buildTestAccumulators(e *Engine) *Accumulators {
	activities := []types.Activity{
		{AgentRef: "a1", Traffic: "Sales", DateCreated: "2024-03-01T10:00:00Z", Status: "Converted into Sales", SOAmount: "500", QtySold: "2", CustomerStatus: "New Client"},
		{AgentRef: "a2", Traffic: "Sales", DateCreated: "2024-03-01T10:00:00Z", Status: "Converted into Sales", SOAmount: "2000", QtySold: "5", CustomerStatus: "Existing Active"},
		{AgentRef: "a2", Traffic: "Sales", DateCreated: "2024-03-01T11:00:00Z"},
		{AgentRef: "a3", Traffic: "Non-Sales", DateCreated: "2024-03-01T12:00:00Z"},
	}
	return e.Aggregate(activities, DateRange{}, agentKey)
}

func TestBuildReportRanking(t *testing.T) {
	e := newTestEngine()
	report := e.BuildReport(buildTestAccumulators(e), types.GroupByAgent, DateRange{}, nil)

	if len(report.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(report.Rows))
	}

	// Descending by total amount: a2 (2000), a1 (500), a3 (0)
	wantOrder := []string{"a2", "a1", "a3"}
	for i, want := range wantOrder {
		if report.Rows[i].Key != want {
			t.Errorf("row %d key = %q, want %q", i, report.Rows[i].Key, want)
		}
		if report.Rows[i].Rank != i+1 {
			t.Errorf("row %d rank = %d, want %d", i, report.Rows[i].Rank, i+1)
		}
	}
}

func TestBuildReportTiesKeepInsertionOrder(t *testing.T) {
	e := newTestEngine()

	activities := []types.Activity{
		{AgentRef: "first", Traffic: "Sales", DateCreated: "2024-03-01T10:00:00Z"},
		{AgentRef: "second", Traffic: "Sales", DateCreated: "2024-03-01T11:00:00Z"},
		{AgentRef: "third", Traffic: "Sales", DateCreated: "2024-03-01T12:00:00Z"},
	}
	accs := e.Aggregate(activities, DateRange{}, agentKey)
	report := e.BuildReport(accs, types.GroupByAgent, DateRange{}, nil)

	wantOrder := []string{"first", "second", "third"}
	for i, want := range wantOrder {
		if report.Rows[i].Key != want {
			t.Errorf("tied row %d key = %q, want %q", i, report.Rows[i].Key, want)
		}
	}
}

func TestBuildReportTotalsRecomputed(t *testing.T) {
	e := newTestEngine()
	report := e.BuildReport(buildTestAccumulators(e), types.GroupByAgent, DateRange{}, nil)

	totals := report.Totals
	if totals.SalesCount != 3 {
		t.Errorf("totals SalesCount = %d, want 3", totals.SalesCount)
	}
	if totals.NonSalesCount != 1 {
		t.Errorf("totals NonSalesCount = %d, want 1", totals.NonSalesCount)
	}
	if totals.ConvertedCount != 2 {
		t.Errorf("totals ConvertedCount = %d, want 2", totals.ConvertedCount)
	}
	if totals.TotalAmount != 2500 {
		t.Errorf("totals TotalAmount = %v, want 2500", totals.TotalAmount)
	}

	// Recomputed from footer-level sums: 2/3*100, not the mean of row rates
	wantRate := float64(2) / float64(3) * 100
	if totals.ConversionRate != wantRate {
		t.Errorf("totals ConversionRate = %v, want %v", totals.ConversionRate, wantRate)
	}
	if totals.AvgTransactionValue != 1250 {
		t.Errorf("totals AvgTransactionValue = %v, want 1250", totals.AvgTransactionValue)
	}
	if totals.DisplayName != "Total" {
		t.Errorf("totals DisplayName = %q, want Total", totals.DisplayName)
	}
	if totals.SegmentCounts[types.SegmentNewClient] != 1 {
		t.Errorf("totals NewClient count = %d, want 1", totals.SegmentCounts[types.SegmentNewClient])
	}
}

// Scenario D: an empty activity set still produces a report with a zeroed
// footer row.
func TestBuildReportEmpty(t *testing.T) {
	e := newTestEngine()
	accs := e.Aggregate(nil, DateRange{}, agentKey)
	report := e.BuildReport(accs, types.GroupByAgent, DateRange{}, nil)

	if len(report.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(report.Rows))
	}
	if report.Totals.SalesCount != 0 || report.Totals.TotalAmount != 0 {
		t.Error("empty report footer should be all zeros")
	}
	if report.Totals.ConversionRate != 0 {
		t.Errorf("empty report ConversionRate = %v, want 0", report.Totals.ConversionRate)
	}
	if len(report.Percentiles) != 0 {
		t.Errorf("empty report should have no percentiles, got %d", len(report.Percentiles))
	}
}

func TestBuildReportNameResolution(t *testing.T) {
	e := newTestEngine()
	names := map[string]string{"a1": "Ana Lim", "a2": "Ben Cruz"}
	resolve := func(key string) string { return names[key] }

	report := e.BuildReport(buildTestAccumulators(e), types.GroupByAgent, DateRange{}, resolve)

	for _, row := range report.Rows {
		if want := names[row.Key]; want != "" && row.DisplayName != want {
			t.Errorf("row %s DisplayName = %q, want %q", row.Key, row.DisplayName, want)
		}
	}
}

func TestBuildReportPercentiles(t *testing.T) {
	e := newTestEngine()

	activities := []types.Activity{
		{AgentRef: "a1", Traffic: "Sales", DateCreated: "2024-03-01T08:00:00Z", Remarks: "Sold",
			TicketReceived: "2024-03-01T08:00:00Z", TSAHandlingTime: "2024-03-01T08:10:00Z"},
		{AgentRef: "a2", Traffic: "Sales", DateCreated: "2024-03-01T09:00:00Z", Remarks: "Sold",
			TicketReceived: "2024-03-01T09:00:00Z", TSAHandlingTime: "2024-03-01T09:30:00Z"},
	}
	accs := e.Aggregate(activities, DateRange{}, agentKey)
	report := e.BuildReport(accs, types.GroupByAgent, DateRange{}, nil)

	p, ok := report.Percentiles[types.BucketQuotation]
	if !ok {
		t.Fatal("expected quotation percentiles")
	}
	if p.P50Seconds != 1200 { // median of 600 and 1800
		t.Errorf("P50Seconds = %v, want 1200", p.P50Seconds)
	}
	if p.P90Seconds < p.P50Seconds {
		t.Errorf("P90Seconds = %v should not be below the median", p.P90Seconds)
	}
}
