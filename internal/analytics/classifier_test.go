package analytics

import (
	"testing"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultRules(), DefaultOptions())
}

func TestClassifySalesPartition(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name      string
		activity  types.Activity
		wantSales bool
	}{
		{
			name:      "sales traffic",
			activity:  types.Activity{Traffic: "Sales"},
			wantSales: true,
		},
		{
			name:      "sales traffic mixed case",
			activity:  types.Activity{Traffic: " SALES "},
			wantSales: true,
		},
		{
			name:      "non-sales traffic",
			activity:  types.Activity{Traffic: "Non-Sales"},
			wantSales: false,
		},
		{
			name:      "empty traffic",
			activity:  types.Activity{},
			wantSales: false,
		},
		{
			name:      "po received overrides sales traffic",
			activity:  types.Activity{Traffic: "Sales", Remarks: "PO Received"},
			wantSales: false,
		},
		{
			name:      "explicit non-sales wrap-up overrides sales traffic",
			activity:  types.Activity{Traffic: "Sales", WrapUp: "Customer Inquiry Non-Sales"},
			wantSales: false,
		},
		{
			name:      "short non-sales wrap-up overrides sales traffic",
			activity:  types.Activity{Traffic: "Sales", WrapUp: "Non Sales"},
			wantSales: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.Classify(tt.activity)
			if c.SalesInquiry != tt.wantSales {
				t.Errorf("SalesInquiry = %v, want %v", c.SalesInquiry, tt.wantSales)
			}
			// Partition property: exactly one side holds for every record
			if c.SalesInquiry == c.NonSalesInquiry {
				t.Errorf("partition violated: sales=%v nonSales=%v", c.SalesInquiry, c.NonSalesInquiry)
			}
		})
	}
}

func TestClassifyConvertedSale(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name          string
		activity      types.Activity
		wantConverted bool
	}{
		{
			name:          "converted sales inquiry",
			activity:      types.Activity{Traffic: "Sales", Status: "Converted into Sales"},
			wantConverted: true,
		},
		{
			name:          "status case insensitive",
			activity:      types.Activity{Traffic: "Sales", Status: "CONVERTED INTO SALES"},
			wantConverted: true,
		},
		{
			name:          "sales but not converted",
			activity:      types.Activity{Traffic: "Sales", Status: "Open"},
			wantConverted: false,
		},
		{
			// Scenario A: PO Received forces non-sales, so the converted
			// status cannot count
			name:          "po received blocks conversion",
			activity:      types.Activity{Traffic: "Sales", Remarks: "PO Received", Status: "Converted into Sales"},
			wantConverted: false,
		},
		{
			name:          "non-sales traffic cannot convert",
			activity:      types.Activity{Traffic: "Non-Sales", Status: "Converted into Sales"},
			wantConverted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.Classify(tt.activity)
			if c.ConvertedSale != tt.wantConverted {
				t.Errorf("ConvertedSale = %v, want %v", c.ConvertedSale, tt.wantConverted)
			}
		})
	}
}

func TestSegmentOf(t *testing.T) {
	tests := []struct {
		input string
		want  types.Segment
	}{
		{"New Client", types.SegmentNewClient},
		{"new client", types.SegmentNewClient},
		{"New Non-Buying", types.SegmentNewNonBuying},
		{"Existing Active", types.SegmentExistingActive},
		{"Existing Inactive", types.SegmentExistingInactive},
		{"", types.SegmentNone},
		{"VIP", types.SegmentNone},
	}

	for _, tt := range tests {
		if got := SegmentOf(tt.input); got != tt.want {
			t.Errorf("SegmentOf(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestClassifyHandlingBucket(t *testing.T) {
	e := newTestEngine()

	base := types.Activity{
		Traffic:         "Sales",
		TicketReceived:  "2024-03-01T09:00:00Z",
		TSAHandlingTime: "2024-03-01T10:30:00Z",
	}

	tests := []struct {
		name        string
		mutate      func(*types.Activity)
		wantBucket  types.Bucket
		wantValid   bool
		wantSeconds int64
	}{
		{
			name:        "quotation remark",
			mutate:      func(a *types.Activity) { a.Remarks = "Quotation for Approval" },
			wantBucket:  types.BucketQuotation,
			wantValid:   true,
			wantSeconds: 5400,
		},
		{
			name:        "sold remark",
			mutate:      func(a *types.Activity) { a.Remarks = "Sold" },
			wantBucket:  types.BucketQuotation,
			wantValid:   true,
			wantSeconds: 5400,
		},
		{
			name:        "non-quotation remark",
			mutate:      func(a *types.Activity) { a.Remarks = "Pending Quotation" },
			wantBucket:  types.BucketNonQuotation,
			wantValid:   true,
			wantSeconds: 5400,
		},
		{
			name:        "spf remark",
			mutate:      func(a *types.Activity) { a.Remarks = "endorsed to SPF" },
			wantBucket:  types.BucketSPF,
			wantValid:   true,
			wantSeconds: 5400,
		},
		{
			name:       "unmatched remark keeps duration but no bucket",
			mutate:     func(a *types.Activity) { a.Remarks = "see notes" },
			wantBucket: types.BucketNone,
			wantValid:  true,
		},
		{
			name:       "missing handling timestamp",
			mutate:     func(a *types.Activity) { a.TSAHandlingTime = "" },
			wantBucket: types.BucketNone,
			wantValid:  false,
		},
		{
			name: "out of order timestamps",
			mutate: func(a *types.Activity) {
				a.Remarks = "Sold"
				a.TSAHandlingTime = "2024-03-01T08:00:00Z"
			},
			wantBucket: types.BucketNone,
			wantValid:  false,
		},
		{
			// Scenario B: excluded wrap-up suppresses every bucket
			name: "excluded wrap-up",
			mutate: func(a *types.Activity) {
				a.Remarks = "Sold"
				a.WrapUp = "Job Applicants"
			},
			wantBucket: types.BucketNone,
			wantValid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base
			tt.mutate(&a)
			c := e.Classify(a)
			if c.HandlingBucket != tt.wantBucket {
				t.Errorf("HandlingBucket = %q, want %q", c.HandlingBucket, tt.wantBucket)
			}
			if c.HandlingValid != tt.wantValid {
				t.Errorf("HandlingValid = %v, want %v", c.HandlingValid, tt.wantValid)
			}
			if tt.wantValid && tt.wantSeconds != 0 && c.HandlingSeconds != tt.wantSeconds {
				t.Errorf("HandlingSeconds = %d, want %d", c.HandlingSeconds, tt.wantSeconds)
			}
		})
	}
}

func TestClassifyResponseIndependentOfHandling(t *testing.T) {
	e := newTestEngine()

	a := types.Activity{
		Traffic:            "Sales",
		Remarks:            "Sold",
		TicketReceived:     "2024-03-01T09:00:00Z",
		TSAHandlingTime:    "2024-03-01T10:00:00Z",
		TicketEndorsed:     "2024-03-01T09:05:00Z",
		TSAAcknowledgeDate: "2024-03-01T09:15:00Z",
	}

	c := e.Classify(a)
	if !c.ResponseValid {
		t.Fatal("expected response time to be computed")
	}
	if c.ResponseSeconds != 600 {
		t.Errorf("ResponseSeconds = %d, want 600", c.ResponseSeconds)
	}
	if c.HandlingBucket != types.BucketQuotation {
		t.Errorf("HandlingBucket = %q, want Quotation", c.HandlingBucket)
	}

	// Excluded wrap-up suppresses response time too
	a.WrapUp = "Prank Call"
	c = e.Classify(a)
	if c.ResponseValid {
		t.Error("excluded wrap-up should suppress response time")
	}

	// Missing endorsement timestamp only loses the response side
	a.WrapUp = ""
	a.TicketEndorsed = ""
	c = e.Classify(a)
	if c.ResponseValid {
		t.Error("missing endorsement timestamp should suppress response time")
	}
	if c.HandlingBucket != types.BucketQuotation {
		t.Error("handling bucket should survive a missing response timestamp")
	}
}
