package types

import "time"

// Segment is the customer-status bucket a ticket belongs to
type Segment string

const (
	SegmentNewClient        Segment = "NewClient"
	SegmentNewNonBuying     Segment = "NewNonBuying"
	SegmentExistingActive   Segment = "ExistingActive"
	SegmentExistingInactive Segment = "ExistingInactive"
	SegmentNone             Segment = "None"
)

// AllSegments lists the four named customer segments (SegmentNone excluded)
var AllSegments = []Segment{
	SegmentNewClient,
	SegmentNewNonBuying,
	SegmentExistingActive,
	SegmentExistingInactive,
}

// Bucket is a handling-time category. Quotation, NonQuotation and SPF are
// mutually exclusive per ticket; Response is computed independently and a
// ticket may contribute to Response and one of the other three at once.
type Bucket string

const (
	BucketResponse     Bucket = "Response"
	BucketQuotation    Bucket = "Quotation"
	BucketNonQuotation Bucket = "NonQuotation"
	BucketSPF          Bucket = "SPF"
	BucketNone         Bucket = "None"
)

// AllBuckets lists every named duration bucket in report column order
var AllBuckets = []Bucket{BucketResponse, BucketQuotation, BucketNonQuotation, BucketSPF}

// BucketStats is a finalized duration bucket. AvgSeconds is nil when the
// bucket collected no samples — "no data" is distinct from a zero duration.
type BucketStats struct {
	TotalSeconds int64  `json:"totalSeconds"`
	Count        int    `json:"count"`
	AvgSeconds   *int64 `json:"avgSeconds"`
	AvgDisplay   string `json:"avgDisplay"` // HH:MM:SS, or "-" when no samples
}

// AlertSeverity grades a report row alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// RowAlert flags an operational concern on a report row
type RowAlert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// ReportRow is one finalized report line for a grouping key
type ReportRow struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName,omitempty"`
	Rank        int    `json:"rank,omitempty"`

	SalesCount     int `json:"salesCount"`
	NonSalesCount  int `json:"nonSalesCount"`
	ConvertedCount int `json:"convertedCount"`

	TotalAmount float64 `json:"totalAmount"`
	TotalQty    float64 `json:"totalQty"`

	ConversionRate      float64 `json:"conversionRate"` // percent
	AvgUnitValue        float64 `json:"avgUnitValue"`
	AvgTransactionValue float64 `json:"avgTransactionValue"`

	SegmentCounts    map[Segment]int     `json:"segmentCounts"`
	SegmentConverted map[Segment]float64 `json:"segmentConverted"` // converted amount per segment

	Buckets map[Bucket]BucketStats `json:"buckets"`

	Alerts []RowAlert `json:"alerts,omitempty"`
}

// PercentileStats summarizes pooled duration samples across a whole report
type PercentileStats struct {
	P50Seconds float64 `json:"p50Seconds"`
	P90Seconds float64 `json:"p90Seconds"`
}

// Report is a finalized, ranked report with a synthesized totals footer
type Report struct {
	Grouping    Grouping                   `json:"grouping"`
	From        string                     `json:"from,omitempty"`
	To          string                     `json:"to,omitempty"`
	GeneratedAt time.Time                  `json:"generatedAt"`
	Rows        []ReportRow                `json:"rows"`
	Totals      ReportRow                  `json:"totals"`
	Percentiles map[Bucket]PercentileStats `json:"percentiles,omitempty"`
}

// Snapshot is the live dashboard payload broadcast over WebSocket
type Snapshot struct {
	Type      string    `json:"type"` // "report_snapshot"
	Grouping  Grouping  `json:"grouping"`
	Timestamp time.Time `json:"timestamp"`
	Report    Report    `json:"report"`
}

// DailyRollup is one grouping key's persisted aggregate for a calendar day
type DailyRollup struct {
	GroupKey       string  `json:"groupKey" dynamodbav:"GroupKey" bson:"group_key"` // partition key
	Date           string  `json:"date" dynamodbav:"Date" bson:"date"`              // YYYY-MM-DD sort key
	Grouping       string  `json:"grouping" dynamodbav:"Grouping" bson:"grouping"`
	SalesCount     int     `json:"salesCount" dynamodbav:"SalesCount" bson:"sales_count"`
	NonSalesCount  int     `json:"nonSalesCount" dynamodbav:"NonSalesCount" bson:"non_sales_count"`
	ConvertedCount int     `json:"convertedCount" dynamodbav:"ConvertedCount" bson:"converted_count"`
	TotalAmount    float64 `json:"totalAmount" dynamodbav:"TotalAmount" bson:"total_amount"`
	TotalQty       float64 `json:"totalQty" dynamodbav:"TotalQty" bson:"total_qty"`
	ConversionRate float64 `json:"conversionRate" dynamodbav:"ConversionRate" bson:"conversion_rate"`

	AvgResponseSeconds     float64 `json:"avgResponseSeconds" dynamodbav:"AvgResponseSeconds" bson:"avg_response_seconds"`
	AvgQuotationSeconds    float64 `json:"avgQuotationSeconds" dynamodbav:"AvgQuotationSeconds" bson:"avg_quotation_seconds"`
	AvgNonQuotationSeconds float64 `json:"avgNonQuotationSeconds" dynamodbav:"AvgNonQuotationSeconds" bson:"avg_non_quotation_seconds"`
	AvgSPFSeconds          float64 `json:"avgSpfSeconds" dynamodbav:"AvgSPFSeconds" bson:"avg_spf_seconds"`
}
