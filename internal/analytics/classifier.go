package analytics

import (
	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// Options holds behavior toggles for rule variants the dashboard components
// historically disagreed on.
type Options struct {
	// SegmentCountSalesOnly gates customer-segment counting on the ticket
	// being a sales inquiry. Some report variants counted segments for
	// every ticket; business intent is unconfirmed, so both behaviors are
	// supported.
	SegmentCountSalesOnly bool
}

// DefaultOptions returns the canonical toggles
func DefaultOptions() Options {
	return Options{SegmentCountSalesOnly: true}
}

// Engine evaluates the classification and aggregation rules. It is pure:
// no I/O, no shared state, safe for concurrent use.
type Engine struct {
	rules Rules
	opts  Options
}

// NewEngine creates an engine with the given rule sets and toggles
func NewEngine(rules Rules, opts Options) *Engine {
	return &Engine{rules: rules, opts: opts}
}

// Rules returns the engine's rule sets
func (e *Engine) Rules() Rules {
	return e.rules
}

// Classification is the full rule evaluation for one activity. Exactly one
// of SalesInquiry/NonSalesInquiry is true for every activity.
type Classification struct {
	SalesInquiry    bool
	NonSalesInquiry bool
	ConvertedSale   bool

	// SalesWrapUp reports whether the wrap-up is a sales-labeled variant;
	// informational, not part of the sales/non-sales partition
	SalesWrapUp bool

	// ExcludedWrapUp removes the ticket from all duration buckets
	ExcludedWrapUp bool

	Segment types.Segment

	// HandlingBucket is one of Quotation/NonQuotation/SPF/None.
	// HandlingSeconds is valid only when HandlingValid is true; the bucket
	// can be None with a valid duration when no remark rule matched.
	HandlingBucket  types.Bucket
	HandlingSeconds int64
	HandlingValid   bool

	// Response time is computed independently of the handling bucket;
	// a ticket can contribute to Response and one named bucket at once
	ResponseSeconds int64
	ResponseValid   bool
}

// Classify evaluates every classification rule for one activity.
// It never fails: missing or malformed fields degrade to "uncounted".
func (e *Engine) Classify(a types.Activity) Classification {
	var c Classification

	// Sales/non-sales partition. A "PO Received" remark and an explicit
	// non-sales wrap-up both override the raw traffic value, which keeps
	// the partition exact: every ticket lands on exactly one side.
	poReceived := e.rules.IsPOReceived(a.Remarks)
	c.NonSalesInquiry = e.rules.IsNonSalesWrapUp(a.WrapUp) ||
		Normalize(a.Traffic) != "sales" ||
		poReceived
	c.SalesInquiry = !c.NonSalesInquiry

	c.ConvertedSale = c.SalesInquiry && Normalize(a.Status) == "converted into sales"

	c.SalesWrapUp = e.rules.IsSalesWrapUp(a.WrapUp)
	c.ExcludedWrapUp = e.rules.IsExcludedWrapUp(a.WrapUp)
	c.Segment = SegmentOf(a.CustomerStatus)

	c.HandlingBucket = types.BucketNone
	if c.ExcludedWrapUp {
		return c
	}

	if sec, ok := ElapsedSeconds(a.TicketEndorsed, a.TSAAcknowledgeDate); ok {
		c.ResponseSeconds = sec
		c.ResponseValid = true
	}

	sec, ok := ElapsedSeconds(a.TicketReceived, a.TSAHandlingTime)
	if !ok {
		return c
	}
	c.HandlingSeconds = sec
	c.HandlingValid = true

	switch {
	case e.rules.IsNonQuotationRemark(a.Remarks):
		c.HandlingBucket = types.BucketNonQuotation
	case e.rules.IsQuotationRemark(a.Remarks):
		c.HandlingBucket = types.BucketQuotation
	case e.rules.IsSPFRemark(a.Remarks):
		c.HandlingBucket = types.BucketSPF
	}

	return c
}

// SegmentOf maps a customer-status label to its segment bucket.
// Unrecognized labels map to SegmentNone.
func SegmentOf(customerStatus string) types.Segment {
	switch Normalize(customerStatus) {
	case "new client":
		return types.SegmentNewClient
	case "new non-buying":
		return types.SegmentNewNonBuying
	case "existing active":
		return types.SegmentExistingActive
	case "existing inactive":
		return types.SegmentExistingInactive
	default:
		return types.SegmentNone
	}
}
