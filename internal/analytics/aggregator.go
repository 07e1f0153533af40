package analytics

import (
	"math"
	"strconv"
	"strings"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// DurationAgg is a running (total seconds, count) pair for one bucket,
// keeping raw samples for report-level percentiles.
type DurationAgg struct {
	TotalSeconds int64
	Count        int
	Samples      []float64
}

func (d *DurationAgg) add(seconds int64) {
	d.TotalSeconds += seconds
	d.Count++
	d.Samples = append(d.Samples, float64(seconds))
}

// GroupAccumulator is the running state for one grouping key. It is created
// lazily on the first qualifying activity, updated once per activity, and
// finalized exactly once at report time.
type GroupAccumulator struct {
	Key string

	SalesCount     int
	NonSalesCount  int
	ConvertedCount int

	TotalAmount float64
	TotalQty    float64

	SegmentCounts    map[types.Segment]int
	SegmentConverted map[types.Segment]float64

	Buckets map[types.Bucket]*DurationAgg
}

// NewGroupAccumulator creates an empty accumulator for a key
func NewGroupAccumulator(key string) *GroupAccumulator {
	acc := &GroupAccumulator{
		Key:              key,
		SegmentCounts:    make(map[types.Segment]int),
		SegmentConverted: make(map[types.Segment]float64),
		Buckets:          make(map[types.Bucket]*DurationAgg),
	}
	for _, b := range types.AllBuckets {
		acc.Buckets[b] = &DurationAgg{}
	}
	return acc
}

// Accumulators is an insertion-ordered map of grouping key to accumulator.
// Insertion order is the tie-break order for the report's stable sort.
type Accumulators struct {
	byKey map[string]*GroupAccumulator
	order []string
}

// NewAccumulators creates an empty accumulator set
func NewAccumulators() *Accumulators {
	return &Accumulators{byKey: make(map[string]*GroupAccumulator)}
}

// Get returns the accumulator for a key, creating it on first use
func (s *Accumulators) Get(key string) *GroupAccumulator {
	if acc, ok := s.byKey[key]; ok {
		return acc
	}
	acc := NewGroupAccumulator(key)
	s.byKey[key] = acc
	s.order = append(s.order, key)
	return acc
}

// Lookup returns the accumulator for a key without creating it
func (s *Accumulators) Lookup(key string) (*GroupAccumulator, bool) {
	acc, ok := s.byKey[key]
	return acc, ok
}

// Keys returns the grouping keys in insertion order
func (s *Accumulators) Keys() []string {
	return s.order
}

// Len returns the number of distinct grouping keys
func (s *Accumulators) Len() int {
	return len(s.byKey)
}

// ParseAmount coerces a monetary or quantity field to a float. Empty,
// malformed and non-finite values coerce to 0 so bad ticket data can never
// poison a running sum.
func ParseAmount(v types.StringOrNumber) float64 {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Aggregate folds activities inside the date range into per-key
// accumulators. Activities whose DateCreated falls outside the range, or
// whose grouping key is empty, are skipped. The input slice is never
// mutated; each call returns fresh state, so concurrent calls are
// independent.
func (e *Engine) Aggregate(activities []types.Activity, dateRange DateRange, keyOf func(types.Activity) string) *Accumulators {
	accs := NewAccumulators()

	for _, a := range activities {
		if !InRange(a.DateCreated, dateRange) {
			continue
		}
		key := keyOf(a)
		if key == "" {
			continue
		}

		acc := accs.Get(key)
		c := e.Classify(a)

		if c.SalesInquiry {
			acc.SalesCount++
		} else {
			acc.NonSalesCount++
		}

		if c.ConvertedSale {
			acc.ConvertedCount++
			amount := ParseAmount(a.SOAmount)
			acc.TotalAmount += amount
			acc.TotalQty += ParseAmount(a.QtySold)
			if c.Segment != types.SegmentNone {
				acc.SegmentConverted[c.Segment] += amount
			}
		}

		if c.Segment != types.SegmentNone {
			if !e.opts.SegmentCountSalesOnly || c.SalesInquiry {
				acc.SegmentCounts[c.Segment]++
			}
		}

		if c.ResponseValid {
			acc.Buckets[types.BucketResponse].add(c.ResponseSeconds)
		}
		if c.HandlingValid && c.HandlingBucket != types.BucketNone {
			acc.Buckets[c.HandlingBucket].add(c.HandlingSeconds)
		}
	}

	return accs
}

// Finalize derives the ratios and averages for one accumulator. All
// divisions guard against zero denominators: the result is always finite,
// never NaN and never negative.
func (e *Engine) Finalize(acc *GroupAccumulator) types.ReportRow {
	row := types.ReportRow{
		Key:              acc.Key,
		SalesCount:       acc.SalesCount,
		NonSalesCount:    acc.NonSalesCount,
		ConvertedCount:   acc.ConvertedCount,
		TotalAmount:      acc.TotalAmount,
		TotalQty:         acc.TotalQty,
		SegmentCounts:    make(map[types.Segment]int, len(types.AllSegments)),
		SegmentConverted: make(map[types.Segment]float64, len(types.AllSegments)),
		Buckets:          make(map[types.Bucket]types.BucketStats, len(types.AllBuckets)),
	}

	for _, seg := range types.AllSegments {
		row.SegmentCounts[seg] = acc.SegmentCounts[seg]
		row.SegmentConverted[seg] = acc.SegmentConverted[seg]
	}

	if acc.ConvertedCount > 0 {
		if acc.SalesCount > 0 {
			row.ConversionRate = float64(acc.ConvertedCount) / float64(acc.SalesCount) * 100
		}
		row.AvgUnitValue = acc.TotalQty / float64(acc.ConvertedCount)
		row.AvgTransactionValue = acc.TotalAmount / float64(acc.ConvertedCount)
	}

	for _, b := range types.AllBuckets {
		agg := acc.Buckets[b]
		stats := types.BucketStats{
			TotalSeconds: agg.TotalSeconds,
			Count:        agg.Count,
			AvgDisplay:   "-",
		}
		if agg.Count > 0 {
			avg := agg.TotalSeconds / int64(agg.Count)
			stats.AvgSeconds = &avg
			stats.AvgDisplay = FormatDuration(avg)
		}
		row.Buckets[b] = stats
	}

	return row
}
