package analytics

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// NameResolver maps a grouping key to a display name. A nil resolver
// leaves display names empty.
type NameResolver func(key string) string

// BuildReport finalizes the accumulators into a ranked report. Rows are
// sorted descending by total converted amount; ties keep insertion order
// (stable sort). The totals footer sums every numeric column across groups
// and recomputes rates and averages from the footer-level sums — never an
// average of averages.
func (e *Engine) BuildReport(accs *Accumulators, grouping types.Grouping, dateRange DateRange, resolve NameResolver) types.Report {
	report := types.Report{
		Grouping:    grouping,
		GeneratedAt: time.Now(),
		Rows:        make([]types.ReportRow, 0, accs.Len()),
	}
	if !dateRange.From.IsZero() {
		report.From = dateRange.From.Format("2006-01-02")
	}
	if !dateRange.To.IsZero() {
		report.To = dateRange.To.Format("2006-01-02")
	}

	totals := NewGroupAccumulator("")
	pooled := make(map[types.Bucket][]float64, len(types.AllBuckets))

	for _, key := range accs.Keys() {
		acc, _ := accs.Lookup(key)
		row := e.Finalize(acc)
		if resolve != nil {
			row.DisplayName = resolve(key)
		}
		report.Rows = append(report.Rows, row)
		mergeInto(totals, acc)
		for _, b := range types.AllBuckets {
			pooled[b] = append(pooled[b], acc.Buckets[b].Samples...)
		}
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].TotalAmount > report.Rows[j].TotalAmount
	})
	for i := range report.Rows {
		report.Rows[i].Rank = i + 1
	}

	report.Totals = e.Finalize(totals)
	report.Totals.DisplayName = "Total"
	report.Percentiles = bucketPercentiles(pooled)

	return report
}

// mergeInto adds src's running sums into dst
func mergeInto(dst, src *GroupAccumulator) {
	dst.SalesCount += src.SalesCount
	dst.NonSalesCount += src.NonSalesCount
	dst.ConvertedCount += src.ConvertedCount
	dst.TotalAmount += src.TotalAmount
	dst.TotalQty += src.TotalQty
	for seg, n := range src.SegmentCounts {
		dst.SegmentCounts[seg] += n
	}
	for seg, amt := range src.SegmentConverted {
		dst.SegmentConverted[seg] += amt
	}
	for b, agg := range src.Buckets {
		dst.Buckets[b].TotalSeconds += agg.TotalSeconds
		dst.Buckets[b].Count += agg.Count
	}
}

// bucketPercentiles computes p50/p90 over the pooled duration samples of
// each bucket. Buckets with no samples are omitted.
func bucketPercentiles(pooled map[types.Bucket][]float64) map[types.Bucket]types.PercentileStats {
	out := make(map[types.Bucket]types.PercentileStats)
	for b, samples := range pooled {
		if len(samples) == 0 {
			continue
		}
		p50, err := stats.Median(samples)
		if err != nil {
			continue
		}
		p90, err := stats.Percentile(samples, 90)
		if err != nil {
			// Percentile needs at least two samples; fall back to the median
			p90 = p50
		}
		out[b] = types.PercentileStats{P50Seconds: p50, P90Seconds: p90}
	}
	return out
}
