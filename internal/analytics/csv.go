package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// ReportHeaders is the export column order. Header order is part of the
// export contract — downstream spreadsheets reference columns by position.
var ReportHeaders = []string{
	"Rank",
	"Reference ID",
	"Name",
	"Sales Inquiries",
	"Non-Sales Inquiries",
	"Converted Sales",
	"Conversion Rate (%)",
	"Total SO Amount",
	"Total Qty Sold",
	"Avg Unit Value",
	"Avg Transaction Value",
	"New Client",
	"New Non-Buying",
	"Existing Active",
	"Existing Inactive",
	"New Client Amount",
	"New Non-Buying Amount",
	"Existing Active Amount",
	"Existing Inactive Amount",
	"Avg Response Time",
	"Avg Quotation Handling",
	"Avg Non-Quotation Handling",
	"Avg SPF Handling",
}

// ReportRecords flattens a report's ranked rows plus its totals footer into
// CSV field records matching ReportHeaders.
func ReportRecords(report types.Report) [][]string {
	records := make([][]string, 0, len(report.Rows)+1)
	for _, row := range report.Rows {
		records = append(records, rowRecord(row, strconv.Itoa(row.Rank)))
	}
	records = append(records, rowRecord(report.Totals, ""))
	return records
}

func rowRecord(row types.ReportRow, rank string) []string {
	name := row.DisplayName
	if name == "" {
		name = row.Key
	}
	record := []string{
		rank,
		row.Key,
		name,
		strconv.Itoa(row.SalesCount),
		strconv.Itoa(row.NonSalesCount),
		strconv.Itoa(row.ConvertedCount),
		fmt.Sprintf("%.2f", row.ConversionRate),
		fmt.Sprintf("%.2f", row.TotalAmount),
		fmt.Sprintf("%.2f", row.TotalQty),
		fmt.Sprintf("%.2f", row.AvgUnitValue),
		fmt.Sprintf("%.2f", row.AvgTransactionValue),
	}
	for _, seg := range types.AllSegments {
		record = append(record, strconv.Itoa(row.SegmentCounts[seg]))
	}
	for _, seg := range types.AllSegments {
		record = append(record, fmt.Sprintf("%.2f", row.SegmentConverted[seg]))
	}
	for _, b := range types.AllBuckets {
		record = append(record, row.Buckets[b].AvgDisplay)
	}
	return record
}

// RenderCSV serializes records under the given header list. Every field is
// quoted and embedded quotes are doubled (RFC 4180). encoding/csv only
// quotes fields that need it, which breaks the fixed export contract, so
// the quoting is done here.
func RenderCSV(headers []string, records [][]string) string {
	var sb strings.Builder
	writeRecord(&sb, headers)
	for _, record := range records {
		writeRecord(&sb, record)
	}
	return sb.String()
}

func writeRecord(sb *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(field, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteString("\r\n")
}
