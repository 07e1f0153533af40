package alerts

import (
	"fmt"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// Thresholds configures the report row alert rules
type Thresholds struct {
	// LowConversionPercent flags rows converting below this rate.
	// Rows with no sales inquiries are never flagged.
	LowConversionPercent float64

	// SlowResponseSeconds flags rows whose average response time
	// exceeds this many seconds.
	SlowResponseSeconds int64
}

// CheckRowAlerts evaluates alert rules for a slice of report rows,
// mutating each row's Alerts field in place.
func CheckRowAlerts(rows []types.ReportRow, th Thresholds) {
	for i := range rows {
		rows[i].Alerts = nil

		if rows[i].SalesCount > 0 && rows[i].ConversionRate < th.LowConversionPercent {
			rows[i].Alerts = append(rows[i].Alerts, types.RowAlert{
				Rule:     "low_conversion",
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("Conversion rate %.1f%% below %.1f%%", rows[i].ConversionRate, th.LowConversionPercent),
			})
		}

		if resp, ok := rows[i].Buckets[types.BucketResponse]; ok && resp.AvgSeconds != nil {
			if *resp.AvgSeconds > th.SlowResponseSeconds {
				rows[i].Alerts = append(rows[i].Alerts, types.RowAlert{
					Rule:     "slow_response",
					Severity: types.SeverityCritical,
					Message:  fmt.Sprintf("Average response %s exceeds %s", formatSeconds(*resp.AvgSeconds), formatSeconds(th.SlowResponseSeconds)),
				})
			}
		}
	}
}

func formatSeconds(total int64) string {
	mins := total / 60
	secs := total % 60
	if mins >= 60 {
		hours := mins / 60
		mins = mins % 60
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
	return fmt.Sprintf("%dm%ds", mins, secs)
}
