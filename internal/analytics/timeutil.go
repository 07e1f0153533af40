package analytics

import (
	"fmt"
	"math"
	"time"
)

// timestampLayouts are tried in order by ParseSafe. The CRM sync is not
// consistent about timestamp formats, so the engine accepts the common ones.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseSafe parses a timestamp string, returning nil when the input is
// empty or unparseable. It never panics and never returns an error — a bad
// timestamp means "no timestamp" everywhere in the engine.
func ParseSafe(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		var t time.Time
		var err error
		if layout == time.RFC3339Nano || layout == time.RFC3339 {
			t, err = time.Parse(layout, s)
		} else {
			// Zoneless layouts are interpreted in local time, matching
			// how the dashboard's date picker produces values
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return &t
		}
	}
	return nil
}

// DateRange is an inclusive calendar-day range. A zero From means unbounded
// below, a zero To means unbounded above.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange builds a range from calendar days: from is normalized to
// 00:00:00.000 and to is normalized to 23:59:59.999 of its day, both in
// local time. Zero values stay zero (unbounded).
func NewDateRange(from, to time.Time) DateRange {
	r := DateRange{}
	if !from.IsZero() {
		f := from.Local()
		r.From = time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.Local)
	}
	if !to.IsZero() {
		t := to.Local()
		r.To = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, time.Local)
	}
	return r
}

// ParseDateRange builds a range from YYYY-MM-DD strings. Empty strings mean
// unbounded; malformed strings are an error because they come from the API
// caller, not from ticket data.
func ParseDateRange(fromStr, toStr string) (DateRange, error) {
	var from, to time.Time
	if fromStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", fromStr, time.Local)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid from date %q: %w", fromStr, err)
		}
		from = parsed
	}
	if toStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", toStr, time.Local)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid to date %q: %w", toStr, err)
		}
		to = parsed
	}
	return NewDateRange(from, to), nil
}

// IsZero reports whether the range is fully unbounded
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// InRange reports whether a timestamp string falls inside the range,
// boundaries inclusive. An unbounded range matches everything; a missing or
// unparseable timestamp matches nothing.
func InRange(dateStr string, r DateRange) bool {
	if r.IsZero() {
		return true
	}
	t := ParseSafe(dateStr)
	if t == nil {
		return false
	}
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// ElapsedSeconds returns the whole seconds between two timestamp strings.
// The second return is false when either timestamp is missing or
// unparseable, or when end precedes start — out-of-order timestamps mean
// "not computable", never a negative duration.
func ElapsedSeconds(start, end string) (int64, bool) {
	startT := ParseSafe(start)
	endT := ParseSafe(end)
	if startT == nil || endT == nil {
		return 0, false
	}
	if endT.Before(*startT) {
		return 0, false
	}
	return int64(endT.Sub(*startT) / time.Second), true
}

// FormatDuration renders seconds as HH:MM:SS at minute granularity: the
// value is rounded to the nearest whole minute first, so the seconds field
// is always "00". Zero renders as "00:00:00".
func FormatDuration(totalSeconds int64) string {
	minutes := int64(math.Round(float64(totalSeconds) / 60.0))
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%02d:%02d:00", hours, minutes)
}
