package poll

import (
	"fmt"
	"strings"
	"time"

	"goodminton/courts"
)

// ParseDateRange parses "YYYY-MM-DD:YYYY-MM-DD" or a single "YYYY-MM-DD" and
// returns every day in the inclusive range. Ranges longer than maxDays are
// rejected.
func ParseDateRange(s string, maxDays int) ([]time.Time, error) {
	startStr, endStr, isRange := strings.Cut(strings.TrimSpace(s), ":")
	start, err := courts.ParseDate(startStr)
	if err != nil {
		return nil, &courts.ConfigurationError{Field: "dates", Value: s, Reason: "expected YYYY-MM-DD:YYYY-MM-DD"}
	}
	end := start
	if isRange {
		end, err = courts.ParseDate(endStr)
		if err != nil {
			return nil, &courts.ConfigurationError{Field: "dates", Value: s, Reason: "expected YYYY-MM-DD:YYYY-MM-DD"}
		}
	}
	if end.Before(start) {
		return nil, &courts.ConfigurationError{Field: "dates", Value: s, Reason: "range ends before it starts"}
	}
	return ExpandDates(start, end, maxDays)
}

// ExpandDates lists every calendar day from start to end inclusive.
func ExpandDates(start, end time.Time, maxDays int) ([]time.Time, error) {
	start, end = courts.Date(start), courts.Date(end)
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if maxDays > 0 && len(dates) == maxDays {
			return nil, &courts.ConfigurationError{
				Field:  "dates",
				Value:  fmt.Sprintf("%s:%s", start.Format(time.DateOnly), end.Format(time.DateOnly)),
				Reason: fmt.Sprintf("covers more than %d days", maxDays),
			}
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// NextDays lists n days starting at the calendar day of from.
func NextDays(from time.Time, n int) []time.Time {
	dates, _ := ExpandDates(from, from.AddDate(0, 0, n-1), 0)
	return dates
}
