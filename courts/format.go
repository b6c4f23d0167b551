package courts

import (
	"strconv"
	"strings"
	"time"
)

// FormatDate renders dates as "dd Month".
func FormatDate(t time.Time) string {
	return t.Format("02 January")
}

// FormatTime renders times as "hh:mm am/pm".
func FormatTime(t time.Time) string {
	return t.Format("03:04 pm")
}

// FormatHours renders an hour count with at most two and at least one decimal.
func FormatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
