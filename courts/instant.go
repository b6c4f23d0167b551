package courts

import (
	"fmt"
	"time"
)

// NewInstant builds a wall-clock instant from the numeric encoding used by
// the booking script, where months count from zero. Instants carry no zone
// meaning; they are stored in UTC.
func NewInstant(year, month0, day, hour, minute, second int) (time.Time, error) {
	switch {
	case month0 < 0 || month0 > 11:
		return time.Time{}, FormatMismatch(fmt.Sprintf("month %d out of range", month0), nil)
	case day < 1 || day > 31:
		return time.Time{}, FormatMismatch(fmt.Sprintf("day %d out of range", day), nil)
	case hour < 0 || hour > 23:
		return time.Time{}, FormatMismatch(fmt.Sprintf("hour %d out of range", hour), nil)
	case minute < 0 || minute > 59:
		return time.Time{}, FormatMismatch(fmt.Sprintf("minute %d out of range", minute), nil)
	case second < 0 || second > 59:
		return time.Time{}, FormatMismatch(fmt.Sprintf("second %d out of range", second), nil)
	}
	t := time.Date(year, time.Month(month0+1), day, hour, minute, second, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, FormatMismatch(fmt.Sprintf("date %d-%02d-%02d does not exist", year, month0+1, day), nil)
	}
	return t, nil
}

// Date truncates t to midnight of its calendar day.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO "YYYY-MM-DD" calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// TimeOfDayOf returns the time of day of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS" in 24 hour time.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return TimeOfDay{}, &ConfigurationError{Field: "time", Value: s, Reason: "expected HH:MM or HH:MM:SS"}
}

// On combines the time of day with the calendar date of d.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, t.Second, 0, time.UTC)
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Compare returns -1, 0 or +1 as t is before, equal to or after u.
func (t TimeOfDay) Compare(u TimeOfDay) int {
	switch a, b := t.seconds(), u.seconds(); {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (t TimeOfDay) String() string {
	if t.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
