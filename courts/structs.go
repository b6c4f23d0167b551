package courts

import (
	"fmt"
	"time"
)

// BookingInterval is a period during which a court is unavailable.
type BookingInterval struct {
	Location Location
	Court    string
	Start    time.Time
	End      time.Time
}

// Duration returns the booking length in hours.
func (b BookingInterval) Duration() float64 {
	return durationHours(b.Start, b.End)
}

func (b BookingInterval) String() string {
	return fmt.Sprintf("%s (%s) on %s for %.2f hours (%s to %s)",
		b.Location, b.Court, FormatDate(b.Start), b.Duration(), FormatTime(b.Start), FormatTime(b.End))
}

// AvailabilityInterval is a period during which a court is free.
type AvailabilityInterval struct {
	Location Location
	Court    string
	Start    time.Time
	End      time.Time
}

// Duration returns the availability length in hours.
func (a AvailabilityInterval) Duration() float64 {
	return durationHours(a.Start, a.End)
}

func (a AvailabilityInterval) String() string {
	return fmt.Sprintf("%s (%s) on %s for %.2f hours (%s to %s)",
		a.Location, a.Court, FormatDate(a.Start), a.Duration(), FormatTime(a.Start), FormatTime(a.End))
}

// AvailabilitySummary aggregates the availabilities that start at the same
// instant at one location.
type AvailabilitySummary struct {
	Location    Location
	Date        time.Time
	Start       TimeOfDay
	Courts      int
	MaxDuration float64
	MinDuration float64
}

// Instant recombines the summary date and start time.
func (s AvailabilitySummary) Instant() time.Time {
	return s.Start.On(s.Date)
}

// String renders the summary as a single poll option line.
func (s AvailabilitySummary) String() string {
	return fmt.Sprintf("%s on %s from %s (%d courts, up to %s hours)",
		s.Location, FormatDate(s.Date), FormatTime(s.Instant()), s.Courts, FormatHours(s.MaxDuration))
}

func durationHours(start, end time.Time) float64 {
	d := end.Sub(start)
	if d < 0 {
		d = -d
	}
	return d.Hours()
}
