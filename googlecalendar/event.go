package googlecalendar

import (
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata"

	"goodminton/courts"
)

// TimeZone is where the venues are. Scraped instants carry no zone and are
// read as wall-clock time here.
const TimeZone = "Australia/Melbourne"

// Event is one published availability, independent of the calendar backend.
type Event struct {
	UID      string
	Summary  string
	Location string
	Start    time.Time
	End      time.Time
}

// VenueLocation returns the venues' time zone.
func VenueLocation() *time.Location {
	loc, err := time.LoadLocation(TimeZone)
	if err != nil {
		return time.FixedZone("AEST", 10*60*60)
	}
	return loc
}

// Localize keeps the wall clock of the naive instant t and places it in loc.
func Localize(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// EventsFromSummaries turns each summary into an event lasting its longest
// availability.
func EventsFromSummaries(summaries []courts.AvailabilitySummary, loc *time.Location) []Event {
	events := make([]Event, 0, len(summaries))
	for _, s := range summaries {
		start := Localize(s.Instant(), loc)
		end := start.Add(time.Duration(math.Round(s.MaxDuration*3600)) * time.Second)
		events = append(events, Event{
			UID:      fmt.Sprintf("%s-%s@goodminton", strings.ToLower(s.Location.String()), s.Instant().Format("20060102T150405")),
			Summary:  s.String(),
			Location: s.Location.String(),
			Start:    start,
			End:      end,
		})
	}
	return events
}
