package googlecalendar

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
)

const (
	productID = "-//goodminton//Court Availability//EN"
	// golang-ical writes every instant in UTC.
	icsTimestamp = "20060102T150405Z"
)

// BuildICS renders events as a published iCalendar feed.
func BuildICS(events []Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Badminton court availability")
	cal.SetXWRTimezone(TimeZone)

	for _, e := range events {
		vevent := cal.AddEvent(e.UID)
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(e.Start)
		vevent.SetEndAt(e.End)
		vevent.SetSummary(e.Summary)
		vevent.SetLocation(e.Location)
	}
	return cal.Serialize()
}

// ParseICS reads the events back from a feed. Events without a start, an
// end or a summary are skipped.
func ParseICS(r io.Reader) ([]Event, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing ICS data: %w", err)
	}

	var events []Event
	for _, vevent := range cal.Events() {
		if vevent == nil {
			continue
		}
		startProperty := vevent.GetProperty(ics.ComponentPropertyDtStart)
		endProperty := vevent.GetProperty(ics.ComponentPropertyDtEnd)
		summaryProperty := vevent.GetProperty(ics.ComponentPropertySummary)
		if startProperty == nil || endProperty == nil || summaryProperty == nil {
			continue
		}
		start, err := time.Parse(icsTimestamp, startProperty.Value)
		if err != nil {
			return nil, fmt.Errorf("error parsing start of %s: %w", vevent.Id(), err)
		}
		end, err := time.Parse(icsTimestamp, endProperty.Value)
		if err != nil {
			return nil, fmt.Errorf("error parsing end of %s: %w", vevent.Id(), err)
		}

		e := Event{UID: vevent.Id(), Summary: summaryProperty.Value, Start: start, End: end}
		if p := vevent.GetProperty(ics.ComponentPropertyLocation); p != nil {
			e.Location = p.Value
		}
		events = append(events, e)
	}
	return events, nil
}
