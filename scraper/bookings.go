package scraper

import (
	"fmt"
	"time"

	"goodminton/courts"
	"goodminton/jsquery"
)

const (
	DefaultBookingsKey = "events"
	DefaultConstructor = "Date"
)

type extractConfig struct {
	key         string
	constructor string
}

// ExtractOption overrides the names the booking extractor searches for.
type ExtractOption func(*extractConfig)

// WithBookingsKey sets the property name holding each court's booking array.
func WithBookingsKey(key string) ExtractOption {
	return func(c *extractConfig) { c.key = key }
}

// WithConstructor sets the constructor name of the booking instants.
func WithConstructor(name string) ExtractOption {
	return func(c *extractConfig) { c.constructor = name }
}

// ExtractBookings finds one booking array per court in tree and turns the
// instants inside it into bookings on date. The n-th array belongs to
// courtNames[n]. A tree without any booking array has no bookings.
func ExtractBookings(tree jsquery.Node, courtNames []string, loc courts.Location, date time.Time, opts ...ExtractOption) ([]courts.BookingInterval, error) {
	cfg := extractConfig{key: DefaultBookingsKey, constructor: DefaultConstructor}
	for _, opt := range opts {
		opt(&cfg)
	}
	date = courts.Date(date)

	var bookings []courts.BookingInterval
	index := 0
	for pair := range tree.Find(jsquery.PairNamed(cfg.key)) {
		if index >= len(courtNames) {
			return nil, courts.Attribute(courts.FormatMismatch(
				fmt.Sprintf("found more %q arrays than the %d court names", cfg.key, len(courtNames)), nil), loc, date)
		}
		court := courtNames[index]
		index++

		array := pair.Child(jsquery.FieldValue)
		if array == nil || array.Kind() != jsquery.KindArray {
			return nil, courts.Attribute(courts.FormatMismatch(
				fmt.Sprintf("%q for court %q is not an array", cfg.key, court), nil), loc, date)
		}

		courtBookings, err := courtBookings(array, cfg.constructor, court, loc, date)
		if err != nil {
			return nil, courts.Attribute(err, loc, date)
		}
		bookings = append(bookings, courtBookings...)
	}
	return bookings, nil
}

func courtBookings(array jsquery.Node, constructor, court string, loc courts.Location, date time.Time) ([]courts.BookingInterval, error) {
	var instants []time.Time
	for args, err := range Instants(array, constructor) {
		if err != nil {
			return nil, fmt.Errorf("court %q: %w", court, err)
		}
		if len(args) < 6 {
			return nil, courts.FormatMismatch(fmt.Sprintf("court %q: %s call has %d integer arguments, want 6", court, constructor, len(args)), nil)
		}
		instant, err := courts.NewInstant(args[0], args[1], args[2], args[3], args[4], args[5])
		if err != nil {
			return nil, fmt.Errorf("court %q: %w", court, err)
		}
		instants = append(instants, courts.TimeOfDayOf(instant).On(date))
	}

	if len(instants)%2 != 0 {
		return nil, courts.FormatMismatch(fmt.Sprintf("court %q: odd number of instants (%d)", court, len(instants)), nil)
	}

	bookings := make([]courts.BookingInterval, 0, len(instants)/2)
	for i := 0; i < len(instants); i += 2 {
		start, end := instants[i], instants[i+1]
		if !start.Before(end) {
			return nil, courts.FormatMismatch(fmt.Sprintf("court %q: booking ends at %s before it starts at %s",
				court, end.Format(time.TimeOnly), start.Format(time.TimeOnly)), nil)
		}
		bookings = append(bookings, courts.BookingInterval{
			Location: loc,
			Court:    court,
			Start:    start,
			End:      end,
		})
	}
	return bookings, nil
}
