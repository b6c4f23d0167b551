package poll

import (
	"strings"
	"time"

	"goodminton/availability"
	"goodminton/courts"
)

// Argument names understood by /poll and the HTTP API.
const (
	ArgDates       = "dates"
	ArgLocation    = "location"
	ArgTimeRange   = "timerange"
	ArgMinDuration = "minduration"
)

// Request is one parsed availability query.
type Request struct {
	Dates       []time.Time
	Locations   []courts.Location
	Window      *availability.TimeWindow
	MinDuration *availability.DurationThreshold
}

// Filters returns the configured filters, window first.
func (r *Request) Filters() []availability.Filter {
	var filters []availability.Filter
	if r.Window != nil {
		filters = append(filters, r.Window)
	}
	if r.MinDuration != nil {
		filters = append(filters, r.MinDuration)
	}
	return filters
}

// Units returns the number of (location, date) pages the request covers.
func (r *Request) Units() int {
	return len(r.Locations) * len(r.Dates)
}

// ParseArgs parses a chat command such as
// "/poll dates=2024-08-16:2024-08-20 location=clayton timerange=17:00- minduration=1".
func ParseArgs(text string, maxDays int) (*Request, error) {
	words := strings.Fields(text)
	if len(words) > 0 && strings.HasPrefix(words[0], "/") {
		words = words[1:]
	}
	args := make(map[string]string, len(words))
	for _, w := range words {
		key, value, ok := strings.Cut(w, "=")
		if !ok {
			return nil, &courts.ConfigurationError{Field: "argument", Value: w, Reason: "expected key=value"}
		}
		args[strings.ToLower(key)] = value
	}
	return NewRequest(args, maxDays)
}

// NewRequest validates named arguments. dates is required; location
// defaults to every venue.
func NewRequest(args map[string]string, maxDays int) (*Request, error) {
	for key := range args {
		switch key {
		case ArgDates, ArgLocation, ArgTimeRange, ArgMinDuration:
		default:
			return nil, &courts.ConfigurationError{Field: "argument", Value: key, Reason: "unknown argument"}
		}
	}

	datesArg, ok := args[ArgDates]
	if !ok || datesArg == "" {
		return nil, &courts.ConfigurationError{Field: ArgDates, Reason: "a dates argument is required, e.g. dates=2024-08-16:2024-08-20"}
	}
	dates, err := ParseDateRange(datesArg, maxDays)
	if err != nil {
		return nil, err
	}
	req := &Request{Dates: dates, Locations: courts.Locations()}

	if s, ok := args[ArgLocation]; ok && s != "" {
		loc, err := courts.ParseLocation(s)
		if err != nil {
			return nil, err
		}
		req.Locations = []courts.Location{loc}
	}
	if s, ok := args[ArgTimeRange]; ok && s != "" {
		if req.Window, err = availability.ParseTimeWindow(s); err != nil {
			return nil, err
		}
	}
	if s, ok := args[ArgMinDuration]; ok && s != "" {
		if req.MinDuration, err = availability.ParseDurationThreshold(s); err != nil {
			return nil, err
		}
	}
	return req, nil
}
