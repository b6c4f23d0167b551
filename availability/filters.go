package availability

import (
	"math"
	"strconv"
	"strings"

	"goodminton/courts"
)

// Filter narrows a set of availabilities. Implementations return new
// intervals and leave their input untouched.
type Filter interface {
	Apply(avails []courts.AvailabilityInterval) []courts.AvailabilityInterval
}

// ApplyAll runs the filters in order. Nil filters, typed or not, are skipped.
func ApplyAll(avails []courts.AvailabilityInterval, filters ...Filter) []courts.AvailabilityInterval {
	for _, f := range filters {
		if f == nil {
			continue
		}
		avails = f.Apply(avails)
	}
	return avails
}

// TimeWindow clips availabilities to a daily time-of-day window. Either bound
// may be open, not both.
type TimeWindow struct {
	start *courts.TimeOfDay
	end   *courts.TimeOfDay
}

// NewTimeWindow builds a window from optional bounds.
func NewTimeWindow(start, end *courts.TimeOfDay) (*TimeWindow, error) {
	if start == nil && end == nil {
		return nil, &courts.ConfigurationError{Field: "timerange", Reason: "must specify a start or an end"}
	}
	w := &TimeWindow{}
	if start != nil {
		s := *start
		w.start = &s
	}
	if end != nil {
		e := *end
		w.end = &e
	}
	return w, nil
}

// ParseTimeWindow parses "HH:MM-HH:MM" in 24 hour time. One side may be
// left empty, e.g. "18:00-" or "-09:30".
func ParseTimeWindow(s string) (*TimeWindow, error) {
	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok || strings.Contains(endStr, "-") {
		return nil, &courts.ConfigurationError{Field: "timerange", Value: s, Reason: "expected HH:MM-HH:MM"}
	}
	var start, end *courts.TimeOfDay
	for _, side := range []struct {
		text string
		dst  **courts.TimeOfDay
	}{{startStr, &start}, {endStr, &end}} {
		text := strings.TrimSpace(side.text)
		if text == "" {
			continue
		}
		t, err := courts.ParseTimeOfDay(text)
		if err != nil {
			return nil, &courts.ConfigurationError{Field: "timerange", Value: s, Reason: "expected HH:MM-HH:MM"}
		}
		*side.dst = &t
	}
	return NewTimeWindow(start, end)
}

// Start returns the lower bound, if any.
func (w *TimeWindow) Start() (courts.TimeOfDay, bool) {
	if w.start == nil {
		return courts.TimeOfDay{}, false
	}
	return *w.start, true
}

// End returns the upper bound, if any.
func (w *TimeWindow) End() (courts.TimeOfDay, bool) {
	if w.end == nil {
		return courts.TimeOfDay{}, false
	}
	return *w.end, true
}

// Apply drops availabilities entirely outside the window and truncates those
// that straddle a bound.
func (w *TimeWindow) Apply(avails []courts.AvailabilityInterval) []courts.AvailabilityInterval {
	if w == nil {
		return avails
	}
	var out []courts.AvailabilityInterval
	for _, a := range avails {
		clipped := a
		if w.start != nil {
			if courts.TimeOfDayOf(a.End).Compare(*w.start) < 0 {
				continue
			}
			if courts.TimeOfDayOf(a.Start).Compare(*w.start) < 0 {
				clipped.Start = w.start.On(a.Start)
			}
		}
		if w.end != nil {
			if courts.TimeOfDayOf(a.Start).Compare(*w.end) > 0 {
				continue
			}
			if courts.TimeOfDayOf(a.End).Compare(*w.end) > 0 {
				clipped.End = w.end.On(a.End)
			}
		}
		if clipped.Start.Before(clipped.End) {
			out = append(out, clipped)
		}
	}
	return out
}

func (w *TimeWindow) String() string {
	var b strings.Builder
	if w.start != nil {
		b.WriteString(w.start.String())
	}
	b.WriteString("-")
	if w.end != nil {
		b.WriteString(w.end.String())
	}
	return b.String()
}

// DurationThreshold drops availabilities shorter than a number of hours.
type DurationThreshold struct {
	hours float64
}

// NewDurationThreshold rejects negative and non-finite thresholds.
func NewDurationThreshold(hours float64) (*DurationThreshold, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return nil, &courts.ConfigurationError{
			Field:  "minduration",
			Value:  strconv.FormatFloat(hours, 'f', -1, 64),
			Reason: "must be a non-negative number of hours",
		}
	}
	return &DurationThreshold{hours: hours}, nil
}

// ParseDurationThreshold parses a number of hours such as "0.75".
func ParseDurationThreshold(s string) (*DurationThreshold, error) {
	hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, &courts.ConfigurationError{Field: "minduration", Value: s, Reason: "must be a number of hours"}
	}
	return NewDurationThreshold(hours)
}

// Hours returns the threshold.
func (d *DurationThreshold) Hours() float64 { return d.hours }

// Apply keeps availabilities lasting at least the threshold, in order.
func (d *DurationThreshold) Apply(avails []courts.AvailabilityInterval) []courts.AvailabilityInterval {
	if d == nil {
		return avails
	}
	var out []courts.AvailabilityInterval
	for _, a := range avails {
		if a.Duration() >= d.hours {
			out = append(out, a)
		}
	}
	return out
}
