// Package availability turns court bookings into free time and reduces free
// time to poll options.
package availability

import (
	"cmp"
	"slices"

	"goodminton/courts"
)

// Invert returns the gaps between consecutive bookings of a single court.
// Time before the first and after the last booking is not free time: opening
// hours are unknown, so only gaps bounded by bookings on both sides count.
// Abutting or overlapping bookings produce no gap.
func Invert(bookings []courts.BookingInterval) []courts.AvailabilityInterval {
	if len(bookings) < 2 {
		return nil
	}
	sorted := slices.Clone(bookings)
	slices.SortStableFunc(sorted, func(a, b courts.BookingInterval) int {
		return a.Start.Compare(b.Start)
	})

	var avails []courts.AvailabilityInterval
	for i := 1; i < len(sorted); i++ {
		earlier, later := sorted[i-1], sorted[i]
		if !earlier.End.Before(later.Start) {
			continue
		}
		avails = append(avails, courts.AvailabilityInterval{
			Location: earlier.Location,
			Court:    earlier.Court,
			Start:    earlier.End,
			End:      later.Start,
		})
	}
	return avails
}

type courtKey struct {
	location courts.Location
	court    string
}

// InvertAll groups bookings by location and court, inverts each group and
// concatenates the results ordered by location, then court name.
func InvertAll(bookings []courts.BookingInterval) []courts.AvailabilityInterval {
	groups := make(map[courtKey][]courts.BookingInterval)
	var keys []courtKey
	for _, b := range bookings {
		k := courtKey{location: b.Location, court: b.Court}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], b)
	}
	slices.SortFunc(keys, func(a, b courtKey) int {
		return cmp.Or(cmp.Compare(a.location, b.location), cmp.Compare(a.court, b.court))
	})

	var avails []courts.AvailabilityInterval
	for _, k := range keys {
		avails = append(avails, Invert(groups[k])...)
	}
	return avails
}
