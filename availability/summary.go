package availability

import (
	"cmp"
	"slices"
	"time"

	"goodminton/courts"
)

type startKey struct {
	location courts.Location
	start    time.Time
}

// Summarize groups availabilities that start at the same instant at the same
// location, one summary per group, ordered by location then start.
func Summarize(avails []courts.AvailabilityInterval) []courts.AvailabilitySummary {
	index := make(map[startKey]int)
	var summaries []courts.AvailabilitySummary
	for _, a := range avails {
		k := startKey{location: a.Location, start: a.Start.UTC()}
		d := a.Duration()
		i, ok := index[k]
		if !ok {
			index[k] = len(summaries)
			summaries = append(summaries, courts.AvailabilitySummary{
				Location:    a.Location,
				Date:        courts.Date(a.Start),
				Start:       courts.TimeOfDayOf(a.Start),
				Courts:      1,
				MaxDuration: d,
				MinDuration: d,
			})
			continue
		}
		s := &summaries[i]
		s.Courts++
		s.MaxDuration = max(s.MaxDuration, d)
		s.MinDuration = min(s.MinDuration, d)
	}

	slices.SortFunc(summaries, func(a, b courts.AvailabilitySummary) int {
		return cmp.Or(cmp.Compare(a.Location, b.Location), a.Instant().Compare(b.Instant()))
	})
	return summaries
}
