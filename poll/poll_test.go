package poll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"goodminton/courts"
)

func day(d int) time.Time {
	return time.Date(2024, 8, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateRange(t *testing.T) {
	dates, err := ParseDateRange("2024-08-16:2024-08-20", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 5 || !dates[0].Equal(day(16)) || !dates[4].Equal(day(20)) {
		t.Fatalf("unexpected dates %v", dates)
	}

	single, err := ParseDateRange("2024-08-16", 14)
	if err != nil || len(single) != 1 || !single[0].Equal(day(16)) {
		t.Fatalf("single date: got %v, %v", single, err)
	}

	wrapped, err := ParseDateRange("2024-08-30:2024-09-02", 14)
	if err != nil || len(wrapped) != 4 || wrapped[3].Month() != time.September {
		t.Fatalf("month boundary: got %v, %v", wrapped, err)
	}
}

func TestParseDateRangeErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"16/08/2024",
		"2024-08-20:2024-08-16",
		"2024-08-16:tomorrow",
		"2024-08-01:2024-08-31",
	} {
		_, err := ParseDateRange(s, 14)
		if !errors.Is(err, courts.ErrConfiguration) {
			t.Fatalf("%q: expected configuration error, got %v", s, err)
		}
	}
}

func TestNextDays(t *testing.T) {
	dates := NextDays(time.Date(2024, 8, 16, 15, 30, 0, 0, time.UTC), 3)
	if len(dates) != 3 || !dates[0].Equal(day(16)) || !dates[2].Equal(day(18)) {
		t.Fatalf("unexpected dates %v", dates)
	}
}

func TestParseArgs(t *testing.T) {
	req, err := ParseArgs("/poll dates=2024-08-16:2024-08-17 location=Clayton timerange=17:00- minduration=1", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Dates) != 2 || len(req.Locations) != 1 || req.Locations[0] != courts.Clayton {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Window == nil || req.MinDuration == nil || req.MinDuration.Hours() != 1 {
		t.Fatalf("expected both filters, got %+v", req)
	}
	if len(req.Filters()) != 2 || req.Units() != 2 {
		t.Fatalf("unexpected filters %d or units %d", len(req.Filters()), req.Units())
	}
}

func TestParseArgsDefaults(t *testing.T) {
	req, err := ParseArgs("/poll@goodminton_bot dates=2024-08-16", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Locations) != len(courts.Locations()) {
		t.Fatalf("expected every location, got %v", req.Locations)
	}
	if req.Filters() != nil {
		t.Fatalf("expected no filters, got %v", req.Filters())
	}
}

func TestParseArgsErrors(t *testing.T) {
	for _, text := range []string{
		"/poll",
		"/poll location=clayton",
		"/poll dates=2024-08-16 location=monash",
		"/poll dates=2024-08-16 timerange=late",
		"/poll dates=2024-08-16 minduration=-1",
		"/poll dates=2024-08-16 colour=blue",
		"/poll dates=2024-08-16 tomorrow",
	} {
		_, err := ParseArgs(text, 14)
		if !errors.Is(err, courts.ErrConfiguration) {
			t.Fatalf("%q: expected configuration error, got %v", text, err)
		}
	}
}

type fakeSource struct {
	bookings map[courts.Location][]courts.BookingInterval
	failing  map[courts.Location]error
	calls    int
}

func (f *fakeSource) ScrapeBookings(ctx context.Context, loc courts.Location, date time.Time) ([]courts.BookingInterval, error) {
	f.calls++
	if err := f.failing[loc]; err != nil {
		return nil, courts.Attribute(err, loc, date)
	}
	var out []courts.BookingInterval
	for _, b := range f.bookings[loc] {
		b.Start = courts.TimeOfDayOf(b.Start).On(date)
		b.End = courts.TimeOfDayOf(b.End).On(date)
		out = append(out, b)
	}
	return out, nil
}

func book(loc courts.Location, court string, sh, eh int) courts.BookingInterval {
	return courts.BookingInterval{
		Location: loc,
		Court:    court,
		Start:    time.Date(2024, 8, 16, sh, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 8, 16, eh, 0, 0, 0, time.UTC),
	}
}

func newSource() *fakeSource {
	return &fakeSource{bookings: map[courts.Location][]courts.BookingInterval{
		courts.Clayton: {
			book(courts.Clayton, "Court 1", 9, 10),
			book(courts.Clayton, "Court 1", 11, 12),
			book(courts.Clayton, "Court 2", 9, 10),
			book(courts.Clayton, "Court 2", 11, 13),
		},
		courts.Caulfield: {
			book(courts.Caulfield, "Court 1", 8, 9),
			book(courts.Caulfield, "Court 1", 12, 13),
		},
	}}
}

func TestRunnerRun(t *testing.T) {
	req, err := ParseArgs("/poll dates=2024-08-16", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := &Runner{Source: newSource()}
	summaries, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"Clayton on 16 August from 10:00 am (2 courts, up to 1.0 hours)",
		"Caulfield on 16 August from 09:00 am (1 courts, up to 3.0 hours)",
	}
	if len(summaries) != len(want) {
		t.Fatalf("expected %d summaries, got %v", len(want), summaries)
	}
	for i, w := range want {
		if summaries[i].String() != w {
			t.Fatalf("summary %d: expected %q, got %q", i, w, summaries[i].String())
		}
	}
}

func TestRunnerAppliesFilters(t *testing.T) {
	req, err := ParseArgs("/poll dates=2024-08-16 minduration=2", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summaries, err := (&Runner{Source: newSource()}).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Location != courts.Caulfield {
		t.Fatalf("expected only the Caulfield gap, got %v", summaries)
	}
}

func TestRunnerFailFast(t *testing.T) {
	src := newSource()
	src.failing = map[courts.Location]error{courts.Clayton: courts.FormatMismatch("odd instants", nil)}
	req, _ := ParseArgs("/poll dates=2024-08-16:2024-08-18", 14)

	summaries, err := (&Runner{Source: src, Policy: FailFast}).Run(context.Background(), req)
	if summaries != nil {
		t.Fatalf("expected no summaries, got %v", summaries)
	}
	var unitErr *UnitError
	if !errors.As(err, &unitErr) || unitErr.Location != courts.Clayton || !unitErr.Date.Equal(day(16)) {
		t.Fatalf("expected unit error for Clayton on the 16th, got %v", err)
	}
	if !errors.Is(err, courts.ErrFormatMismatch) {
		t.Fatalf("expected format mismatch in chain, got %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected the run to stop after one call, got %d", src.calls)
	}
}

func TestRunnerBestEffort(t *testing.T) {
	src := newSource()
	src.failing = map[courts.Location]error{courts.Clayton: fmt.Errorf("connection reset")}
	req, _ := ParseArgs("/poll dates=2024-08-16:2024-08-17", 14)

	summaries, err := (&Runner{Source: src, Policy: BestEffort}).Run(context.Background(), req)
	if err == nil {
		t.Fatal("expected the failed units to be reported")
	}
	if len(summaries) != 2 {
		t.Fatalf("expected one Caulfield summary per day, got %v", summaries)
	}
	for _, s := range summaries {
		if s.Location != courts.Caulfield {
			t.Fatalf("unexpected summary %v", s)
		}
	}
	units := UnitErrors(err)
	if len(units) != 2 || units[0].Location != courts.Clayton || !units[1].Date.Equal(day(17)) {
		t.Fatalf("unexpected unit errors %v", units)
	}
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, _ := ParseArgs("/poll dates=2024-08-16", 14)
	_, err := (&Runner{Source: newSource(), Policy: BestEffort}).Run(ctx, req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("best-effort"); err != nil || p != BestEffort {
		t.Fatalf("got %v, %v", p, err)
	}
	if p, err := ParsePolicy(""); err != nil || p != FailFast {
		t.Fatalf("got %v, %v", p, err)
	}
	if _, err := ParsePolicy("yolo"); !errors.Is(err, courts.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func summaries(n int) []courts.AvailabilitySummary {
	out := make([]courts.AvailabilitySummary, n)
	for i := range out {
		out[i] = courts.AvailabilitySummary{
			Location:    courts.Clayton,
			Date:        day(16),
			Start:       courts.TimeOfDay{Hour: 8 + i%12},
			Courts:      1,
			MaxDuration: 1,
			MinDuration: 1,
		}
	}
	return out
}

func TestOptions(t *testing.T) {
	cases := []struct {
		n, max int
		sizes  []int
	}{
		{0, 10, nil},
		{1, 10, []int{1}},
		{10, 10, []int{10}},
		{11, 10, []int{9, 2}},
		{25, 10, []int{10, 10, 5}},
		{3, 2, []int{2, 1}},
	}
	for _, c := range cases {
		chunks := Options(summaries(c.n), c.max)
		if len(chunks) != len(c.sizes) {
			t.Fatalf("n=%d max=%d: expected %d chunks, got %d", c.n, c.max, len(c.sizes), len(chunks))
		}
		total := 0
		for i, size := range c.sizes {
			if len(chunks[i]) != size {
				t.Fatalf("n=%d max=%d: chunk %d has %d options, expected %d", c.n, c.max, i, len(chunks[i]), size)
			}
			total += size
		}
		if total != c.n {
			t.Fatalf("n=%d: options lost, got %d", c.n, total)
		}
	}
}

func TestOptionsText(t *testing.T) {
	chunks := Options(summaries(2), 10)
	if !strings.HasPrefix(chunks[0][0], "Clayton on 16 August from 08:00 am") {
		t.Fatalf("unexpected option %q", chunks[0][0])
	}
}

func TestRunnerBestEffortKeepsEmptyHealthyUnits(t *testing.T) {
	src := &fakeSource{failing: map[courts.Location]error{courts.Caulfield: errors.New("connection reset")}}
	req, _ := ParseArgs("/poll dates=2024-08-16", 14)

	summaries, err := (&Runner{Source: src, Policy: BestEffort}).Run(context.Background(), req)
	if summaries == nil || len(summaries) != 0 {
		t.Fatalf("expected an empty, non-nil result for the healthy unit, got %#v", summaries)
	}
	units := UnitErrors(err)
	if len(units) != 1 || units[0].Location != courts.Caulfield {
		t.Fatalf("expected the Caulfield unit error, got %v", err)
	}
}

func TestRunnerBestEffortAllUnitsFailed(t *testing.T) {
	src := &fakeSource{failing: map[courts.Location]error{
		courts.Clayton:   errors.New("connection reset"),
		courts.Caulfield: errors.New("connection reset"),
	}}
	req, _ := ParseArgs("/poll dates=2024-08-16", 14)

	summaries, err := (&Runner{Source: src, Policy: BestEffort}).Run(context.Background(), req)
	if summaries != nil || len(UnitErrors(err)) != 2 {
		t.Fatalf("expected a total failure, got %v, %v", summaries, err)
	}
}
