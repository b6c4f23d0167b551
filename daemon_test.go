package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"goodminton/config"
	"goodminton/courts"
	"goodminton/googlecalendar"
	"goodminton/poll"
)

type stubSource struct {
	dates map[string]bool
}

func (s *stubSource) ScrapeBookings(_ context.Context, loc courts.Location, date time.Time) ([]courts.BookingInterval, error) {
	if s.dates == nil {
		s.dates = map[string]bool{}
	}
	s.dates[date.Format(time.DateOnly)] = true
	at := func(h int) time.Time { return courts.TimeOfDay{Hour: h}.On(date) }
	return []courts.BookingInterval{
		{Location: loc, Court: "Court 1", Start: at(9), End: at(10)},
		{Location: loc, Court: "Court 1", Start: at(12), End: at(13)},
	}, nil
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Daemon.Days = 3
	cfg.Daemon.ICSPath = filepath.Join(t.TempDir(), "availability.ics")
	cfg.Daemon.MinHours = "2"
	return cfg
}

func TestDaemonRequest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Daemon.TimeRange = "08:00-"
	req, err := daemonRequest(cfg, time.Date(2024, 8, 30, 18, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Dates) != 3 || req.Dates[2].Format(time.DateOnly) != "2024-09-01" {
		t.Fatalf("unexpected dates %v", req.Dates)
	}
	if req.Window == nil || req.MinDuration == nil {
		t.Fatalf("expected both filters, got %+v", req)
	}
}

func TestRefreshWritesFeedAndPublishes(t *testing.T) {
	cfg := testConfig(t)
	source := &stubSource{}
	runner := &poll.Runner{Source: source}

	var published []googlecalendar.Event
	attempts := 0
	pub := publisher{name: "test", publish: func(_ context.Context, ics string, events []googlecalendar.Event) error {
		attempts++
		if !strings.Contains(ics, "BEGIN:VCALENDAR") {
			t.Errorf("unexpected feed %q", ics)
		}
		published = events
		return nil
	}}

	now := time.Date(2024, 8, 16, 7, 0, 0, 0, time.UTC)
	if err := refresh(context.Background(), cfg, runner, []publisher{pub}, now, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(source.dates) != 3 {
		t.Fatalf("expected three days scraped, got %v", source.dates)
	}
	// One 10:00-12:00 gap per location per day.
	if len(published) != 6 || attempts != 1 {
		t.Fatalf("expected 6 events in one attempt, got %d in %d", len(published), attempts)
	}

	data, err := os.ReadFile(cfg.Daemon.ICSPath)
	if err != nil {
		t.Fatalf("reading feed: %v", err)
	}
	events, err := googlecalendar.ParseICS(strings.NewReader(string(data)))
	if err != nil || len(events) != 6 {
		t.Fatalf("expected 6 events on disk, got %d, %v", len(events), err)
	}
}

func TestRefreshReportsPublisherFailure(t *testing.T) {
	cfg := testConfig(t)
	runner := &poll.Runner{Source: &stubSource{}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := publisher{name: "broken", publish: func(context.Context, string, []googlecalendar.Event) error {
		cancel()
		return errors.New("bad credentials")
	}}
	err := refresh(ctx, cfg, runner, []publisher{pub}, time.Now(), zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected the publisher error, got %v", err)
	}
}

func TestWithRetries(t *testing.T) {
	calls := 0
	err := withRetries(context.Background(), zap.NewNop(), func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("expected one successful call, got %d, %v", calls, err)
	}
}
