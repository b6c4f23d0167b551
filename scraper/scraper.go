package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"goodminton/courts"
	"goodminton/jsquery"
)

// Facility timetables, one per venue. The ISO date is appended.
const (
	URLCaulfield = "https://www.mymonashsport.com.au/public/facility/iframe/753/1030/"
	URLClayton   = "https://www.mymonashsport.com.au/public/facility/iframe/754/1018/"
)

// DefaultURLs maps each venue to its timetable.
func DefaultURLs() map[courts.Location]string {
	return map[courts.Location]string{
		courts.Clayton:   URLClayton,
		courts.Caulfield: URLCaulfield,
	}
}

// Scraper fetches facility timetables and extracts their bookings.
type Scraper struct {
	Fetcher     Fetcher
	URLs        map[courts.Location]string
	BookingsKey string
	Constructor string
	// ScriptIndex picks the booking script by position; negative searches
	// for the first script mentioning BookingsKey.
	ScriptIndex int
	Logger      *zap.Logger
}

// New returns a scraper with the default timetables and names.
func New(fetcher Fetcher, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		Fetcher:     fetcher,
		URLs:        DefaultURLs(),
		BookingsKey: DefaultBookingsKey,
		Constructor: DefaultConstructor,
		ScriptIndex: -1,
		Logger:      logger,
	}
}

// URL returns the timetable address of loc on date.
func (s *Scraper) URL(loc courts.Location, date time.Time) (string, error) {
	base, ok := s.URLs[loc]
	if !ok {
		return "", &courts.ConfigurationError{Field: "location", Value: loc.String(), Reason: "no timetable URL configured"}
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + date.Format(time.DateOnly), nil
}

// ScrapeBookings fetches every booking at loc on date.
func (s *Scraper) ScrapeBookings(ctx context.Context, loc courts.Location, date time.Time) ([]courts.BookingInterval, error) {
	url, err := s.URL(loc, date)
	if err != nil {
		return nil, err
	}
	log := s.Logger.With(zap.String("location", loc.String()), zap.String("date", date.Format(time.DateOnly)))
	log.Debug("Fetching timetable", zap.String("url", url))

	html, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error fetching timetable for %s on %s: %w", loc, date.Format(time.DateOnly), err)
	}

	page, err := ParsePage(html, s.BookingsKey, s.ScriptIndex)
	if err != nil {
		return nil, courts.Attribute(err, loc, date)
	}
	if page.Script == "" {
		log.Warn("Timetable has no booking script, assuming no bookings")
		return nil, nil
	}

	tree, err := jsquery.Parse(page.Script)
	if err != nil {
		return nil, courts.Attribute(courts.FormatMismatch("booking script does not parse", err), loc, date)
	}

	bookings, err := ExtractBookings(tree, page.CourtNames, loc, date,
		WithBookingsKey(s.BookingsKey), WithConstructor(s.Constructor))
	if err != nil {
		return nil, err
	}
	log.Debug("Extracted bookings", zap.Int("courts", len(page.CourtNames)), zap.Int("bookings", len(bookings)))
	return bookings, nil
}
