package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"goodminton/availability"
	"goodminton/courts"
)

// BookingSource returns every booking at a location on a date.
type BookingSource interface {
	ScrapeBookings(ctx context.Context, loc courts.Location, date time.Time) ([]courts.BookingInterval, error)
}

// Policy decides what a run does when one (location, date) unit fails.
type Policy int

const (
	// FailFast abandons the run at the first failed unit.
	FailFast Policy = iota
	// BestEffort summarizes the units that succeeded and reports the rest.
	BestEffort
)

// ParsePolicy accepts "fail-fast" and "best-effort".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "fail-fast", "":
		return FailFast, nil
	case "best-effort":
		return BestEffort, nil
	}
	return 0, &courts.ConfigurationError{Field: "policy", Value: s, Reason: "expected fail-fast or best-effort"}
}

func (p Policy) String() string {
	if p == BestEffort {
		return "best-effort"
	}
	return "fail-fast"
}

// UnitError attributes a failure to the (location, date) it came from.
type UnitError struct {
	Location courts.Location
	Date     time.Time
	Err      error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Location, e.Date.Format(time.DateOnly), e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// Runner turns requests into summaries.
type Runner struct {
	Source BookingSource
	Policy Policy
	Logger *zap.Logger
}

// Availabilities scrapes every unit of req and returns its filtered free
// time. Under BestEffort the availabilities of healthy units are returned
// together with the joined UnitErrors of the failed ones.
func (r *Runner) Availabilities(ctx context.Context, req *Request) ([]courts.AvailabilityInterval, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var (
		avails []courts.AvailabilityInterval
		failed []error
	)
	for _, loc := range req.Locations {
		for _, date := range req.Dates {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			bookings, err := r.Source.ScrapeBookings(ctx, loc, date)
			if err != nil {
				unitErr := &UnitError{Location: loc, Date: date, Err: err}
				if r.Policy == FailFast {
					return nil, unitErr
				}
				log.Warn("Skipping unit", zap.String("location", loc.String()),
					zap.String("date", date.Format(time.DateOnly)), zap.Error(err))
				failed = append(failed, unitErr)
				continue
			}
			avails = append(avails, availability.InvertAll(bookings)...)
		}
	}

	avails = availability.ApplyAll(avails, req.Filters()...)
	log.Info("Computed availabilities",
		zap.Int("units", req.Units()), zap.Int("failed", len(failed)), zap.Int("availabilities", len(avails)))
	return avails, errors.Join(failed...)
}

// Run returns the summaries of req. Errors follow Availabilities. A nil
// slice with an error means no unit succeeded; a partial best-effort run
// returns a non-nil slice, empty when the healthy units have no free time.
func (r *Runner) Run(ctx context.Context, req *Request) ([]courts.AvailabilitySummary, error) {
	avails, err := r.Availabilities(ctx, req)
	if err != nil && (r.Policy == FailFast || ctx.Err() != nil || len(UnitErrors(err)) >= req.Units()) {
		return nil, err
	}
	summaries := availability.Summarize(avails)
	if summaries == nil {
		summaries = []courts.AvailabilitySummary{}
	}
	return summaries, err
}

// UnitErrors unpacks the per-unit failures of a best-effort run.
func UnitErrors(err error) []*UnitError {
	if err == nil {
		return nil
	}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	var units []*UnitError
	for _, e := range errs {
		var unitErr *UnitError
		if errors.As(e, &unitErr) {
			units = append(units, unitErr)
		}
	}
	return units
}
