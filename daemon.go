package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"goodminton/config"
	"goodminton/googlecalendar"
	"goodminton/poll"
	"goodminton/uploader"
)

const (
	maxRetries = 3
	retryDelay = 5 * time.Second
)

// publisher pushes a freshly built feed somewhere.
type publisher struct {
	name    string
	publish func(ctx context.Context, ics string, events []googlecalendar.Event) error
}

// runDaemon republishes the next cfg.Daemon.Days days of availability every
// cfg.Daemon.Interval until ctx is done.
func runDaemon(ctx context.Context, cfg *config.Config, runner *poll.Runner, log *zap.Logger) error {
	publishers, err := newPublishers(ctx, cfg, log)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Daemon.Interval)
	defer ticker.Stop()
	for {
		if err := refresh(ctx, cfg, runner, publishers, time.Now(), log); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("Refresh failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func newPublishers(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]publisher, error) {
	var publishers []publisher
	if cfg.Github.Token != "" && cfg.Github.Repo != "" {
		up := uploader.New(cfg.Github.Token, cfg.Github.Repo)
		publishers = append(publishers, publisher{
			name: "github",
			publish: func(ctx context.Context, ics string, _ []googlecalendar.Event) error {
				return up.Upload(ctx, cfg.Github.Path, []byte(ics), "Update "+cfg.Github.Path)
			},
		})
	}
	if cfg.Google.CalendarID != "" && cfg.Google.CredentialsFile != "" {
		srv, err := googlecalendar.NewService(ctx, cfg.Google.CredentialsFile)
		if err != nil {
			return nil, err
		}
		store := &googlecalendar.CalendarStore{Service: srv, CalendarID: cfg.Google.CalendarID}
		calLog := log.Named("googlecalendar")
		publishers = append(publishers, publisher{
			name: "google",
			publish: func(ctx context.Context, _ string, events []googlecalendar.Event) error {
				_, err := googlecalendar.Sync(ctx, store, events, calLog)
				return err
			},
		})
	}
	return publishers, nil
}

// refresh runs one publication: scrape, write the feed, then hand it to each
// publisher with retries.
func refresh(ctx context.Context, cfg *config.Config, runner *poll.Runner, publishers []publisher, now time.Time, log *zap.Logger) error {
	req, err := daemonRequest(cfg, now)
	if err != nil {
		return err
	}
	summaries, err := runner.Run(ctx, req)
	if err != nil && summaries == nil {
		return err
	}
	for _, unitErr := range poll.UnitErrors(err) {
		log.Warn("Publishing without unit", zap.Error(unitErr))
	}

	events := googlecalendar.EventsFromSummaries(summaries, googlecalendar.VenueLocation())
	ics := googlecalendar.BuildICS(events, now)
	if cfg.Daemon.ICSPath != "" {
		if err := os.WriteFile(cfg.Daemon.ICSPath, []byte(ics), 0o644); err != nil {
			return fmt.Errorf("error writing ICS file: %w", err)
		}
	}
	log.Info("Built availability feed", zap.Int("events", len(events)), zap.String("path", cfg.Daemon.ICSPath))

	var errs []error
	for _, p := range publishers {
		if err := withRetries(ctx, log.With(zap.String("publisher", p.name)), func() error {
			return p.publish(ctx, ics, events)
		}); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
		}
	}
	return errors.Join(errs...)
}

func daemonRequest(cfg *config.Config, now time.Time) (*poll.Request, error) {
	dates := poll.NextDays(now, cfg.Daemon.Days)
	args := map[string]string{
		poll.ArgDates:       fmt.Sprintf("%s:%s", dates[0].Format(time.DateOnly), dates[len(dates)-1].Format(time.DateOnly)),
		poll.ArgTimeRange:   cfg.Daemon.TimeRange,
		poll.ArgMinDuration: cfg.Daemon.MinHours,
	}
	return poll.NewRequest(args, cfg.Daemon.Days)
}

func withRetries(ctx context.Context, log *zap.Logger, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				log.Info("Succeeded after retrying", zap.Int("attempt", attempt))
			}
			return nil
		}
		log.Warn("Attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return err
}
