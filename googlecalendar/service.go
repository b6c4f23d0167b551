package googlecalendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Private extended property marking events this program created. Only
// those are listed, and therefore only those are ever deleted.
const (
	sourceProperty = "source"
	sourceValue    = "goodminton"
)

// NewService authenticates with a service account or authorized user
// credentials file.
func NewService(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*calendar.Service, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("error reading Google credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("error parsing Google credentials: %w", err)
	}
	srv, err := calendar.NewService(ctx, append([]option.ClientOption{option.WithCredentials(creds)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}
	return srv, nil
}

// EventStore is the part of a calendar that Sync needs.
type EventStore interface {
	List(ctx context.Context) ([]*calendar.Event, error)
	Insert(ctx context.Context, event *calendar.Event) error
	Delete(ctx context.Context, eventID string) error
}

// CalendarStore keeps events in one Google calendar.
type CalendarStore struct {
	Service    *calendar.Service
	CalendarID string
}

// List returns every live event this program created, following pages.
func (s *CalendarStore) List(ctx context.Context) ([]*calendar.Event, error) {
	var allEvents []*calendar.Event
	pageToken := ""
	for {
		events, err := s.Service.Events.List(s.CalendarID).
			PrivateExtendedProperty(sourceProperty + "=" + sourceValue).
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("error fetching events from Google Calendar: %w", err)
		}
		for _, event := range events.Items {
			if event == nil || event.Status == "cancelled" {
				continue
			}
			allEvents = append(allEvents, event)
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return allEvents, nil
}

func (s *CalendarStore) Insert(ctx context.Context, event *calendar.Event) error {
	if event.ExtendedProperties == nil {
		event.ExtendedProperties = &calendar.EventExtendedProperties{}
	}
	if event.ExtendedProperties.Private == nil {
		event.ExtendedProperties.Private = map[string]string{}
	}
	event.ExtendedProperties.Private[sourceProperty] = sourceValue
	if _, err := s.Service.Events.Insert(s.CalendarID, event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("error inserting event into Google Calendar: %w", err)
	}
	return nil
}

// Delete removes an event. An event that is already gone is not an error.
func (s *CalendarStore) Delete(ctx context.Context, eventID string) error {
	err := s.Service.Events.Delete(s.CalendarID, eventID).Context(ctx).Do()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusGone {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error deleting event from Google Calendar: %w", err)
	}
	return nil
}
