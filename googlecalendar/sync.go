package googlecalendar

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
)

// SyncResult counts what a sync changed.
type SyncResult struct {
	Inserted int
	Deleted  int
	Kept     int
}

type syncPlan struct {
	insert []*calendar.Event
	delete []*calendar.Event
	kept   int
}

// Sync makes the store hold exactly events. Events are matched by summary,
// start and end; anything else the store holds is deleted.
func Sync(ctx context.Context, store EventStore, events []Event, logger *zap.Logger) (SyncResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	existing, err := store.List(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	plan := planSync(existing, events)
	var result SyncResult
	for _, stale := range plan.delete {
		logger.Debug("Deleting event", zap.String("summary", stale.Summary), zap.String("id", stale.Id))
		if err := store.Delete(ctx, stale.Id); err != nil {
			return result, err
		}
		result.Deleted++
	}
	for _, missing := range plan.insert {
		logger.Debug("Inserting event", zap.String("summary", missing.Summary), zap.String("start", missing.Start.DateTime))
		if err := store.Insert(ctx, missing); err != nil {
			return result, err
		}
		result.Inserted++
	}
	result.Kept = plan.kept

	logger.Info("Synced Google Calendar",
		zap.Int("inserted", result.Inserted), zap.Int("deleted", result.Deleted), zap.Int("kept", result.Kept))
	return result, nil
}

func planSync(existing []*calendar.Event, events []Event) syncPlan {
	wanted := make(map[string]*calendar.Event, len(events))
	for _, e := range events {
		wanted[generateEventID(e.Summary, e.Start, e.End)] = toCalendarEvent(e)
	}

	var plan syncPlan
	seen := make(map[string]bool, len(existing))
	for _, event := range existing {
		if event == nil || event.Start == nil || event.End == nil {
			continue
		}
		id, ok := existingEventID(event)
		if !ok || seen[id] {
			plan.delete = append(plan.delete, event)
			continue
		}
		if _, found := wanted[id]; !found {
			plan.delete = append(plan.delete, event)
			continue
		}
		seen[id] = true
		plan.kept++
	}

	for id, event := range wanted {
		if !seen[id] {
			plan.insert = append(plan.insert, event)
		}
	}
	sort.Slice(plan.insert, func(i, j int) bool {
		return plan.insert[i].Start.DateTime < plan.insert[j].Start.DateTime
	})
	return plan
}

func toCalendarEvent(e Event) *calendar.Event {
	return &calendar.Event{
		Summary:  e.Summary,
		Location: e.Location,
		Start: &calendar.EventDateTime{
			DateTime: e.Start.Format(time.RFC3339),
			TimeZone: TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: e.End.Format(time.RFC3339),
			TimeZone: TimeZone,
		},
	}
}

func existingEventID(event *calendar.Event) (string, bool) {
	start, err := time.Parse(time.RFC3339, event.Start.DateTime)
	if err != nil {
		return "", false
	}
	end, err := time.Parse(time.RFC3339, event.End.DateTime)
	if err != nil {
		return "", false
	}
	return generateEventID(event.Summary, start, end), true
}

// generateEventID hashes in UTC so offsets chosen by the calendar API do
// not change the identity of an event.
func generateEventID(summary string, start, end time.Time) string {
	hash := md5.New()
	fmt.Fprintf(hash, "%s%s%s", summary, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	return hex.EncodeToString(hash.Sum(nil))
}
