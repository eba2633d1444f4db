package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

var ErrEventNotFound = errors.New("google calendar event not found")

// EventInput represents the input for creating or updating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
}

// EventDetails represents a single Google Calendar event.
type EventDetails struct {
	ID          string
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     *time.Time
	AllDay      bool
}

// UserCalendar is one user's calendar, bound to their credentials.
type UserCalendar struct {
	service    *calendar.Service
	calendarID string
	home       *time.Location
}

func parseGoogleEventTimes(item *calendar.Event, loc *time.Location) (time.Time, time.Time, bool, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event is missing start or end")
	}

	// All-day events use Date instead of DateTime.
	if item.Start.Date != "" {
		startDate, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day start date: %w", err)
		}
		endDate, err := time.ParseInLocation("2006-01-02", item.End.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day end date: %w", err)
		}
		return startDate, endDate, true, nil
	}

	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event datetime is missing")
	}

	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse start datetime: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse end datetime: %w", err)
	}

	return startTime, endTime, false, nil
}

func eventFromItem(item *calendar.Event, loc *time.Location) (*EventDetails, error) {
	startTime, endTime, allDay, err := parseGoogleEventTimes(item, loc)
	if err != nil {
		return nil, err
	}

	endCopy := endTime
	return &EventDetails{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		StartTime:   startTime,
		EndTime:     &endCopy,
		AllDay:      allDay,
	}, nil
}

// ListRange returns events in a time window, ordered by start time ascending
// as the provider returns them, capped at maxResults (0 means no cap).
func (c *UserCalendar) ListRange(ctx context.Context, timeMin, timeMax time.Time, maxResults int) ([]EventDetails, error) {
	if timeMax.Before(timeMin) {
		return nil, fmt.Errorf("invalid range: time_max is before time_min")
	}

	var result []EventDetails
	pageToken := ""

	for {
		call := c.service.Events.List(c.calendarID).
			Context(ctx).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			ShowDeleted(false).
			OrderBy("startTime")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events in range: %w", err)
		}

		for _, item := range events.Items {
			if item == nil || item.Status == "cancelled" {
				continue
			}

			event, parseErr := eventFromItem(item, c.home)
			if parseErr != nil {
				// Skip malformed events rather than failing the whole request.
				continue
			}
			result = append(result, *event)

			if maxResults > 0 && len(result) >= maxResults {
				return result, nil
			}
		}

		if events.NextPageToken == "" {
			break
		}
		pageToken = events.NextPageToken
	}

	return result, nil
}

// Create creates a new event and returns it.
func (c *UserCalendar) Create(ctx context.Context, input EventInput) (*EventDetails, error) {
	// RFC3339 format includes the offset, so Google Calendar can infer the zone.
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime.Format(time.RFC3339),
		},
	}

	created, err := c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return eventFromItem(created, c.home)
}

// Update replaces an existing event's fields and returns the updated event.
func (c *UserCalendar) Update(ctx context.Context, eventID string, input EventInput) (*EventDetails, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime.Format(time.RFC3339),
		},
	}

	updated, err := c.service.Events.Update(c.calendarID, eventID, event).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return eventFromItem(updated, c.home)
}

// Delete removes an event.
func (c *UserCalendar) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}

	if err := c.service.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// Search lists the window and keeps events whose summary, location or
// description contains the query, case-insensitively. Provider ordering is
// preserved.
func (c *UserCalendar) Search(ctx context.Context, query string, timeMin, timeMax time.Time) ([]EventDetails, error) {
	events, err := c.ListRange(ctx, timeMin, timeMax, 0)
	if err != nil {
		return nil, err
	}

	var matches []EventDetails
	for _, event := range events {
		if MatchesQuery(event, query) {
			matches = append(matches, event)
		}
	}
	return matches, nil
}

// MatchesQuery reports whether the query appears in the event's summary,
// location or description, ignoring case.
func MatchesQuery(event EventDetails, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(event.Summary), q) ||
		strings.Contains(strings.ToLower(event.Location), q) ||
		strings.Contains(strings.ToLower(event.Description), q)
}

func isNotFound(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && (gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone)
}
