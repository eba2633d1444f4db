package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmgr/wooster/internal/gcal"
	"github.com/benmgr/wooster/internal/intent"
	"github.com/benmgr/wooster/internal/timeutil"
)

const (
	defaultMaxListResults   = 25
	defaultSearchWindowDays = 30
	defaultEventDuration    = time.Hour
)

// Calendar is the capability surface the orchestrator drives.
type Calendar interface {
	ListRange(ctx context.Context, timeMin, timeMax time.Time, maxResults int) ([]gcal.EventDetails, error)
	Create(ctx context.Context, input gcal.EventInput) (*gcal.EventDetails, error)
	Update(ctx context.Context, eventID string, input gcal.EventInput) (*gcal.EventDetails, error)
	Delete(ctx context.Context, eventID string) error
	Search(ctx context.Context, query string, timeMin, timeMax time.Time) ([]gcal.EventDetails, error)
}

// Provider yields the calendar bound to a user's credentials, or
// gcal.ErrNotLinked when the user never connected one.
type Provider interface {
	CalendarFor(ctx context.Context, userID int64) (Calendar, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, userID int64) (Calendar, error)

func (f ProviderFunc) CalendarFor(ctx context.Context, userID int64) (Calendar, error) {
	return f(ctx, userID)
}

// Result is the outcome of one calendar operation, consumed by the reply
// stage and then discarded.
type Result struct {
	Success      bool                `json:"success"`
	Events       []gcal.EventDetails `json:"events,omitempty"`
	Count        int                 `json:"count,omitempty"`
	CreatedEvent *gcal.EventDetails  `json:"createdEvent,omitempty"`
	UpdatedEvent *gcal.EventDetails  `json:"updatedEvent,omitempty"`
	DeletedEvent *gcal.EventDetails  `json:"deletedEvent,omitempty"`
	Error        string              `json:"error,omitempty"`
	NotLinked    bool                `json:"notLinked,omitempty"`
}

func failure(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Orchestrator executes the calendar operation implied by an intent. Every
// intent with a known action produces exactly one Result; errors become
// Result.Error, never panics or propagated failures.
type Orchestrator struct {
	provider         Provider
	home             *time.Location
	maxListResults   int
	searchWindowDays int
	now              func() time.Time
	log              zerolog.Logger
}

// Config configures an Orchestrator.
type Config struct {
	Provider         Provider
	Home             *time.Location
	MaxListResults   int
	SearchWindowDays int
	Now              func() time.Time // test hook, defaults to time.Now
	Logger           zerolog.Logger
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.MaxListResults <= 0 {
		cfg.MaxListResults = defaultMaxListResults
	}
	if cfg.SearchWindowDays <= 0 {
		cfg.SearchWindowDays = defaultSearchWindowDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Home == nil {
		cfg.Home = time.UTC
	}
	return &Orchestrator{
		provider:         cfg.Provider,
		home:             cfg.Home,
		maxListResults:   cfg.MaxListResults,
		searchWindowDays: cfg.SearchWindowDays,
		now:              cfg.Now,
		log:              cfg.Logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Execute runs the operation for one intent against one user's calendar.
func (o *Orchestrator) Execute(ctx context.Context, userID int64, in intent.Intent) Result {
	// Local validation happens before any credential or provider work.
	switch in.Action {
	case intent.ActionCreateEvent:
		if in.Parameters.Summary == "" {
			return failure("I need a title for the event")
		}
		if in.Parameters.StartDateTime == "" {
			return failure("I need a start time for the event")
		}
	case intent.ActionUpdateEvent:
		if in.Parameters.SearchQuery == "" {
			return failure("I need to know which event to change")
		}
		if in.Parameters.Updates.IsEmpty() {
			return failure("I need to know what to change about the event")
		}
	case intent.ActionDeleteEvent:
		if in.Parameters.SearchQuery == "" {
			return failure("I need to know which event to cancel")
		}
	case intent.ActionReadEvents:
	default:
		return failure("I couldn't work out what you want to do")
	}

	cal, err := o.provider.CalendarFor(ctx, userID)
	if err != nil {
		if gcal.IsNotLinked(err) {
			return Result{NotLinked: true, Error: "Your Google Calendar isn't linked yet"}
		}
		o.log.Error().Err(err).Int64("user_id", userID).Msg("calendar unavailable")
		return failure("I couldn't reach your calendar")
	}

	switch in.Action {
	case intent.ActionReadEvents:
		return o.readEvents(ctx, cal, in.Parameters)
	case intent.ActionCreateEvent:
		return o.createEvent(ctx, cal, in.Parameters)
	case intent.ActionUpdateEvent:
		return o.updateEvent(ctx, cal, in.Parameters)
	default:
		return o.deleteEvent(ctx, cal, in.Parameters)
	}
}

// readWindow computes the [timeMin, timeMax] window with precedence
// date > specificDay > dateRange > default-today.
func (o *Orchestrator) readWindow(p intent.Parameters) (time.Time, time.Time) {
	now := o.now()

	if p.Date != "" {
		if d, err := timeutil.ParseDate(p.Date, o.home); err == nil {
			return timeutil.DayRange(d, o.home)
		}
		// Unparseable date degrades to today, matching the resolver's
		// soft-default policy.
	}

	if p.SpecificDay != "" {
		d, _ := timeutil.ResolveDay(p.SpecificDay, now, o.home)
		return timeutil.DayRange(d, o.home)
	}

	switch p.DateRange {
	case "week":
		return timeutil.LookaheadRange(now, 7, o.home)
	case "month":
		return timeutil.LookaheadRange(now, 30, o.home)
	}

	return timeutil.DayRange(now, o.home)
}

func (o *Orchestrator) readEvents(ctx context.Context, cal Calendar, p intent.Parameters) Result {
	timeMin, timeMax := o.readWindow(p)

	events, err := cal.ListRange(ctx, timeMin, timeMax, o.maxListResults)
	if err != nil {
		o.log.Warn().Err(err).Msg("list failed")
		return failure("I couldn't read your calendar")
	}

	return Result{Success: true, Events: events, Count: len(events)}
}

func (o *Orchestrator) createEvent(ctx context.Context, cal Calendar, p intent.Parameters) Result {
	start, err := timeutil.ParseDateTime(p.StartDateTime, o.home)
	if err != nil {
		// The model occasionally echoes the user's relative phrasing
		// ("tomorrow at 2pm") instead of an ISO datetime.
		resolved, ok := timeutil.Resolve(p.StartDateTime, o.now(), o.home)
		if !ok {
			return failure("I couldn't understand the start time %q", p.StartDateTime)
		}
		start = resolved
	}

	end := start.Add(defaultEventDuration)
	if p.EndDateTime != "" {
		if parsed, err := timeutil.ParseDateTime(p.EndDateTime, o.home); err == nil {
			end = parsed
		}
	}

	created, err := cal.Create(ctx, gcal.EventInput{
		Summary:     p.Summary,
		Description: p.Description,
		Location:    p.Location,
		StartTime:   start,
		EndTime:     end,
	})
	if err != nil {
		o.log.Warn().Err(err).Msg("create failed")
		return failure("I couldn't create the event")
	}

	return Result{Success: true, CreatedEvent: created}
}

// findTarget locates the event update/delete should act on: first match in
// the visible window, in the provider's listing order.
func (o *Orchestrator) findTarget(ctx context.Context, cal Calendar, query string) (*gcal.EventDetails, *Result) {
	timeMin, timeMax := timeutil.LookaheadRange(o.now(), o.searchWindowDays, o.home)

	matches, err := cal.Search(ctx, query, timeMin, timeMax)
	if err != nil {
		o.log.Warn().Err(err).Str("query", query).Msg("search failed")
		r := failure("I couldn't search your calendar")
		return nil, &r
	}
	if len(matches) == 0 {
		r := failure("No events found matching %q", query)
		return nil, &r
	}

	return &matches[0], nil
}

func (o *Orchestrator) updateEvent(ctx context.Context, cal Calendar, p intent.Parameters) Result {
	target, fail := o.findTarget(ctx, cal, p.SearchQuery)
	if fail != nil {
		return *fail
	}

	input, err := o.mergeUpdates(*target, p.Updates)
	if err != nil {
		return failure("%s", err.Error())
	}

	updated, err := cal.Update(ctx, target.ID, input)
	if err != nil {
		o.log.Warn().Err(err).Str("event_id", target.ID).Msg("update failed")
		return failure("I couldn't update %q", target.Summary)
	}

	return Result{Success: true, UpdatedEvent: updated}
}

// mergeUpdates lays the partial updates over the matched event's fields.
// When only the start moves, the original duration is preserved.
func (o *Orchestrator) mergeUpdates(target gcal.EventDetails, updates *intent.EventUpdates) (gcal.EventInput, error) {
	input := gcal.EventInput{
		Summary:     target.Summary,
		Description: target.Description,
		Location:    target.Location,
		StartTime:   target.StartTime,
	}

	duration := defaultEventDuration
	if target.EndTime != nil {
		duration = target.EndTime.Sub(target.StartTime)
		input.EndTime = *target.EndTime
	} else {
		input.EndTime = target.StartTime.Add(duration)
	}

	if updates.Summary != "" {
		input.Summary = updates.Summary
	}
	if updates.Location != "" {
		input.Location = updates.Location
	}
	if updates.Description != "" {
		input.Description = updates.Description
	}

	if updates.StartDateTime != "" {
		start, err := timeutil.ParseDateTime(updates.StartDateTime, o.home)
		if err != nil {
			return gcal.EventInput{}, fmt.Errorf("I couldn't understand the new start time %q", updates.StartDateTime)
		}
		input.StartTime = start
		input.EndTime = start.Add(duration)
	}

	if updates.EndDateTime != "" {
		end, err := timeutil.ParseDateTime(updates.EndDateTime, o.home)
		if err != nil {
			return gcal.EventInput{}, fmt.Errorf("I couldn't understand the new end time %q", updates.EndDateTime)
		}
		input.EndTime = end
	}

	return input, nil
}

func (o *Orchestrator) deleteEvent(ctx context.Context, cal Calendar, p intent.Parameters) Result {
	target, fail := o.findTarget(ctx, cal, p.SearchQuery)
	if fail != nil {
		return *fail
	}

	if err := cal.Delete(ctx, target.ID); err != nil {
		o.log.Warn().Err(err).Str("event_id", target.ID).Msg("delete failed")
		return failure("I couldn't cancel %q", target.Summary)
	}

	// Echo the deleted snapshot so the reply can say what went away.
	return Result{Success: true, DeletedEvent: target}
}
