package intent

// Action is the calendar operation implied by an utterance.
type Action string

const (
	ActionReadEvents  Action = "read_events"
	ActionCreateEvent Action = "create_event"
	ActionUpdateEvent Action = "update_event"
	ActionDeleteEvent Action = "delete_event"
	ActionUnknown     Action = "unknown"
)

// EventUpdates is the partial set of event fields an update may carry.
type EventUpdates struct {
	Summary       string `json:"summary,omitempty"`
	Location      string `json:"location,omitempty"`
	Description   string `json:"description,omitempty"`
	StartDateTime string `json:"startDateTime,omitempty"`
	EndDateTime   string `json:"endDateTime,omitempty"`
}

// IsEmpty reports whether no field is set.
func (u *EventUpdates) IsEmpty() bool {
	if u == nil {
		return true
	}
	return u.Summary == "" && u.Location == "" && u.Description == "" &&
		u.StartDateTime == "" && u.EndDateTime == ""
}

// Parameters is the action-specific parameter record. Which fields are
// meaningful depends on the action; nothing here is validated, that happens
// at the point of use in the orchestrator.
type Parameters struct {
	// read_events: at most one of Date/SpecificDay/DateRange is authoritative;
	// all absent means "today".
	Date        string `json:"date,omitempty"`        // ISO date, e.g. 2024-11-24
	DateRange   string `json:"dateRange,omitempty"`   // "day", "week" or "month"
	SpecificDay string `json:"specificDay,omitempty"` // weekday name

	// create_event
	Summary       string `json:"summary,omitempty"`
	Location      string `json:"location,omitempty"`
	Description   string `json:"description,omitempty"`
	StartDateTime string `json:"startDateTime,omitempty"` // ISO datetime
	EndDateTime   string `json:"endDateTime,omitempty"`

	// update_event / delete_event
	SearchQuery string        `json:"searchQuery,omitempty"`
	Updates     *EventUpdates `json:"updates,omitempty"`
}

// Intent is the classifier's output: one action and its raw parameters.
// Created once per utterance, consumed immediately, never persisted.
type Intent struct {
	Action     Action     `json:"action"`
	Parameters Parameters `json:"parameters"`
}

// Unknown is the degraded intent every classification failure maps to.
func Unknown() Intent {
	return Intent{Action: ActionUnknown}
}
