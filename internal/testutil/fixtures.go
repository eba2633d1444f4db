package testutil

import (
	"time"

	"github.com/benmgr/wooster/internal/gcal"
)

// Event builds a one-hour test event starting at the given time.
func Event(id, summary string, start time.Time) gcal.EventDetails {
	end := start.Add(time.Hour)
	return gcal.EventDetails{
		ID:        id,
		Summary:   summary,
		StartTime: start,
		EndTime:   &end,
	}
}

// EventAt builds a test event with an explicit location.
func EventAt(id, summary, location string, start time.Time) gcal.EventDetails {
	e := Event(id, summary, start)
	e.Location = location
	return e
}
