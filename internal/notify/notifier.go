package notify

import (
	"context"
	"time"
)

// ChangeEvent describes a calendar change that was applied on behalf of a user.
type ChangeEvent struct {
	Action      string // created, updated, deleted
	Summary     string
	Location    string
	Description string
	StartTime   time.Time
	EndTime     *time.Time
	UserName    string
}

// Notifier delivers a calendar change notice to a specific recipient
type Notifier interface {
	// Send delivers a notification for a change to the specified recipient
	Send(ctx context.Context, event *ChangeEvent, recipient string) error
	// Name returns the notifier type name (for logging)
	Name() string
	// IsConfigured returns true if the notifier has server-side config
	IsConfigured() bool
}
