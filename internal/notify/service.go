package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Service sends notices when the assistant changes the calendar.
// Errors are logged but never fail the calendar operation.
type Service struct {
	emailNotifier Notifier
	recipient     string
	log           zerolog.Logger
}

// NewService creates a notification service. A nil notifier or empty
// recipient disables delivery.
func NewService(emailNotifier Notifier, recipient string, logger zerolog.Logger) *Service {
	return &Service{
		emailNotifier: emailNotifier,
		recipient:     recipient,
		log:           logger,
	}
}

// NotifyChange sends a notification for an applied calendar change.
func (s *Service) NotifyChange(ctx context.Context, event *ChangeEvent) {
	if s == nil || event == nil {
		return
	}
	if s.recipient == "" || s.emailNotifier == nil || !s.emailNotifier.IsConfigured() {
		return
	}

	if err := s.emailNotifier.Send(ctx, event, s.recipient); err != nil {
		s.log.Warn().
			Err(err).
			Str("notifier", s.emailNotifier.Name()).
			Str("summary", event.Summary).
			Msg("notification delivery failed")
		return
	}

	s.log.Info().
		Str("notifier", s.emailNotifier.Name()).
		Str("action", event.Action).
		Str("summary", event.Summary).
		Msg("notification sent")
}

// IsEmailAvailable returns true if email notifications can be used
func (s *Service) IsEmailAvailable() bool {
	return s.emailNotifier != nil && s.emailNotifier.IsConfigured()
}
