package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendNotifier sends email notifications via Resend API
type ResendNotifier struct {
	client      *resend.Client
	fromAddress string
}

// NewResendNotifier creates a new Resend email notifier
func NewResendNotifier(apiKey, from string) *ResendNotifier {
	if apiKey == "" {
		return nil
	}
	return &ResendNotifier{
		client:      resend.NewClient(apiKey),
		fromAddress: from,
	}
}

// IsConfigured returns true if the notifier has server-side config.
// Safe on a nil receiver so a nil *ResendNotifier stored in the Notifier
// interface reports unconfigured instead of panicking.
func (r *ResendNotifier) IsConfigured() bool {
	return r != nil && r.client != nil && r.fromAddress != ""
}

// Name returns the notifier name
func (r *ResendNotifier) Name() string {
	return "resend"
}

// Send sends an email notification for an applied calendar change
func (r *ResendNotifier) Send(ctx context.Context, event *ChangeEvent, recipient string) error {
	if recipient == "" {
		return fmt.Errorf("no recipient specified")
	}

	params := &resend.SendEmailRequest{
		From:    r.fromAddress,
		To:      []string{recipient},
		Subject: subjectFor(event),
		Html:    r.formatEmailHTML(event),
	}

	_, err := r.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	return nil
}

func subjectFor(event *ChangeEvent) string {
	switch event.Action {
	case "updated":
		return fmt.Sprintf("Event Updated: %s", event.Summary)
	case "deleted":
		return fmt.Sprintf("Event Cancelled: %s", event.Summary)
	default:
		return fmt.Sprintf("Event Created: %s", event.Summary)
	}
}

// formatEmailHTML creates the HTML email body
func (r *ResendNotifier) formatEmailHTML(event *ChangeEvent) string {
	startTimeStr := event.StartTime.Format("Monday, January 2, 2006 at 3:04 PM")

	endTimeStr := ""
	if event.EndTime != nil {
		// If same day, just show the time
		if event.StartTime.Format("2006-01-02") == event.EndTime.Format("2006-01-02") {
			endTimeStr = fmt.Sprintf(" - %s", event.EndTime.Format("3:04 PM"))
		} else {
			endTimeStr = fmt.Sprintf(" - %s", event.EndTime.Format("Monday, January 2, 2006 at 3:04 PM"))
		}
	}

	locationHTML := ""
	if event.Location != "" {
		locationHTML = fmt.Sprintf(`<p style="margin: 8px 0;"><strong>Location:</strong> %s</p>`, event.Location)
	}

	descriptionHTML := ""
	if event.Description != "" {
		descriptionHTML = fmt.Sprintf(`<p style="margin: 16px 0;">%s</p>`, event.Description)
	}

	actionBadge := "Event Created"
	actionColor := "#28a745"
	switch event.Action {
	case "updated":
		actionBadge = "Event Updated"
		actionColor = "#ffc107"
	case "deleted":
		actionBadge = "Event Cancelled"
		actionColor = "#dc3545"
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
  <div style="background-color: white; border-radius: 8px; padding: 24px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
    <div style="margin-bottom: 16px;">
      <span style="background-color: %s; color: white; padding: 4px 12px; border-radius: 4px; font-size: 12px; font-weight: 600;">%s</span>
    </div>

    <h2 style="margin: 0 0 16px 0; color: #333;">%s</h2>

    <div style="background: #f8f9fa; padding: 16px; border-radius: 8px; margin: 16px 0; border-left: 4px solid #007bff;">
      <p style="margin: 8px 0;"><strong>Date:</strong> %s%s</p>
      %s
    </div>

    %s
  </div>
</body>
</html>`, actionColor, actionBadge, event.Summary, startTimeStr, endTimeStr, locationHTML, descriptionHTML)
}
