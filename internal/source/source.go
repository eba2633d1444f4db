package source

import "time"

// SourceType identifies the messaging transport a message arrived on.
type SourceType string

const (
	SourceTypeWhatsApp SourceType = "whatsapp"
)

// Message represents an inbound chat message from any source.
type Message struct {
	SourceType SourceType
	Identifier string // WhatsApp JID user part
	SenderID   string // Full sender address, used for replies
	SenderName string
	Text       string
	Timestamp  time.Time
}
