package whatsapp

import (
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/benmgr/wooster/internal/source"
)

type Handler struct {
	messageChan chan source.Message
	log         zerolog.Logger
}

func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{
		messageChan: make(chan source.Message, 100),
		log:         logger,
	}
}

func (h *Handler) MessageChan() <-chan source.Message {
	return h.messageChan
}

func (h *Handler) HandleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		h.handleMessage(v)
	}
}

func (h *Handler) handleMessage(msg *events.Message) {
	text := extractText(msg)
	if text == "" {
		return
	}

	// Only process direct messages, skip groups
	if msg.Info.IsGroup {
		return
	}

	sender := msg.Info.Sender

	h.log.Debug().
		Str("sender", sender.User).
		Str("text", text).
		Msg("whatsapp message received")

	select {
	case h.messageChan <- source.Message{
		SourceType: source.SourceTypeWhatsApp,
		Identifier: sender.User,
		SenderID:   sender.String(),
		SenderName: msg.Info.PushName,
		Text:       text,
		Timestamp:  msg.Info.Timestamp,
	}:
	default:
		h.log.Warn().Msg("message channel full, dropping message")
	}
}

func extractText(msg *events.Message) string {
	m := msg.Message

	if m.GetConversation() != "" {
		return m.GetConversation()
	}

	if ext := m.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}

	if img := m.GetImageMessage(); img != nil && img.GetCaption() != "" {
		return "[Image] " + img.GetCaption()
	}

	if vid := m.GetVideoMessage(); vid != nil && vid.GetCaption() != "" {
		return "[Video] " + vid.GetCaption()
	}

	if doc := m.GetDocumentMessage(); doc != nil {
		return "[Document] " + doc.GetFileName()
	}

	return ""
}
