package whatsapp

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func newTextEvent(senderUser, text string, isGroup bool) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Sender:  types.JID{User: senderUser, Server: types.DefaultUserServer},
				IsGroup: isGroup,
			},
			PushName:  "Test Sender",
			Timestamp: time.Now(),
		},
		Message: &waE2E.Message{
			Conversation: proto.String(text),
		},
	}
}

func TestHandlerForwardsDirectMessages(t *testing.T) {
	h := NewHandler(zerolog.Nop())

	h.HandleEvent(newTextEvent("15551234567", "schedule lunch tomorrow", false))

	select {
	case msg := <-h.MessageChan():
		assert.Equal(t, "15551234567", msg.Identifier)
		assert.Equal(t, "schedule lunch tomorrow", msg.Text)
		assert.Equal(t, "Test Sender", msg.SenderName)
	default:
		t.Fatal("expected a message on the channel")
	}
}

func TestHandlerSkipsGroupMessages(t *testing.T) {
	h := NewHandler(zerolog.Nop())

	h.HandleEvent(newTextEvent("15551234567", "hello group", true))

	select {
	case msg := <-h.MessageChan():
		t.Fatalf("group message should not be forwarded, got %q", msg.Text)
	default:
	}
}

func TestHandlerSkipsEmptyMessages(t *testing.T) {
	h := NewHandler(zerolog.Nop())

	h.HandleEvent(&events.Message{
		Info:    types.MessageInfo{Timestamp: time.Now()},
		Message: &waE2E.Message{},
	})

	select {
	case <-h.MessageChan():
		t.Fatal("empty message should not be forwarded")
	default:
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		msg  *waE2E.Message
		want string
	}{
		{
			name: "conversation",
			msg:  &waE2E.Message{Conversation: proto.String("plain text")},
			want: "plain text",
		},
		{
			name: "extended text",
			msg: &waE2E.Message{
				ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("quoted reply")},
			},
			want: "quoted reply",
		},
		{
			name: "image caption",
			msg: &waE2E.Message{
				ImageMessage: &waE2E.ImageMessage{Caption: proto.String("look at this")},
			},
			want: "[Image] look at this",
		},
		{
			name: "no text",
			msg:  &waE2E.Message{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractText(&events.Message{Message: tt.msg})
			require.Equal(t, tt.want, got)
		})
	}
}
