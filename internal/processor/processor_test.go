package processor_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/benmgr/wooster/internal/database"
	"github.com/benmgr/wooster/internal/gcal"
	"github.com/benmgr/wooster/internal/intent"
	"github.com/benmgr/wooster/internal/orchestrator"
	"github.com/benmgr/wooster/internal/processor"
	"github.com/benmgr/wooster/internal/reply"
	"github.com/benmgr/wooster/internal/source"
	"github.com/benmgr/wooster/internal/testutil"
)

// Saturday morning UTC, fixed so relative dates resolve deterministically.
var refNow = time.Date(2024, 11, 23, 9, 0, 0, 0, time.UTC)

type recordingResponder struct {
	sent []string
	to   []string
	err  error
}

func (r *recordingResponder) SendText(_ context.Context, address, text string) error {
	if r.err != nil {
		return r.err
	}
	r.to = append(r.to, address)
	r.sent = append(r.sent, text)
	return nil
}

type pipeline struct {
	proc      *processor.Processor
	completer *testutil.MockCompleter
	calendar  *testutil.MockCalendar
	responder *recordingResponder
	db        *database.DB
}

// newPipeline wires a full pipeline with a scripted language model, a mock
// calendar, and template-only replies.
func newPipeline(t *testing.T, provider orchestrator.Provider) *pipeline {
	t.Helper()

	db := database.NewTestDB(t)
	completer := &testutil.MockCompleter{}
	calendar := &testutil.MockCalendar{}
	if provider == nil {
		provider = testutil.CalendarProvider(calendar)
	}
	responder := &recordingResponder{}

	classifier := intent.NewClassifier(completer, time.UTC, time.Second, zerolog.Nop())
	orch := orchestrator.New(orchestrator.Config{
		Provider: provider,
		Home:     time.UTC,
		Now:      func() time.Time { return refNow },
		Logger:   zerolog.Nop(),
	})
	synth := reply.NewSynthesizer(nil, time.UTC, time.Second, zerolog.Nop())

	proc := processor.New(processor.Config{
		Users:      db,
		Classifier: classifier,
		Executor:   orch,
		Replier:    synth,
		Responder:  responder,
		BaseURL:    "https://wooster.example.com",
		Now:        func() time.Time { return refNow },
		Logger:     zerolog.Nop(),
	})

	return &pipeline{proc: proc, completer: completer, calendar: calendar, responder: responder, db: db}
}

func inbound(text string) source.Message {
	return source.Message{
		SourceType: source.SourceTypeWhatsApp,
		Identifier: "15551234567",
		SenderID:   "15551234567@s.whatsapp.net",
		SenderName: "Bertie",
		Text:       text,
		Timestamp:  refNow,
	}
}

func TestReadTodayEndToEnd(t *testing.T) {
	p := newPipeline(t, nil)

	p.completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"action":"read_events","parameters":{}}`, nil)
	events := []gcal.EventDetails{
		testutil.Event("ev1", "Standup", refNow.Add(time.Hour)),
		testutil.Event("ev2", "Dentist", refNow.Add(4*time.Hour)),
	}
	p.calendar.On("ListRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(events, nil)

	require.NoError(t, p.proc.ProcessMessage(context.Background(), inbound("what's on my calendar today?")))

	require.Len(t, p.responder.sent, 1)
	assert.Equal(t, "Found 2 event(s).", p.responder.sent[0])
	assert.Equal(t, "15551234567@s.whatsapp.net", p.responder.to[0])
}

func TestCreateEventEndToEnd(t *testing.T) {
	p := newPipeline(t, nil)

	p.completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"action":"create_event","parameters":{"summary":"Lunch with Alex","startDateTime":"2024-11-25T12:00:00"}}`, nil)
	created := testutil.Event("ev1", "Lunch with Alex", time.Date(2024, 11, 25, 12, 0, 0, 0, time.UTC))
	p.calendar.On("Create", mock.Anything, mock.Anything).Return(&created, nil)

	require.NoError(t, p.proc.ProcessMessage(context.Background(), inbound("schedule lunch with Alex monday at noon")))

	require.Len(t, p.responder.sent, 1)
	assert.Equal(t, "Done! Your event has been added to the calendar.", p.responder.sent[0])
	p.calendar.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotLinkedReplyIncludesLink(t *testing.T) {
	p := newPipeline(t, testutil.NotLinkedProvider())

	p.completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"action":"read_events","parameters":{}}`, nil)

	require.NoError(t, p.proc.ProcessMessage(context.Background(), inbound("what's on today?")))

	require.Len(t, p.responder.sent, 1)
	assert.Contains(t, p.responder.sent[0], "isn't linked yet")
	assert.Contains(t, p.responder.sent[0], "https://wooster.example.com/auth/google/start?user=")
}

func TestUnknownIntentRepliesWithHelp(t *testing.T) {
	p := newPipeline(t, nil)

	p.completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("model unavailable"))

	require.NoError(t, p.proc.ProcessMessage(context.Background(), inbound("how are you doing?")))

	require.Len(t, p.responder.sent, 1)
	assert.Equal(t, reply.UnknownReply, p.responder.sent[0])
	// The calendar is never touched for unknown intents
	p.calendar.AssertNotCalled(t, "ListRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCalendarFailureFallsBackToErrorReply(t *testing.T) {
	p := newPipeline(t, nil)

	p.completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"action":"read_events","parameters":{}}`, nil)
	p.calendar.On("ListRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, context.DeadlineExceeded)

	require.NoError(t, p.proc.ProcessMessage(context.Background(), inbound("what's on today?")))

	require.Len(t, p.responder.sent, 1)
	assert.Equal(t, "I couldn't read your calendar", p.responder.sent[0])
}

func TestConversationIsLogged(t *testing.T) {
	p := newPipeline(t, nil)

	p.completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("model unavailable"))

	require.NoError(t, p.proc.ProcessMessage(context.Background(), inbound("gibberish")))

	user, err := p.db.GetOrCreateUserByIdentifier("whatsapp", "15551234567", "")
	require.NoError(t, err)

	msgs, err := p.db.RecentMessages(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, database.DirectionOutbound, msgs[0].Direction)
	assert.Equal(t, database.DirectionInbound, msgs[1].Direction)
	assert.Equal(t, "gibberish", msgs[1].Text)
}

func TestDeliveryFailureSurfaces(t *testing.T) {
	p := newPipeline(t, nil)
	p.responder.err = fmt.Errorf("socket closed")

	p.completer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("model unavailable"))

	err := p.proc.ProcessMessage(context.Background(), inbound("hello"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send reply")
}
