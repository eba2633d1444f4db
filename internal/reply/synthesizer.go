package reply

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmgr/wooster/internal/intent"
	"github.com/benmgr/wooster/internal/orchestrator"
)

const defaultTimeout = 30 * time.Second

// PersonaPrompt is the fixed instruction for reply generation.
const PersonaPrompt = `You are a friendly personal calendar assistant chatting with your user.

You will receive a JSON object describing a calendar operation that was just performed on the user's behalf: the action, the parameters extracted from their message, and the structured result.

Write the short chat reply the user should see:
- One or two sentences, conversational, warm but not gushing. Emoji are fine but use them sparingly.
- For read_events, summarize the schedule: event titles and times, or say the calendar is clear.
- For create/update/delete, confirm what happened, naming the event and its time where known.
- If the result indicates failure, apologize briefly and relay the problem in plain words.
- Never mention JSON, IDs, or that an operation was "executed".

Respond with the reply text only.`

// UnknownReply is sent when the classifier could not map the message to any
// calendar action.
const UnknownReply = "I'm not sure what you'd like me to do. You can ask me things like " +
	`"what's on my calendar tomorrow?", "schedule lunch with Alex friday at noon", ` +
	`"move my dentist appointment to 4pm" or "cancel the standup".`

// Completer is the language-model capability the synthesizer delegates to.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Synthesizer turns an operation result into the natural-language reply.
// The primary path is one completion call; any failure there drops to a
// deterministic template that cannot fail.
type Synthesizer struct {
	llm     Completer
	home    *time.Location
	timeout time.Duration
	log     zerolog.Logger
}

// NewSynthesizer creates a synthesizer. llm may be nil, in which case every
// reply comes from the fallback templates.
func NewSynthesizer(llm Completer, home *time.Location, timeout time.Duration, log zerolog.Logger) *Synthesizer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if home == nil {
		home = time.UTC
	}
	return &Synthesizer{
		llm:     llm,
		home:    home,
		timeout: timeout,
		log:     log.With().Str("component", "synthesizer").Logger(),
	}
}

// Synthesize produces the outbound reply text for one operation result.
func (s *Synthesizer) Synthesize(ctx context.Context, action intent.Action, params intent.Parameters, result orchestrator.Result) string {
	if s.llm == nil {
		return Fallback(action, result)
	}

	payload, err := json.Marshal(struct {
		Action     intent.Action       `json:"action"`
		Parameters intent.Parameters   `json:"parameters"`
		Result     orchestrator.Result `json:"result"`
	}{action, params, result})
	if err != nil {
		return Fallback(action, result)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "Current time: %s\n\n", time.Now().In(s.home).Format("2006-01-02 15:04 (Monday)"))
	b.Write(payload)
	b.WriteString("\n\nWrite the reply.")

	text, err := s.llm.Complete(ctx, PersonaPrompt, b.String())
	if err != nil {
		s.log.Warn().Err(err).Msg("reply generation failed, using fallback")
		return Fallback(action, result)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Fallback(action, result)
	}
	return text
}

// Fallback is the deterministic template reply. It is the terminal safety net
// for the pipeline and must never fail.
func Fallback(action intent.Action, result orchestrator.Result) string {
	if !result.Success {
		if result.NotLinked {
			return "Your Google Calendar isn't linked yet. Open the linking page to connect it, then try again."
		}
		if result.Error != "" {
			return result.Error
		}
		return "Sorry, something went wrong. Please try again."
	}

	switch action {
	case intent.ActionReadEvents:
		return fmt.Sprintf("Found %d event(s).", result.Count)
	case intent.ActionCreateEvent:
		return "Done! Your event has been added to the calendar."
	case intent.ActionUpdateEvent:
		return "Done! Your event has been updated."
	case intent.ActionDeleteEvent:
		return "Done! The event has been cancelled."
	default:
		return "All done."
	}
}
