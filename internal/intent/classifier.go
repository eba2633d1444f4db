package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmgr/wooster/internal/claude"
)

const defaultTimeout = 30 * time.Second

// Completer is the language-model capability the classifier delegates to.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Classifier maps a raw utterance to an Intent via one completion call.
// Every failure mode (call error, timeout, malformed output) degrades to the
// unknown intent; Classify never returns an error.
type Classifier struct {
	llm     Completer
	home    *time.Location
	timeout time.Duration
	log     zerolog.Logger
}

// NewClassifier creates a classifier bound to the home timezone.
func NewClassifier(llm Completer, home *time.Location, timeout time.Duration, log zerolog.Logger) *Classifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Classifier{
		llm:     llm,
		home:    home,
		timeout: timeout,
		log:     log.With().Str("component", "classifier").Logger(),
	}
}

// Classify resolves the utterance into an intent, grounding relative dates on
// the reference instant in the home zone.
func (c *Classifier) Classify(ctx context.Context, utterance string, ref time.Time) Intent {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.llm.Complete(ctx, SystemPrompt, c.buildUserPrompt(utterance, ref))
	if err != nil {
		c.log.Warn().Err(err).Msg("classification call failed")
		return Unknown()
	}

	var in Intent
	if err := json.Unmarshal([]byte(claude.ExtractJSON(raw)), &in); err != nil {
		c.log.Warn().Err(err).Str("response", raw).Msg("could not parse classification")
		return Unknown()
	}

	switch in.Action {
	case ActionReadEvents, ActionCreateEvent, ActionUpdateEvent, ActionDeleteEvent:
		return in
	default:
		return Unknown()
	}
}

func (c *Classifier) buildUserPrompt(utterance string, ref time.Time) string {
	var b strings.Builder

	local := ref.In(c.home)
	fmt.Fprintf(&b, "Current time: %s\n", local.Format("2006-01-02 15:04 (Monday)"))
	fmt.Fprintf(&b, "Timezone: %s\n\n", c.home.String())

	b.WriteString("User message:\n")
	b.WriteString(utterance)
	b.WriteString("\n\nClassify this message and respond with your JSON object.")

	return b.String()
}
