package processor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmgr/wooster/internal/database"
	"github.com/benmgr/wooster/internal/gcal"
	"github.com/benmgr/wooster/internal/intent"
	"github.com/benmgr/wooster/internal/notify"
	"github.com/benmgr/wooster/internal/orchestrator"
	"github.com/benmgr/wooster/internal/reply"
	"github.com/benmgr/wooster/internal/source"
)

const (
	defaultWorkerCount    = 2
	defaultMessageTimeout = 60 * time.Second
)

// Classifier maps an utterance to a calendar intent.
type Classifier interface {
	Classify(ctx context.Context, utterance string, ref time.Time) intent.Intent
}

// Executor carries out a classified intent against the user's calendar.
type Executor interface {
	Execute(ctx context.Context, userID int64, in intent.Intent) orchestrator.Result
}

// Replier turns an executed operation into chat text.
type Replier interface {
	Synthesize(ctx context.Context, action intent.Action, params intent.Parameters, result orchestrator.Result) string
}

// Responder delivers reply text back to the chat the message came from.
type Responder interface {
	SendText(ctx context.Context, address, text string) error
}

// UserStore resolves chat identities and records conversation history.
type UserStore interface {
	GetOrCreateUserByIdentifier(sourceType, identifier, name string) (*database.User, error)
	LogMessage(userID int64, direction, text string) error
}

// Processor reads inbound chat messages and runs each through the
// classify/execute/reply pipeline.
type Processor struct {
	users         UserStore
	classifier    Classifier
	executor      Executor
	replier       Replier
	responder     Responder
	notifyService *notify.Service
	msgChan       <-chan source.Message
	baseURL       string
	workerCount   int
	now           func() time.Time
	log           zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config carries the processor's collaborators.
type Config struct {
	Users         UserStore
	Classifier    Classifier
	Executor      Executor
	Replier       Replier
	Responder     Responder
	NotifyService *notify.Service
	MsgChan       <-chan source.Message
	BaseURL       string
	WorkerCount   int
	Now           func() time.Time
	Logger        zerolog.Logger
}

// New creates a message processor.
func New(cfg Config) *Processor {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		users:         cfg.Users,
		classifier:    cfg.Classifier,
		executor:      cfg.Executor,
		replier:       cfg.Replier,
		responder:     cfg.Responder,
		notifyService: cfg.NotifyService,
		msgChan:       cfg.MsgChan,
		baseURL:       cfg.BaseURL,
		workerCount:   cfg.WorkerCount,
		now:           cfg.Now,
		log:           cfg.Logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start begins processing messages from the channel
func (p *Processor) Start() {
	p.log.Info().Int("workers", p.workerCount).Msg("message processor started")

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.processLoop()
	}
}

// Stop gracefully shuts down the processor
func (p *Processor) Stop() {
	p.cancel()
	p.wg.Wait()
	p.log.Info().Msg("message processor stopped")
}

func (p *Processor) processLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case msg, ok := <-p.msgChan:
			if !ok {
				p.log.Info().Msg("message channel closed")
				return
			}
			if err := p.ProcessMessage(p.ctx, msg); err != nil {
				p.log.Error().Err(err).Str("sender", msg.Identifier).Msg("failed to process message")
			}
		}
	}
}

// ProcessMessage runs a single inbound message through the pipeline and
// sends the reply. Classification and calendar failures produce a reply
// rather than an error; only identity and delivery problems surface here.
func (p *Processor) ProcessMessage(ctx context.Context, msg source.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultMessageTimeout)
	defer cancel()

	user, err := p.users.GetOrCreateUserByIdentifier(string(msg.SourceType), msg.Identifier, msg.SenderName)
	if err != nil {
		return fmt.Errorf("failed to resolve user: %w", err)
	}

	if err := p.users.LogMessage(user.ID, database.DirectionInbound, msg.Text); err != nil {
		p.log.Warn().Err(err).Msg("failed to log inbound message")
	}

	text := p.respondTo(ctx, user.ID, msg.Text)

	if err := p.users.LogMessage(user.ID, database.DirectionOutbound, text); err != nil {
		p.log.Warn().Err(err).Msg("failed to log outbound message")
	}

	if err := p.responder.SendText(ctx, msg.SenderID, text); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}

// respondTo produces the reply text for an utterance. It always returns
// something sendable.
func (p *Processor) respondTo(ctx context.Context, userID int64, utterance string) string {
	in := p.classifier.Classify(ctx, utterance, p.now())

	if in.Action == intent.ActionUnknown {
		return reply.UnknownReply
	}

	result := p.executor.Execute(ctx, userID, in)

	if result.NotLinked {
		return p.notLinkedReply(userID)
	}

	if result.Success {
		p.notifyChange(ctx, in.Action, result)
	}

	return p.replier.Synthesize(ctx, in.Action, in.Parameters, result)
}

func (p *Processor) notLinkedReply(userID int64) string {
	text := "Your Google Calendar isn't linked yet."
	if p.baseURL != "" {
		link := fmt.Sprintf("%s/auth/google/start?user=%d",
			strings.TrimRight(p.baseURL, "/"), userID)
		text += " Open this link to connect it: " + link
	}
	return text
}

// notifyChange emits a notification for calendar writes. Reads are quiet.
func (p *Processor) notifyChange(ctx context.Context, action intent.Action, result orchestrator.Result) {
	if p.notifyService == nil {
		return
	}

	var verb string
	var ev *gcal.EventDetails
	switch action {
	case intent.ActionCreateEvent:
		verb, ev = "created", result.CreatedEvent
	case intent.ActionUpdateEvent:
		verb, ev = "updated", result.UpdatedEvent
	case intent.ActionDeleteEvent:
		verb, ev = "deleted", result.DeletedEvent
	default:
		return
	}
	if ev == nil {
		return
	}

	p.notifyService.NotifyChange(ctx, &notify.ChangeEvent{
		Action:      verb,
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		StartTime:   ev.StartTime,
		EndTime:     ev.EndTime,
	})
}
