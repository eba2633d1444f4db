package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmgr/wooster/internal/claude"
	"github.com/benmgr/wooster/internal/config"
	"github.com/benmgr/wooster/internal/database"
	"github.com/benmgr/wooster/internal/gcal"
	"github.com/benmgr/wooster/internal/intent"
	"github.com/benmgr/wooster/internal/notify"
	"github.com/benmgr/wooster/internal/orchestrator"
	"github.com/benmgr/wooster/internal/processor"
	"github.com/benmgr/wooster/internal/reply"
	"github.com/benmgr/wooster/internal/server"
	"github.com/benmgr/wooster/internal/timeutil"
	"github.com/benmgr/wooster/internal/whatsapp"
)

func main() {
	cfg := config.LoadFromEnv()
	log := newLogger(cfg.Debug)

	if cfg.AnthropicAPIKey == "" {
		log.Fatal().Msg("ANTHROPIC_API_KEY is required")
	}

	home, fellBack := timeutil.ResolveLocation(cfg.HomeTimezone)
	if fellBack {
		log.Warn().Str("timezone", cfg.HomeTimezone).Msg("unknown timezone, falling back to UTC")
	}
	llmTimeout := time.Duration(cfg.LLMTimeoutSecs) * time.Second

	db, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	llm := claude.NewClient(cfg.AnthropicAPIKey, cfg.ClaudeModel, cfg.ClaudeTemperature, cfg.ClaudeFallbackURL)

	manager, err := gcal.NewManager(cfg.GoogleCredentialsFile, cfg.BaseURL, db, home)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize google calendar")
	}

	var emailNotifier notify.Notifier
	if r := notify.NewResendNotifier(cfg.ResendAPIKey, cfg.ResendFrom); r != nil {
		emailNotifier = r
	} else if cfg.NotifyRecipient != "" {
		log.Warn().Msg("RESEND_API_KEY not set, email notifications disabled")
	}
	notifyService := notify.NewService(emailNotifier, cfg.NotifyRecipient, log)

	srv := server.New(server.Config{
		Linker: manager,
		Tokens: db,
		Port:   cfg.HTTPPort,
		Logger: log,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	handler := whatsapp.NewHandler(log)
	waClient, err := whatsapp.NewClient(handler, cfg.WhatsAppDBPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize whatsapp client")
	}
	if err := waClient.Connect(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to whatsapp")
	}

	provider := orchestrator.ProviderFunc(func(ctx context.Context, userID int64) (orchestrator.Calendar, error) {
		return manager.CalendarFor(ctx, userID)
	})
	orch := orchestrator.New(orchestrator.Config{
		Provider:         provider,
		Home:             home,
		MaxListResults:   cfg.MaxListResults,
		SearchWindowDays: cfg.SearchWindowDays,
		Logger:           log,
	})

	proc := processor.New(processor.Config{
		Users:         db,
		Classifier:    intent.NewClassifier(llm, home, llmTimeout, log),
		Executor:      orch,
		Replier:       reply.NewSynthesizer(llm, home, llmTimeout, log),
		Responder:     waClient,
		NotifyService: notifyService,
		MsgChan:       handler.MessageChan(),
		BaseURL:       cfg.BaseURL,
		WorkerCount:   cfg.WorkerCount,
		Logger:        log,
	})
	proc.Start()

	log.Info().
		Str("timezone", home.String()).
		Str("model", cfg.ClaudeModel).
		Msg("wooster is ready")

	waitForShutdown(log, proc, srv, waClient)
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func waitForShutdown(log zerolog.Logger, proc *processor.Processor, srv *server.Server, waClient *whatsapp.Client) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")

	proc.Stop()
	waClient.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}
}
