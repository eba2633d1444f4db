package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const stateTTL = 10 * time.Minute

// Linker drives the Google OAuth linking flow.
type Linker interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, userID int64, code string) error
}

// TokenDeleter removes stored calendar credentials.
type TokenDeleter interface {
	DeleteGoogleToken(userID int64) error
}

// Server exposes the HTTP surface: a health check and the OAuth linking
// endpoints users open from chat.
type Server struct {
	linker  Linker
	tokens  TokenDeleter
	httpSrv *http.Server
	port    int
	log     zerolog.Logger

	mu     sync.Mutex
	states map[string]pendingLink
}

type pendingLink struct {
	userID  int64
	expires time.Time
}

type Config struct {
	Linker Linker
	Tokens TokenDeleter
	Port   int
	Logger zerolog.Logger
}

func New(cfg Config) *Server {
	s := &Server{
		linker: cfg.Linker,
		tokens: cfg.Tokens,
		port:   cfg.Port,
		log:    cfg.Logger,
		states: make(map[string]pendingLink),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Google Calendar linking
	mux.HandleFunc("GET /auth/google/start", s.handleAuthStart)
	mux.HandleFunc("GET /auth/google/callback", s.handleAuthCallback)
	mux.HandleFunc("POST /auth/google/unlink", s.handleUnlink)
}

func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("starting HTTP server")
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
