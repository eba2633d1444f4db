package gcal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// ErrNotLinked means the user has no stored Google credentials. Callers must
// short-circuit with a "not linked" result instead of attempting the call.
var ErrNotLinked = errors.New("google calendar not linked")

// IsNotLinked returns true when a user has not connected a calendar yet.
func IsNotLinked(err error) bool {
	return errors.Is(err, ErrNotLinked)
}

// TokenStore persists per-user OAuth tokens.
type TokenStore interface {
	GetGoogleToken(userID int64) (*oauth2.Token, error)
	SaveGoogleToken(userID int64, token *oauth2.Token) error
}

// Manager holds the OAuth application config and hands out per-user calendars.
type Manager struct {
	config *oauth2.Config
	tokens TokenStore
	home   *time.Location
}

// NewManager creates a calendar manager from the app's OAuth credentials.
func NewManager(credentialsFile, baseURL string, tokens TokenStore, home *time.Location) (*Manager, error) {
	config, err := loadOAuthConfig(credentialsFile, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth config: %w", err)
	}

	return &Manager{
		config: config,
		tokens: tokens,
		home:   home,
	}, nil
}

// AuthURL returns the consent URL for linking, carrying the opaque state.
func (m *Manager) AuthURL(state string) string {
	return m.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode exchanges an authorization code and stores the token for the user.
func (m *Manager) ExchangeCode(ctx context.Context, userID int64, code string) error {
	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := m.tokens.SaveGoogleToken(userID, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// CalendarFor returns the user's calendar, refreshing credentials as needed.
// Returns ErrNotLinked when the user has no stored token.
func (m *Manager) CalendarFor(ctx context.Context, userID int64) (*UserCalendar, error) {
	token, err := m.tokens.GetGoogleToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if token == nil {
		return nil, ErrNotLinked
	}

	src := &savingTokenSource{
		userID: userID,
		store:  m.tokens,
		src:    m.config.TokenSource(ctx, token),
		last:   token,
	}

	service, err := calendar.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &UserCalendar{
		service:    service,
		calendarID: "primary",
		home:       m.home,
	}, nil
}

// savingTokenSource persists refreshed tokens back to the store so the next
// request starts from the fresh access token. Concurrent refreshes for the
// same user are last-writer-wins.
type savingTokenSource struct {
	userID int64
	store  TokenStore
	src    oauth2.TokenSource

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || token.AccessToken != s.last.AccessToken {
		// Best effort: a failed save only costs an extra refresh later.
		_ = s.store.SaveGoogleToken(s.userID, token)
		s.last = token
	}
	return token, nil
}
