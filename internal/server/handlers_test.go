package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLinker struct {
	exchanged map[int64]string
	exchErr   error
}

func (f *fakeLinker) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (f *fakeLinker) ExchangeCode(_ context.Context, userID int64, code string) error {
	if f.exchErr != nil {
		return f.exchErr
	}
	if f.exchanged == nil {
		f.exchanged = make(map[int64]string)
	}
	f.exchanged[userID] = code
	return nil
}

type fakeTokenDeleter struct {
	deleted []int64
}

func (f *fakeTokenDeleter) DeleteGoogleToken(userID int64) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

func newTestServer() (*Server, *fakeLinker, *fakeTokenDeleter) {
	linker := &fakeLinker{}
	tokens := &fakeTokenDeleter{}
	s := New(Config{Linker: linker, Tokens: tokens, Port: 0, Logger: zerolog.Nop()})
	return s, linker, tokens
}

func (s *Server) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	s, _, _ := newTestServer()

	rec := s.serve(httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestAuthStartRedirectsToGoogle(t *testing.T) {
	s, _, _ := newTestServer()

	rec := s.serve(httptest.NewRequest("GET", "/auth/google/start?user=7", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "accounts.google.com")
	assert.Contains(t, location, "state=")
}

func TestAuthStartRejectsBadUser(t *testing.T) {
	s, _, _ := newTestServer()

	for _, target := range []string{"/auth/google/start", "/auth/google/start?user=abc", "/auth/google/start?user=-1"} {
		rec := s.serve(httptest.NewRequest("GET", target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestAuthFlowRoundTrip(t *testing.T) {
	s, linker, _ := newTestServer()

	rec := s.serve(httptest.NewRequest("GET", "/auth/google/start?user=42", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	redirect, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := redirect.Query().Get("state")
	require.NotEmpty(t, state)

	rec = s.serve(httptest.NewRequest("GET", "/auth/google/callback?state="+state+"&code=authcode123", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Calendar linked!")
	assert.Equal(t, "authcode123", linker.exchanged[42])

	// State is single-use
	rec = s.serve(httptest.NewRequest("GET", "/auth/google/callback?state="+state+"&code=again", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthCallbackUnknownState(t *testing.T) {
	s, _, _ := newTestServer()

	rec := s.serve(httptest.NewRequest("GET", "/auth/google/callback?state=nope&code=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthCallbackDeclined(t *testing.T) {
	s, _, _ := newTestServer()

	rec := s.serve(httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_denied")
}

func TestAuthCallbackExchangeFailure(t *testing.T) {
	s, linker, _ := newTestServer()
	linker.exchErr = fmt.Errorf("invalid grant")

	rec := s.serve(httptest.NewRequest("GET", "/auth/google/start?user=9", nil))
	redirect, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := redirect.Query().Get("state")

	rec = s.serve(httptest.NewRequest("GET", "/auth/google/callback?state="+state+"&code=bad", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUnlink(t *testing.T) {
	s, _, tokens := newTestServer()

	rec := s.serve(httptest.NewRequest("POST", "/auth/google/unlink?user=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{5}, tokens.deleted)
}
