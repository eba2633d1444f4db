package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleAuthStart begins the OAuth linking flow for a chat user and
// redirects to Google's consent page.
// GET /auth/google/start?user=<id>
func (s *Server) handleAuthStart(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "invalid or missing user parameter", http.StatusBadRequest)
		return
	}

	state := uuid.NewString()
	s.storeState(state, userID)

	http.Redirect(w, r, s.linker.AuthURL(state), http.StatusFound)
}

// handleAuthCallback completes the OAuth flow. The state parameter binds
// the callback to the chat user who started it.
// GET /auth/google/callback?state=<uuid>&code=<code>
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, fmt.Sprintf("authorization declined: %s", errMsg), http.StatusBadRequest)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		http.Error(w, "missing state or code parameter", http.StatusBadRequest)
		return
	}

	userID, ok := s.takeState(state)
	if !ok {
		http.Error(w, "unknown or expired state, start the linking flow again", http.StatusBadRequest)
		return
	}

	if err := s.linker.ExchangeCode(r.Context(), userID, code); err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("oauth code exchange failed")
		http.Error(w, "failed to complete linking, please try again", http.StatusInternalServerError)
		return
	}

	s.log.Info().Int64("user_id", userID).Msg("google calendar linked")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<html><body><h2>Calendar linked!</h2><p>You can close this page and go back to the chat.</p></body></html>`)
}

// handleUnlink drops the stored credentials for a user.
// POST /auth/google/unlink?user=<id>
func (s *Server) handleUnlink(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "invalid or missing user parameter", http.StatusBadRequest)
		return
	}

	if err := s.tokens.DeleteGoogleToken(userID); err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("failed to delete token")
		http.Error(w, "failed to unlink calendar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "unlinked"})
}

func (s *Server) storeState(state string, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop expired entries so abandoned flows don't accumulate
	now := time.Now()
	for k, v := range s.states {
		if now.After(v.expires) {
			delete(s.states, k)
		}
	}

	s.states[state] = pendingLink{userID: userID, expires: now.Add(stateTTL)}
}

func (s *Server) takeState(state string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.states[state]
	if !ok {
		return 0, false
	}
	delete(s.states, state)

	if time.Now().After(entry.expires) {
		return 0, false
	}
	return entry.userID, true
}
