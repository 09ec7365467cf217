// Package state holds the in-memory client state of one loaded session: the
// authentication token, the logged-in user's profile, the user directory,
// the credential tree and the ephemeral selections. Only the orchestrator
// writes to it; everything else reads settled values.
package state

import (
	"sync"

	"github.com/atinyakov/credkeeper/internal/models"
)

// Session holds the current token and the profile it belongs to.
// An empty token means "not authenticated".
type Session struct {
	mu      sync.RWMutex
	token   string
	profile models.UserProfile
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile returns a copy of the current user's profile.
func (s *Session) Profile() models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// Snapshot returns token and profile read under one lock.
func (s *Session) Snapshot() (string, models.UserProfile) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.profile.Clone()
}

// LoggedIn reports whether a token is held.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Set replaces token and profile together.
func (s *Session) Set(token string, profile models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.profile = profile.Clone()
}

// Clear resets the session to the logged-out sentinel values.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.profile = models.UserProfile{}
}
