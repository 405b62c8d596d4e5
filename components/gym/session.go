package gym

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"
)

// Logout reasons passed to session listeners.
const (
	LogoutRequested = "requested"
	LogoutExpired   = "expired"
	LogoutRejected  = "unauthorized"
)

// Session holds the bearer token and signed-in user. It is passed explicitly
// to the REST client and to controllers; there is no package-level session.
type Session struct {
	mu        sync.RWMutex
	token     string
	user      User
	now       func() time.Time
	listeners []func(reason string)
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// Set installs a token and user, typically after a successful login.
func (s *Session) Set(token string, user User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

// Token returns the bearer token, or "" when signed out or when the token's
// exp claim has passed. Opaque (non-JWT) tokens never expire locally.
func (s *Session) Token() string {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return ""
	}
	if exp, ok := tokenExpiry(token); ok && !s.now().Before(exp) {
		return ""
	}
	return token
}

// User returns the signed-in user.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.token != ""
}

// Authenticated reports whether a usable token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// ExpiresAt returns the token's exp claim when it has one.
func (s *Session) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	return tokenExpiry(token)
}

// OnLogout registers fn to run whenever the session is cleared.
func (s *Session) OnLogout(fn func(reason string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Clear signs the session out and notifies listeners. Clearing an empty
// session is a no-op.
func (s *Session) Clear(reason string) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = User{}
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(reason)
	}
}

// Snapshot returns the persisted form of the session.
func (s *Session) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionState{Token: s.token, User: s.user}
}

// Restore loads a persisted session. Expired tokens are discarded.
func (s *Session) Restore(state SessionState) bool {
	if state.Token == "" {
		return false
	}
	if exp, ok := tokenExpiry(state.Token); ok && !s.now().Before(exp) {
		return false
	}
	s.Set(state.Token, state.User)
	return true
}

func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// SessionState is the on-disk form of a session.
type SessionState struct {
	Token   string    `yaml:"token"`
	User    User      `yaml:"user"`
	SavedAt time.Time `yaml:"saved_at"`
}

// FileSessionStore persists a session as YAML, readable only by the owner.
type FileSessionStore struct {
	Path string
}

// Load reads the stored session. A missing file yields an empty state.
func (f FileSessionStore) Load() (SessionState, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return SessionState{}, nil
	}
	if err != nil {
		return SessionState{}, fmt.Errorf("gym: read session %s: %w", f.Path, err)
	}
	var state SessionState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return SessionState{}, fmt.Errorf("gym: decode session %s: %w", f.Path, err)
	}
	return state, nil
}

// Save writes state, creating parent directories.
func (f FileSessionStore) Save(state SessionState) error {
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now().UTC()
	}
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("gym: encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("gym: create session dir: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("gym: write session %s: %w", f.Path, err)
	}
	return nil
}

// Delete removes the stored session.
func (f FileSessionStore) Delete() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("gym: remove session %s: %w", f.Path, err)
	}
	return nil
}
