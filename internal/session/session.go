// Package session holds the bearer token of a signed-in user and persists it
// between CLI invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoSession is returned when an authenticated call is made without a token.
var ErrNoSession = errors.New("not signed in")

// Session is the credential returned by login or registration.
type Session struct {
	Token     string    `json:"access_token"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a session for a freshly issued token.
func New(token, email string) *Session {
	return &Session{Token: token, Email: email, CreatedAt: time.Now().UTC()}
}

// Valid reports whether the session carries a token.
func (s *Session) Valid() bool {
	return s != nil && s.Token != ""
}

// Authorize sets the Authorization header on an outgoing request.
func (s *Session) Authorize(req *http.Request) error {
	if !s.Valid() {
		return ErrNoSession
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	return nil
}

// Store persists one session as a JSON file readable only by the owner.
type Store struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewStore returns a store backed by path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// DefaultPath is ~/.futureproof/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".futureproof", "session.json"), nil
}

// Path returns the backing file.
func (st *Store) Path() string { return st.path }

// Load reads the stored session. It returns ErrNoSession when none is stored.
func (st *Store) Load() (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", st.path, err)
	}
	if !s.Valid() {
		return nil, ErrNoSession
	}
	return &s, nil
}

// Save writes the session, replacing any previous one.
func (st *Store) Save(s *Session) error {
	if !s.Valid() {
		return ErrNoSession
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(st.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	st.logger.Debug("session saved", zap.String("path", st.path), zap.String("email", s.Email))
	return nil
}

// Clear removes the stored session. Clearing an absent session is not an error.
func (st *Store) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	st.logger.Debug("session cleared", zap.String("path", st.path))
	return nil
}
