// Package session holds the authenticated session: token, role and the
// courier identity that gates courier-specific polling. The session is an
// explicit object set at login and cleared at logout, passed to whatever
// needs it, rather than ambient storage reads scattered across views.
//
// When "remember me" is chosen the session is persisted to
// ~/.config/dispatch/session.toml and survives restarts; otherwise it lives
// only in memory for the lifetime of the process.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultSessionPath = "~/.config/dispatch/session.toml"

type persisted struct {
	Token     string `toml:"token"`
	Role      string `toml:"role"`
	CourierID int64  `toml:"courier_id"`
}

// Session is safe for concurrent use; pollers read the token while the UI
// establishes or clears it.
type Session struct {
	mu        sync.RWMutex
	token     string
	role      string
	courierID int64
	remember  bool
	path      string
}

// DefaultPath returns the default session file path.
func DefaultPath() string {
	return defaultSessionPath
}

// Load builds a Session, restoring a remembered one from disk when present.
// A missing or unreadable file degrades to a logged-out session.
func Load(path string) *Session {
	resolved, err := resolvePath(path)
	if err != nil {
		return &Session{path: path}
	}

	s := &Session{path: resolved}

	file, err := os.Open(resolved)
	if err != nil {
		return s
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return s
	}

	var raw persisted
	if err := toml.Unmarshal(data, &raw); err != nil {
		return s
	}
	if strings.TrimSpace(raw.Token) == "" {
		return s
	}

	s.token = raw.Token
	s.role = raw.Role
	s.courierID = raw.CourierID
	s.remember = true
	return s
}

// Establish records a fresh login. With remember set the session is also
// written to disk; persistence failures are reported but the in-memory
// session stays valid either way.
func (s *Session) Establish(token, role string, courierID int64, remember bool) error {
	s.mu.Lock()
	s.token = token
	s.role = role
	s.courierID = courierID
	s.remember = remember
	path := s.path
	s.mu.Unlock()

	if !remember {
		// A previously remembered session must not outlive this login.
		_ = removeFile(path)
		return nil
	}
	return writeFile(path, persisted{Token: token, Role: role, CourierID: courierID})
}

// Clear logs out: wipes the in-memory session and removes any persisted copy.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.role = ""
	s.courierID = 0
	s.remember = false
	path := s.path
	s.mu.Unlock()

	_ = removeFile(path)
}

// Token implements api.TokenSource. Empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Role returns the role tag recorded at login.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// CourierID returns the courier identity, or zero for non-courier accounts.
// The courier-only pollers skip their work while this is zero.
func (s *Session) CourierID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.courierID
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Remembered reports whether the session is persisted across restarts.
func (s *Session) Remembered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remember
}

func writeFile(path string, raw persisted) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// The token is a credential; keep the file private.
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func removeFile(path string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultSessionPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
