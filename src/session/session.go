// Package session persists the login session between invocations.
//
// The session is created on login, read on every authenticated command and
// removed on logout. It lives in a single owner-only JSON file.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facetrace/cli/src/model"
)

// Session is the on-disk session document
type Session struct {
	APIKey              string `json:"api_key,omitempty"`
	Email               string `json:"email,omitempty"`
	APIURL              string `json:"api_url,omitempty"`
	OnboardingCompleted bool   `json:"onboarding_completed,omitempty"`
}

// Credential returns the bearer credential held by the session
func (s *Session) Credential() model.Credential {
	return model.Credential{Token: s.APIKey, Email: s.Email}
}

// Store reads and writes a session file
type Store struct {
	path string
}

// NewStore returns a store backed by path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the session file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the session. A missing file yields an empty session.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", s.path, err)
	}
	return &sess, nil
}

// Save writes the session with owner-only permissions
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(s.path, 0600)
}

// Clear removes the session file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// Credential returns the stored credential or model.ErrNotAuthenticated
func (s *Store) Credential() (model.Credential, error) {
	sess, err := s.Load()
	if err != nil {
		return model.Credential{}, err
	}
	cred := sess.Credential()
	if !cred.Valid() {
		return model.Credential{}, model.ErrNotAuthenticated
	}
	return cred, nil
}

// Login stores a fresh credential, keeping the other session fields
func (s *Store) Login(cred model.Credential, apiURL string) error {
	sess, err := s.Load()
	if err != nil {
		sess = &Session{}
	}
	sess.APIKey = cred.Token
	sess.Email = cred.Email
	if apiURL != "" {
		sess.APIURL = apiURL
	}
	sess.OnboardingCompleted = true
	return s.Save(sess)
}

// MarkOnboardingComplete records that the first run wizard has been shown
func (s *Store) MarkOnboardingComplete() error {
	sess, err := s.Load()
	if err != nil {
		return err
	}
	sess.OnboardingCompleted = true
	return s.Save(sess)
}

// IsFirstRun reports whether onboarding has not been completed yet
func (s *Store) IsFirstRun() bool {
	sess, err := s.Load()
	if err != nil {
		return false
	}
	return !sess.OnboardingCompleted
}
