// Package credstore persists the session token and cached user profile on
// disk. It is the only durable state the client keeps: a single JSON file in
// the user's config directory, mode 0600.
package credstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"patientcall/internal/apperr"
	"patientcall/internal/models"
)

const fileName = "credentials.json"

// Credentials holds the two persisted entries: the opaque bearer token and
// the serialized user record. Both must be present for a session to count as
// authenticated.
type Credentials struct {
	Token string       `json:"token,omitempty"`
	User  *models.User `json:"user,omitempty"`
}

func (c Credentials) Complete() bool {
	return c.Token != "" && c.User != nil
}

// Store serializes access with a mutex: the session manager and the request
// signing step both touch the file and expect non-overlapping reads/writes.
type Store struct {
	mu   sync.Mutex
	dir  string
	path string
}

func NewStore(dir string) *Store {
	return &Store{
		dir:  dir,
		path: filepath.Join(dir, fileName),
	}
}

// Load reads the persisted credentials. A missing file is not an error; it
// yields empty credentials. Unreadable or corrupt contents surface as a
// storage error for the caller to classify.
func (s *Store) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, apperr.Wrap(apperr.KindStorage, "read credentials", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, apperr.Wrap(apperr.KindStorage, "decode credentials", err)
	}
	return creds, nil
}

// Token returns the persisted bearer token, empty when absent.
func (s *Store) Token() (string, error) {
	creds, err := s.Load()
	if err != nil {
		return "", err
	}
	return creds.Token, nil
}

func (s *Store) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return apperr.Wrap(apperr.KindStorage, "create credentials dir", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "encode credentials", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return apperr.Wrap(apperr.KindStorage, "write credentials", err)
	}
	return nil
}

// Clear removes the credentials file. Clearing an already-empty store
// succeeds.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Wrap(apperr.KindStorage, "clear credentials", err)
	}
	return nil
}
