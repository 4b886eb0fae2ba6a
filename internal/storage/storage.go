// Package storage is a small persistent key-value store backed by a TOML
// file. It holds the API credential and UI preferences.
package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/oxprint/oxdash/internal/api"
	"github.com/oxprint/oxdash/internal/config"
)

const (
	// TokenKey holds the bearer token sent to the API.
	TokenKey = "oxprint_token"
	// ThemeKey holds the selected UI theme name.
	ThemeKey = "theme"
)

// Store reads and writes string values in a TOML file. Every Get reads the
// file again, so changes made by another process are seen immediately.
type Store struct {
	path string
}

// Ensure Store can act as the API credential source.
var _ api.TokenSource = (*Store)(nil)

// Open returns a Store for path. The file does not need to exist.
func Open(path string) (*Store, error) {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	return &Store{path: resolved}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value stored under key. Unreadable or invalid files are
// treated as empty.
func (s *Store) Get(key string) (string, bool) {
	values, err := s.load()
	if err != nil {
		log.Printf("storage read failed: %v", err)
		return "", false
	}
	value, ok := values[key]
	return value, ok
}

// Token implements api.TokenSource using TokenKey.
func (s *Store) Token() (string, bool) {
	value, ok := s.Get(TokenKey)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// Set stores value under key, creating the file and its directory as needed.
func (s *Store) Set(key, value string) error {
	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *Store) load() (map[string]string, error) {
	values := map[string]string{}
	bytes, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("read storage: %w", err)
	}
	if err := toml.Unmarshal(bytes, &values); err != nil {
		return nil, fmt.Errorf("parse storage: %w", err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	bytes, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal storage: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.toml")
	if err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(bytes); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	return nil
}
