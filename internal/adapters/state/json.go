// Package state provides the persistence adapters for registry, history and
// UI snapshots. Each logical namespace is saved and loaded independently so
// corruption in one partition never affects the others.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio/v2"
)

// JSONStore persists each namespace as one JSON file under a directory.
// Writes are atomic (write-to-temp + rename), so readers never observe a
// torn file.
type JSONStore struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewJSONStore creates a JSON file store rooted at dir.
func NewJSONStore(dir string, logger *slog.Logger) (*JSONStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &JSONStore{dir: dir, logger: logger}, nil
}

// Save persists value under the namespace.
func (s *JSONStore) Save(namespace string, value any) error {
	path, err := s.path(namespace)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling namespace %q: %w", namespace, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing namespace %q: %w", namespace, err)
	}
	return nil
}

// Load reads the namespace into `into`. Absent or unreadable snapshots
// report (false, nil); deserialization failures are logged, never returned.
func (s *JSONStore) Load(namespace string, into any) (bool, error) {
	path, err := s.path(namespace)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	data, readErr := os.ReadFile(path)
	s.mu.Unlock()
	if readErr != nil {
		if errors.Is(readErr, fs.ErrNotExist) {
			return false, nil
		}
		s.logger.Warn("state: unreadable namespace, treating as absent",
			slog.String("namespace", namespace),
			slog.String("error", readErr.Error()))
		return false, nil
	}

	if err := json.Unmarshal(data, into); err != nil {
		s.logger.Warn("state: corrupt namespace, treating as absent",
			slog.String("namespace", namespace),
			slog.String("error", err.Error()))
		return false, nil
	}
	return true, nil
}

// Delete removes a single namespace file.
func (s *JSONStore) Delete(namespace string) error {
	path, err := s.path(namespace)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting namespace %q: %w", namespace, err)
	}
	return nil
}

// Reset removes every namespace file in the store directory.
func (s *JSONStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading state directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// path validates the namespace and maps it to its file.
func (s *JSONStore) path(namespace string) (string, error) {
	if namespace == "" || strings.ContainsAny(namespace, `/\.`) {
		return "", fmt.Errorf("invalid namespace %q", namespace)
	}
	return filepath.Join(s.dir, namespace+".json"), nil
}
