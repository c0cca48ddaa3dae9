package state

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// SQLiteStore persists namespaces as rows in a single SQLite database.
type SQLiteStore struct {
	dbPath string
	db     *sql.DB
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at dbPath and runs
// migrations.
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	// WAL keeps concurrent readers cheap.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{dbPath: dbPath, db: db, logger: logger}
	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		version = 0
	}
	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}
	return nil
}

// Save persists value under the namespace.
func (s *SQLiteStore) Save(namespace string, value any) error {
	if namespace == "" {
		return fmt.Errorf("invalid namespace %q", namespace)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling namespace %q: %w", namespace, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`
		INSERT INTO namespaces (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		namespace, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing namespace %q: %w", namespace, err)
	}
	return nil
}

// Load reads the namespace into `into`. Missing rows and corrupt payloads
// both report (false, nil); corruption is logged.
func (s *SQLiteStore) Load(namespace string, into any) (bool, error) {
	s.mu.Lock()
	var payload []byte
	err := s.db.QueryRow("SELECT payload FROM namespaces WHERE name = ?", namespace).Scan(&payload)
	s.mu.Unlock()

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		s.logger.Warn("state: unreadable namespace, treating as absent",
			slog.String("namespace", namespace),
			slog.String("error", err.Error()))
		return false, nil
	}

	if err := json.Unmarshal(payload, into); err != nil {
		s.logger.Warn("state: corrupt namespace, treating as absent",
			slog.String("namespace", namespace),
			slog.String("error", err.Error()))
		return false, nil
	}
	return true, nil
}

// Delete removes a single namespace row.
func (s *SQLiteStore) Delete(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM namespaces WHERE name = ?", namespace); err != nil {
		return fmt.Errorf("deleting namespace %q: %w", namespace, err)
	}
	return nil
}

// Reset removes every namespace row.
func (s *SQLiteStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM namespaces"); err != nil {
		return fmt.Errorf("resetting namespaces: %w", err)
	}
	return nil
}
