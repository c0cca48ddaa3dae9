package state

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fourpillars-ai/pillars/internal/core"
)

// Backend names accepted by the factory.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// NewStore creates a Store for the configured backend. dir is the state
// directory; the SQLite backend stores its database there as state.db.
func NewStore(backend, dir string, logger *slog.Logger) (core.Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStore(dir, logger)
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "state.db"), logger)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", backend)
	}
}

// Closeable is an optional interface for stores that need cleanup.
type Closeable interface {
	Close() error
}

// CloseStore safely closes a Store if it implements Closeable.
func CloseStore(s core.Store) error {
	if closeable, ok := s.(Closeable); ok {
		return closeable.Close()
	}
	return nil
}
