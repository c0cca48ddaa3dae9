// Package history keeps the append-only, capacity-bounded log of completed
// analyses, newest first. Records are immutable once appended; the only
// removals are oldest-first eviction at capacity and an explicit clear.
package history

import (
	"log/slog"
	"sync"

	"github.com/fourpillars-ai/pillars/internal/core"
)

// Store is the analysis history log.
type Store struct {
	mu       sync.Mutex
	logger   *slog.Logger
	store    core.Store
	capacity int
	records  []core.AnalysisRecord // newest first
}

// New creates a history store with the given capacity (<=0 uses the
// default), restoring any persisted log.
func New(store core.Store, capacity int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if capacity <= 0 {
		capacity = core.DefaultHistoryCapacity
	}
	s := &Store{logger: logger, store: store, capacity: capacity}

	var saved []core.AnalysisRecord
	if found, err := store.Load(core.NamespaceHistory, &saved); err == nil && found {
		if len(saved) > capacity {
			saved = saved[:capacity]
		}
		s.records = saved
	}
	return s
}

// Append prepends a record, evicting the oldest entries beyond capacity.
func (s *Store) Append(record core.AnalysisRecord) {
	s.mu.Lock()
	s.records = append([]core.AnalysisRecord{record.Clone()}, s.records...)
	if len(s.records) > s.capacity {
		s.records = s.records[:s.capacity]
	}
	s.mu.Unlock()
	s.persist()
}

// List returns up to limit records, newest first. A non-positive limit
// returns everything.
func (s *Store) List(limit int) []core.AnalysisRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]core.AnalysisRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.records[i].Clone())
	}
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
	s.persist()
}

func (s *Store) persist() {
	s.mu.Lock()
	snapshot := make([]core.AnalysisRecord, len(s.records))
	copy(snapshot, s.records)
	s.mu.Unlock()
	if err := s.store.Save(core.NamespaceHistory, snapshot); err != nil {
		s.logger.Warn("history: persisting snapshot failed", slog.String("error", err.Error()))
	}
}
