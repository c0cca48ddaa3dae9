package state

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/fourpillars-ai/pillars/internal/core"
)

type snapshot struct {
	Records []core.AgentRecord `json:"records"`
	Note    string             `json:"note"`
}

func testSnapshot() snapshot {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return snapshot{
		Records: []core.AgentRecord{
			{ID: "finance", DisplayName: "Finance Agent", Status: core.AgentStatusActive, PerformanceScore: 91, UsageCount: 3, LastUsedAt: &now},
			{ID: "risk", DisplayName: "Risk Agent", Status: core.AgentStatusInactive},
		},
		Note: "round-trip",
	}
}

func newStores(t *testing.T) map[string]core.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	jsonStore, err := NewJSONStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"), logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]core.Store{
		"json":   jsonStore,
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(),
	}
}

func TestStore_RoundTripAllNamespaces(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			want := testSnapshot()
			for _, ns := range core.Namespaces() {
				if err := store.Save(ns, want); err != nil {
					t.Fatalf("Save(%q) error = %v", ns, err)
				}
				var got snapshot
				found, err := store.Load(ns, &got)
				if err != nil {
					t.Fatalf("Load(%q) error = %v", ns, err)
				}
				if !found {
					t.Fatalf("Load(%q) found = false, want true", ns)
				}
				if !reflect.DeepEqual(got, want) {
					t.Errorf("Load(%q) = %+v, want %+v", ns, got, want)
				}
			}
		})
	}
}

func TestStore_LoadAbsentNamespace(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			var got snapshot
			found, err := store.Load("never-saved", &got)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if found {
				t.Error("Load() found = true for absent namespace")
			}
		})
	}
}

func TestStore_ResetClearsEveryNamespace(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, ns := range core.Namespaces() {
				if err := store.Save(ns, testSnapshot()); err != nil {
					t.Fatalf("Save(%q) error = %v", ns, err)
				}
			}
			if err := store.Reset(); err != nil {
				t.Fatalf("Reset() error = %v", err)
			}
			for _, ns := range core.Namespaces() {
				var got snapshot
				found, err := store.Load(ns, &got)
				if err != nil {
					t.Fatalf("Load(%q) error = %v", ns, err)
				}
				if found {
					t.Errorf("Load(%q) found = true after Reset", ns)
				}
			}
		})
	}
}

func TestStore_DeleteIsIndependentPerNamespace(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Save(core.NamespaceAgents, testSnapshot()); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if err := store.Save(core.NamespaceHistory, testSnapshot()); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if err := store.Delete(core.NamespaceAgents); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}

			var got snapshot
			if found, _ := store.Load(core.NamespaceAgents, &got); found {
				t.Error("deleted namespace still present")
			}
			if found, _ := store.Load(core.NamespaceHistory, &got); !found {
				t.Error("sibling namespace lost by Delete")
			}
		})
	}
}

func TestJSONStore_CorruptFileTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewJSONStore(dir, logger)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "agents.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var got snapshot
	found, err := store.Load(core.NamespaceAgents, &got)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil on corruption", err)
	}
	if found {
		t.Error("Load() found = true for corrupt namespace")
	}

	// The corrupt partition must not block writes.
	if err := store.Save(core.NamespaceAgents, testSnapshot()); err != nil {
		t.Fatalf("Save() after corruption error = %v", err)
	}
	if found, _ := store.Load(core.NamespaceAgents, &got); !found {
		t.Error("Save() did not repair corrupt namespace")
	}
}

func TestJSONStore_RejectsPathTraversal(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	if err := store.Save("../evil", 1); err == nil {
		t.Error("Save() accepted traversal namespace")
	}
	if _, err := store.Load("a/b", &struct{}{}); err == nil {
		t.Error("Load() accepted traversal namespace")
	}
}

func TestNewStore_Factory(t *testing.T) {
	dir := t.TempDir()

	for _, backend := range []string{BackendJSON, BackendSQLite, BackendMemory} {
		store, err := NewStore(backend, dir, nil)
		if err != nil {
			t.Fatalf("NewStore(%q) error = %v", backend, err)
		}
		if store == nil {
			t.Fatalf("NewStore(%q) = nil", backend)
		}
		if err := CloseStore(store); err != nil {
			t.Errorf("CloseStore(%q) error = %v", backend, err)
		}
	}

	if _, err := NewStore("bogus", dir, nil); err == nil {
		t.Error("NewStore(bogus) expected error")
	}
}
