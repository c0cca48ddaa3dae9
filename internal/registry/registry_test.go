package registry

import (
	"testing"
	"time"

	"github.com/fourpillars-ai/pillars/internal/adapters/state"
	"github.com/fourpillars-ai/pillars/internal/core"
)

func newTestRegistry(t *testing.T) (*Registry, core.Store) {
	t.Helper()
	store := state.NewMemoryStore()
	r := New(core.DefaultAgents(), store, nil)
	return r, store
}

func TestRegistry_InitialState(t *testing.T) {
	r, _ := newTestRegistry(t)

	records := r.Snapshot()
	if len(records) != 4 {
		t.Fatalf("len(Snapshot()) = %d, want 4", len(records))
	}
	for _, rec := range records {
		if rec.Status != core.AgentStatusInactive {
			t.Errorf("%s status = %q, want inactive", rec.ID, rec.Status)
		}
		if rec.PerformanceScore != 0 || rec.UsageCount != 0 || rec.LastUsedAt != nil {
			t.Errorf("%s not in initial state: %+v", rec.ID, rec)
		}
	}
	if records[0].ID != "finance" {
		t.Errorf("Snapshot()[0].ID = %q, want finance (configuration order)", records[0].ID)
	}
}

func TestRegistry_SetStatusActiveStampsLastUsed(t *testing.T) {
	r, _ := newTestRegistry(t)
	fixed := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	r.SetStatus("finance", core.AgentStatusAnalyzing)
	rec, _ := r.Record("finance")
	if rec.LastUsedAt != nil {
		t.Error("analyzing transition should not stamp LastUsedAt")
	}

	r.SetStatus("finance", core.AgentStatusActive)
	rec, _ = r.Record("finance")
	if rec.Status != core.AgentStatusActive {
		t.Errorf("status = %q, want active", rec.Status)
	}
	if rec.LastUsedAt == nil || !rec.LastUsedAt.Equal(fixed) {
		t.Errorf("LastUsedAt = %v, want %v", rec.LastUsedAt, fixed)
	}
}

func TestRegistry_UnknownAgentIsLoggedNoOp(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.SetStatus("astrology", core.AgentStatusActive)
	r.SetPerformance("astrology", 99)
	r.IncrementUsage("astrology")

	if len(r.Snapshot()) != 4 {
		t.Error("unknown agent mutated the record set")
	}
}

func TestRegistry_SetPerformanceClamps(t *testing.T) {
	r, _ := newTestRegistry(t)

	tests := []struct {
		score int
		want  int
	}{
		{91, 91},
		{-5, 0},
		{150, 100},
	}
	for _, tt := range tests {
		r.SetPerformance("risk", tt.score)
		rec, _ := r.Record("risk")
		if rec.PerformanceScore != tt.want {
			t.Errorf("SetPerformance(%d) stored %d, want %d", tt.score, rec.PerformanceScore, tt.want)
		}
	}
}

func TestRegistry_IncrementUsage(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.IncrementUsage("market")
	r.IncrementUsage("market")

	rec, _ := r.Record("market")
	if rec.UsageCount != 2 {
		t.Errorf("UsageCount = %d, want 2", rec.UsageCount)
	}
	if rec.LastUsedAt == nil {
		t.Error("LastUsedAt not stamped by usage increment")
	}
}

func TestRegistry_ResetRestoresInitialStateImmediately(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.SetStatus("finance", core.AgentStatusActive)
	r.SetPerformance("finance", 91)
	r.IncrementUsage("finance")
	r.SetDetail(core.AgentDetail{AgentID: "finance", Confidence: 91})

	r.Reset()

	for _, rec := range r.Snapshot() {
		want := core.NewAgentRecord(core.AgentSpec{ID: rec.ID, Name: rec.DisplayName})
		if rec != want {
			t.Errorf("after Reset, %s = %+v, want %+v", rec.ID, rec, want)
		}
	}
	if _, ok := r.Detail("finance"); ok {
		t.Error("detail cache not cleared by Reset")
	}
}

func TestRegistry_PersistsAndRestores(t *testing.T) {
	store := state.NewMemoryStore()

	r := New(core.DefaultAgents(), store, nil)
	r.SetStatus("finance", core.AgentStatusActive)
	r.SetPerformance("finance", 88)
	r.IncrementUsage("finance")
	r.SetDetail(core.AgentDetail{AgentID: "finance", Confidence: 88, Metrics: map[string]any{"roi": 1.2}})

	// Fresh registry over the same store simulates a process restart.
	restored := New(core.DefaultAgents(), store, nil)

	rec, ok := restored.Record("finance")
	if !ok {
		t.Fatal("finance record missing after restore")
	}
	if rec.Status != core.AgentStatusActive || rec.PerformanceScore != 88 || rec.UsageCount != 1 {
		t.Errorf("restored record = %+v", rec)
	}
	if _, ok := restored.Detail("finance"); !ok {
		t.Error("detail cache not restored")
	}
}

func TestRegistry_RestoreToleratesCorruptSnapshot(t *testing.T) {
	store := state.NewMemoryStore()
	// A snapshot with the wrong shape entirely.
	if err := store.Save(core.NamespaceAgents, map[string]int{"bogus": 1}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	r := New(core.DefaultAgents(), store, nil)
	if len(r.Snapshot()) != 4 {
		t.Error("corrupt snapshot altered configured record set")
	}
}

func TestRegistry_RestoreDropsUnconfiguredAgents(t *testing.T) {
	store := state.NewMemoryStore()
	saved := []core.AgentRecord{
		{ID: "finance", DisplayName: "Finance Agent", Status: core.AgentStatusActive, PerformanceScore: 77},
		{ID: "astrology", DisplayName: "Astrology Agent", Status: core.AgentStatusActive},
	}
	if err := store.Save(core.NamespaceAgents, saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	r := New(core.DefaultAgents(), store, nil)
	if _, ok := r.Record("astrology"); ok {
		t.Error("unconfigured agent resurrected from snapshot")
	}
	rec, _ := r.Record("finance")
	if rec.PerformanceScore != 77 {
		t.Errorf("finance score = %d, want 77", rec.PerformanceScore)
	}
}
