// Package registry holds the canonical per-agent state. It is the single
// source of truth the aggregation and presentation layers read from.
//
// All mutations are synchronous: any reader sees the final state as soon as
// the mutating call returns. The registry persists a snapshot after every
// change; persistence failures are logged and absorbed, never surfaced.
package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fourpillars-ai/pillars/internal/core"
)

// Registry owns one AgentRecord per configured agent id. Ids are fixed at
// construction; unknown ids are tolerated as logged no-ops.
type Registry struct {
	mu      sync.Mutex
	logger  *slog.Logger
	store   core.Store
	specs   []core.AgentSpec
	order   []core.AgentID
	records map[core.AgentID]*core.AgentRecord
	details map[core.AgentID]core.AgentDetail
	now     func() time.Time
}

// Option configures the registry.
type Option func(*Registry)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New creates a registry for the configured agent set, restoring any
// persisted snapshot. Persisted records for ids no longer configured are
// dropped; missing ids start in their initial state.
func New(specs []core.AgentSpec, store core.Store, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		logger:  logger,
		store:   store,
		specs:   append([]core.AgentSpec(nil), specs...),
		records: make(map[core.AgentID]*core.AgentRecord, len(specs)),
		details: make(map[core.AgentID]core.AgentDetail),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, spec := range specs {
		rec := core.NewAgentRecord(spec)
		r.records[spec.ID] = &rec
		r.order = append(r.order, spec.ID)
	}
	r.restore()
	return r
}

// restore merges persisted snapshots into the configured record set.
func (r *Registry) restore() {
	var saved []core.AgentRecord
	if found, err := r.store.Load(core.NamespaceAgents, &saved); err == nil && found {
		for _, rec := range saved {
			existing, ok := r.records[rec.ID]
			if !ok {
				r.logger.Warn("registry: dropping persisted record for unconfigured agent",
					slog.String("agent", string(rec.ID)))
				continue
			}
			rec.DisplayName = existing.DisplayName // config wins over snapshot
			if !rec.Status.Valid() {
				rec.Status = core.AgentStatusInactive
			}
			*existing = rec
		}
	}

	var details map[core.AgentID]core.AgentDetail
	if found, err := r.store.Load(core.NamespaceDetails, &details); err == nil && found {
		for id, d := range details {
			if _, ok := r.records[id]; ok {
				r.details[id] = d
			}
		}
	}
}

// Specs returns the configured agent set.
func (r *Registry) Specs() []core.AgentSpec {
	return append([]core.AgentSpec(nil), r.specs...)
}

// Weights returns the configured per-agent aggregation weights.
func (r *Registry) Weights() map[core.AgentID]float64 {
	w := make(map[core.AgentID]float64, len(r.specs))
	for _, spec := range r.specs {
		w[spec.ID] = spec.Weight
	}
	return w
}

// SetStatus sets an agent's status. Transitioning to active stamps
// LastUsedAt. Unknown ids are logged and ignored.
func (r *Registry) SetStatus(id core.AgentID, status core.AgentStatus) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		r.logger.Warn("registry: status change for unknown agent", slog.String("agent", string(id)))
		return
	}
	rec.Status = status
	if status == core.AgentStatusActive {
		now := r.now()
		rec.LastUsedAt = &now
	}
	r.mu.Unlock()
	r.persistRecords()
}

// SetPerformance stores a performance score, clamped to [0,100].
func (r *Registry) SetPerformance(id core.AgentID, score int) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		r.logger.Warn("registry: performance update for unknown agent", slog.String("agent", string(id)))
		return
	}
	rec.PerformanceScore = core.ClampConfidence(float64(score))
	r.mu.Unlock()
	r.persistRecords()
}

// IncrementUsage bumps the usage counter and stamps LastUsedAt.
func (r *Registry) IncrementUsage(id core.AgentID) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		r.logger.Warn("registry: usage increment for unknown agent", slog.String("agent", string(id)))
		return
	}
	rec.UsageCount++
	now := r.now()
	rec.LastUsedAt = &now
	r.mu.Unlock()
	r.persistRecords()
}

// SetDetail overwrites the ephemeral per-agent detail for the most recent
// analysis. Details for unknown ids are kept too: history may reference
// agents outside the configured set and readers must not lose them.
func (r *Registry) SetDetail(detail core.AgentDetail) {
	r.mu.Lock()
	detail.UpdatedAt = r.now()
	r.details[detail.AgentID] = detail
	r.mu.Unlock()
	r.persistDetails()
}

// Detail returns the ephemeral detail for one agent.
func (r *Registry) Detail(id core.AgentID) (core.AgentDetail, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.details[id]
	return d, ok
}

// Record returns a copy of one agent's record.
func (r *Registry) Record(id core.AgentID) (core.AgentRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return core.AgentRecord{}, false
	}
	return *rec, true
}

// Snapshot returns a copy of every record in configuration order.
func (r *Registry) Snapshot() []core.AgentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.AgentRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.records[id])
	}
	return out
}

// Reset restores every record to its initial state and clears the detail
// cache. The change is visible to readers immediately.
func (r *Registry) Reset() {
	r.mu.Lock()
	for _, spec := range r.specs {
		rec := core.NewAgentRecord(spec)
		*r.records[spec.ID] = rec
	}
	r.details = make(map[core.AgentID]core.AgentDetail)
	r.mu.Unlock()
	r.persistRecords()
	r.persistDetails()
}

func (r *Registry) persistRecords() {
	if err := r.store.Save(core.NamespaceAgents, r.Snapshot()); err != nil {
		r.logger.Warn("registry: persisting agent snapshot failed", slog.String("error", err.Error()))
	}
}

func (r *Registry) persistDetails() {
	r.mu.Lock()
	copied := make(map[core.AgentID]core.AgentDetail, len(r.details))
	for id, d := range r.details {
		copied[id] = d
	}
	r.mu.Unlock()
	if err := r.store.Save(core.NamespaceDetails, copied); err != nil {
		r.logger.Warn("registry: persisting detail cache failed", slog.String("error", err.Error()))
	}
}
