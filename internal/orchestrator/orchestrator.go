// Package orchestrator drives one analysis submission end to end: flip
// every agent to analyzing, call the backend once, normalize whatever comes
// back, update the registry, append the history record and fan the outcome
// out to listeners and the event bus.
package orchestrator

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fourpillars-ai/pillars/internal/core"
	"github.com/fourpillars-ai/pillars/internal/events"
	"github.com/fourpillars-ai/pillars/internal/history"
	"github.com/fourpillars-ai/pillars/internal/normalize"
	"github.com/fourpillars-ai/pillars/internal/registry"
)

// Orchestrator serializes submissions: concurrent Submit calls queue on an
// internal mutex rather than being rejected, so each run observes the
// previous run's final state.
type Orchestrator struct {
	runMu sync.Mutex

	mu        sync.Mutex
	listeners []core.AnalysisListener

	logger   *slog.Logger
	backend  core.Backend
	registry *registry.Registry
	history  *history.Store
	store    core.Store
	bus      *events.Bus
	now      func() time.Time
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New wires an orchestrator. The bus may be nil when no one streams events.
func New(backend core.Backend, reg *registry.Registry, hist *history.Store, store core.Store, bus *events.Bus, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		logger:   logger,
		backend:  backend,
		registry: reg,
		history:  hist,
		store:    store,
		bus:      bus,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AddListener registers an outcome observer.
func (o *Orchestrator) AddListener(l core.AnalysisListener) {
	o.mu.Lock()
	o.listeners = append(o.listeners, l)
	o.mu.Unlock()
}

// ValidateRequest checks a submission before any state changes. The web
// handler calls this too so rejected requests never touch agent status.
func ValidateRequest(req core.AnalyzeRequest) error {
	scenario := strings.TrimSpace(req.Scenario)
	if scenario == "" {
		return core.ErrValidation("empty_scenario", "scenario is required")
	}
	if len(scenario) > core.MaxScenarioLength {
		return core.ErrValidation("scenario_too_long", "scenario exceeds maximum length")
	}
	if req.Depth != "" {
		switch req.Depth {
		case core.DepthQuick, core.DepthStandard, core.DepthComprehensive:
		default:
			return core.ErrValidation("invalid_depth", "depth must be quick, standard or comprehensive")
		}
	}
	if len(req.Weights) > 0 {
		sum := 0.0
		for _, w := range req.Weights {
			if w < 0 {
				return core.ErrValidation("negative_weight", "weights must be non-negative")
			}
			sum += w
		}
		if math.Abs(sum-1.0) > 0.01 {
			return core.ErrValidation("weights_sum", "weights must sum to 1.0")
		}
	}
	return nil
}

// Submit runs one analysis. On success the returned record is already in
// history and every contributing agent is active. On failure all agents are
// inactive, nothing was appended and the error carries the network category.
// A cancelled context takes the failure path without applying any of the
// success-path mutations.
func (o *Orchestrator) Submit(ctx context.Context, req core.AnalyzeRequest) (core.AnalysisRecord, error) {
	if err := ValidateRequest(req); err != nil {
		return core.AnalysisRecord{}, err
	}
	if req.Depth == "" {
		req.Depth = core.DepthStandard
	}

	o.runMu.Lock()
	defer o.runMu.Unlock()

	specs := o.registry.Specs()
	o.markAnalyzing(specs)
	o.publish(events.NewAnalysisStarted("", req.Scenario, req.Depth))

	start := o.now()
	raw, err := o.backend.Analyze(ctx, req)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return core.AnalysisRecord{}, o.fail(req.Scenario, err)
	}
	elapsed := o.now().Sub(start).Seconds()

	results := normalize.Normalize(raw, specs)
	for _, res := range results {
		o.registry.SetStatus(res.AgentID, core.AgentStatusActive)
		o.registry.SetPerformance(res.AgentID, res.Confidence)
		o.registry.IncrementUsage(res.AgentID)
		o.registry.SetDetail(core.AgentDetail{
			AgentID:    res.AgentID,
			Confidence: res.Confidence,
			Analysis:   res.Analysis,
			Metrics:    res.Metrics,
		})
		o.publish(events.NewAgentStatusChanged("", res.AgentID, core.AgentStatusActive))
	}
	o.parkIdleAgents(specs, results)

	weights := req.Weights
	if len(weights) == 0 {
		weights = o.registry.Weights()
	}
	record := history.Build(history.BuildInput{
		Scenario:         req.Scenario,
		Depth:            req.Depth,
		Raw:              raw,
		Results:          results,
		Timestamp:        start,
		ExecutionSeconds: elapsed,
		Weights:          weights,
	})
	o.history.Append(record)

	o.publish(events.NewAnalysisCompleted(record))
	for _, l := range o.snapshotListeners() {
		l.OnAnalysisCompleted(record)
	}
	o.logger.Info("analysis completed",
		slog.String("id", record.ID),
		slog.Int("agents", len(results)),
		slog.Int("confidence", record.OverallConfidence))
	return record, nil
}

// Health reports backend reachability.
func (o *Orchestrator) Health(ctx context.Context) error {
	return o.backend.Health(ctx)
}

// Reset wipes agents, history and persisted state back to initial values.
func (o *Orchestrator) Reset() error {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	o.registry.Reset()
	o.history.Clear()
	err := o.store.Reset()
	o.publish(events.NewStateReset())
	if err != nil {
		o.logger.Warn("reset: clearing persisted state failed", slog.String("error", err.Error()))
		return core.ErrState("reset_failed", "clearing persisted state failed").WithCause(err)
	}
	return nil
}

func (o *Orchestrator) markAnalyzing(specs []core.AgentSpec) {
	for _, spec := range specs {
		o.registry.SetStatus(spec.ID, core.AgentStatusAnalyzing)
		o.publish(events.NewAgentStatusChanged("", spec.ID, core.AgentStatusAnalyzing))
	}
}

// parkIdleAgents returns configured agents with no result to inactive so
// none is left stuck in analyzing.
func (o *Orchestrator) parkIdleAgents(specs []core.AgentSpec, results []core.AgentResult) {
	contributed := make(map[core.AgentID]bool, len(results))
	for _, r := range results {
		contributed[r.AgentID] = true
	}
	for _, spec := range specs {
		if !contributed[spec.ID] {
			o.registry.SetStatus(spec.ID, core.AgentStatusInactive)
			o.publish(events.NewAgentStatusChanged("", spec.ID, core.AgentStatusInactive))
		}
	}
}

func (o *Orchestrator) fail(scenario string, cause error) error {
	for _, spec := range o.registry.Specs() {
		o.registry.SetStatus(spec.ID, core.AgentStatusInactive)
		o.publish(events.NewAgentStatusChanged("", spec.ID, core.AgentStatusInactive))
	}

	err := cause
	if !core.IsTransport(err) {
		err = core.ErrNetwork("analyze_failed", "analysis request failed").WithCause(cause)
	}

	o.publish(events.NewAnalysisFailed(scenario, err))
	for _, l := range o.snapshotListeners() {
		l.OnAnalysisFailed(scenario, err)
	}
	o.logger.Warn("analysis failed", slog.String("error", err.Error()))
	return err
}

func (o *Orchestrator) snapshotListeners() []core.AnalysisListener {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]core.AnalysisListener(nil), o.listeners...)
}

func (o *Orchestrator) publish(ev events.Event) {
	if o.bus != nil {
		o.bus.Publish(ev)
	}
}
