package core

import (
	"time"
)

// AgentID uniquely identifies a configured analysis agent.
type AgentID string

// AgentStatus represents the current state of an agent.
type AgentStatus string

const (
	AgentStatusInactive  AgentStatus = "inactive"
	AgentStatusAnalyzing AgentStatus = "analyzing"
	AgentStatusActive    AgentStatus = "active"
)

// Valid reports whether the status is one of the known values.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusInactive, AgentStatusAnalyzing, AgentStatusActive:
		return true
	}
	return false
}

// AgentSpec declares a configured agent. The agent set is configuration:
// fixed for the lifetime of a process but not hard-coded in the domain.
type AgentSpec struct {
	ID AgentID `json:"id" mapstructure:"id"`
	// Name is the human label, e.g. "Finance Agent".
	Name string `json:"name" mapstructure:"name"`
	// Weight is the agent's share in weighted aggregations. Weights across
	// the configured set must sum to 1.0 (±0.01).
	Weight float64 `json:"weight" mapstructure:"weight"`
}

// DefaultAgents returns the four-pillar agent set with the default
// aggregation weights.
func DefaultAgents() []AgentSpec {
	return []AgentSpec{
		{ID: "finance", Name: "Finance Agent", Weight: 0.30},
		{ID: "risk", Name: "Risk Agent", Weight: 0.25},
		{ID: "compliance", Name: "Compliance Agent", Weight: 0.20},
		{ID: "market", Name: "Market Agent", Weight: 0.25},
	}
}

// AgentRecord is the registry's canonical state for one agent.
// Exactly one record exists per configured id; records are created at
// process start and only mutated afterwards, never added or removed.
type AgentRecord struct {
	ID          AgentID     `json:"id"`
	DisplayName string      `json:"display_name"`
	Status      AgentStatus `json:"status"`
	// PerformanceScore is the confidence of the agent's most recent
	// completed analysis, in [0,100].
	PerformanceScore int        `json:"performance_score"`
	UsageCount       int        `json:"usage_count"`
	LastUsedAt       *time.Time `json:"last_used_at,omitempty"`
}

// NewAgentRecord returns a record in its documented initial state.
func NewAgentRecord(spec AgentSpec) AgentRecord {
	return AgentRecord{
		ID:          spec.ID,
		DisplayName: spec.Name,
		Status:      AgentStatusInactive,
	}
}

// AgentDetail holds the ephemeral structured metrics an agent produced in
// the most recent analysis. Details are overwritten on every analysis and
// are not historized.
type AgentDetail struct {
	AgentID    AgentID        `json:"agent_id"`
	Confidence int            `json:"confidence"`
	Analysis   string         `json:"analysis,omitempty"`
	Metrics    map[string]any `json:"metrics,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
