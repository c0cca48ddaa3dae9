package events

import (
	"github.com/fourpillars-ai/pillars/internal/core"
)

// Event type constants for the analysis lifecycle.
const (
	TypeAnalysisStarted    = "analysis_started"
	TypeAgentStatusChanged = "agent_status_changed"
	TypeAnalysisCompleted  = "analysis_completed"
	TypeAnalysisFailed     = "analysis_failed"
	TypeStateReset         = "state_reset"
)

// AnalysisStartedEvent marks the beginning of an analysis submission. All
// configured agents have already been flipped to analyzing when it fires.
type AnalysisStartedEvent struct {
	BaseEvent
	Scenario string     `json:"scenario"`
	Depth    core.Depth `json:"depth"`
}

// NewAnalysisStarted creates an analysis started event.
func NewAnalysisStarted(analysisID, scenario string, depth core.Depth) AnalysisStartedEvent {
	return AnalysisStartedEvent{
		BaseEvent: NewBaseEvent(TypeAnalysisStarted, analysisID),
		Scenario:  scenario,
		Depth:     depth,
	}
}

// AgentStatusChangedEvent reports one agent's status transition.
type AgentStatusChangedEvent struct {
	BaseEvent
	Agent  core.AgentID     `json:"agent"`
	Status core.AgentStatus `json:"status"`
}

// NewAgentStatusChanged creates an agent status change event.
func NewAgentStatusChanged(analysisID string, agent core.AgentID, status core.AgentStatus) AgentStatusChangedEvent {
	return AgentStatusChangedEvent{
		BaseEvent: NewBaseEvent(TypeAgentStatusChanged, analysisID),
		Agent:     agent,
		Status:    status,
	}
}

// AnalysisCompletedEvent carries the finished record.
type AnalysisCompletedEvent struct {
	BaseEvent
	Record core.AnalysisRecord `json:"record"`
}

// NewAnalysisCompleted creates an analysis completed event.
func NewAnalysisCompleted(record core.AnalysisRecord) AnalysisCompletedEvent {
	return AnalysisCompletedEvent{
		BaseEvent: NewBaseEvent(TypeAnalysisCompleted, record.ID),
		Record:    record,
	}
}

// AnalysisFailedEvent reports a failed submission. No history record
// exists for a failed analysis.
type AnalysisFailedEvent struct {
	BaseEvent
	Scenario string `json:"scenario"`
	Error    string `json:"error"`
}

// NewAnalysisFailed creates an analysis failed event.
func NewAnalysisFailed(scenario string, err error) AnalysisFailedEvent {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return AnalysisFailedEvent{
		BaseEvent: NewBaseEvent(TypeAnalysisFailed, ""),
		Scenario:  scenario,
		Error:     msg,
	}
}

// StateResetEvent signals that agents, history and persisted state were
// wiped back to their initial values.
type StateResetEvent struct {
	BaseEvent
}

// NewStateReset creates a state reset event.
func NewStateReset() StateResetEvent {
	return StateResetEvent{BaseEvent: NewBaseEvent(TypeStateReset, "")}
}
