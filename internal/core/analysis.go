package core

import (
	"time"
)

// Priority classifies how urgent an analysis outcome is.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// AnalysisStatus represents the lifecycle state of an analysis.
// Records entering history are always completed.
type AnalysisStatus string

const (
	AnalysisStatusCompleted AnalysisStatus = "completed"
	AnalysisStatusAnalyzing AnalysisStatus = "analyzing"
	AnalysisStatusPending   AnalysisStatus = "pending"
)

// Depth selects the analysis scope requested from the backend.
type Depth string

const (
	DepthQuick         Depth = "quick"
	DepthStandard      Depth = "standard"
	DepthComprehensive Depth = "comprehensive"
)

// Verdict is the weighted overall recommendation derived from per-agent
// confidences.
type Verdict string

const (
	VerdictStronglyRecommend Verdict = "STRONGLY_RECOMMEND"
	VerdictRecommend         Verdict = "RECOMMEND"
	VerdictConditional       Verdict = "CONDITIONAL"
	VerdictCaution           Verdict = "CAUTION"
	VerdictNotRecommended    Verdict = "NOT_RECOMMENDED"
)

// AnalyzeRequest is the input to one analysis run.
type AnalyzeRequest struct {
	Scenario string `json:"scenario"`
	Depth    Depth  `json:"depth,omitempty"`
	// Weights optionally overrides the configured per-agent aggregation
	// weights for this request. When present they must sum to 1.0 (±0.01).
	Weights map[AgentID]float64 `json:"weights,omitempty"`
}

// RawAnalysis is a backend analysis response whose shape is not trusted.
// It is the decoded top-level JSON object, or nil when the body was empty
// or not an object.
type RawAnalysis map[string]any

// AgentResult is one agent's contribution after normalization. Every field
// is guaranteed populated: confidence is an integer in [0,100] and the text
// fields are non-empty.
type AgentResult struct {
	// AgentID is the configured id the raw agent name resolved to, or a
	// slug of the raw name when no configured agent matched.
	AgentID        AgentID        `json:"agent_id"`
	AgentName      string         `json:"agent_name"`
	Confidence     int            `json:"confidence"`
	Recommendation string         `json:"recommendation"`
	Analysis       string         `json:"analysis"`
	Metrics        map[string]any `json:"metrics,omitempty"`
}

// AnalysisRecord is one immutable history entry for a completed analysis.
type AnalysisRecord struct {
	ID                string          `json:"id"`
	ScenarioText      string          `json:"scenario_text"`
	Timestamp         time.Time       `json:"timestamp"`
	ExecutionSeconds  float64         `json:"execution_seconds"`
	OverallConfidence int             `json:"overall_confidence"`
	AgentsUtilized    []AgentID       `json:"agents_utilized"`
	Priority          Priority        `json:"priority"`
	Status            AnalysisStatus  `json:"status"`
	Verdict           Verdict         `json:"verdict"`
	AgentConfidences  map[AgentID]int `json:"agent_confidences"`
	KeyInsights       []string        `json:"key_insights"`
	// RawResult retains the normalized per-agent results for display.
	RawResult []AgentResult `json:"raw_result,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate stored records.
func (r AnalysisRecord) Clone() AnalysisRecord {
	out := r
	out.AgentsUtilized = append([]AgentID(nil), r.AgentsUtilized...)
	out.KeyInsights = append([]string(nil), r.KeyInsights...)
	if r.AgentConfidences != nil {
		out.AgentConfidences = make(map[AgentID]int, len(r.AgentConfidences))
		for k, v := range r.AgentConfidences {
			out.AgentConfidences[k] = v
		}
	}
	if r.RawResult != nil {
		out.RawResult = make([]AgentResult, len(r.RawResult))
		copy(out.RawResult, r.RawResult)
	}
	return out
}

// UIState holds small presentation-layer scalars that share the persistence
// contract but sit outside the core invariants.
type UIState struct {
	SearchTerm string `json:"search_term,omitempty"`
	LastDepth  Depth  `json:"last_depth,omitempty"`
}

// ClampConfidence bounds a confidence value to [0,100] and rounds it to the
// nearest integer.
func ClampConfidence(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}
