package core

import (
	"context"
)

// Backend is the boundary to the analysis service. Its response shape is
// deliberately untyped: the normalizer owns shape recovery.
type Backend interface {
	// Analyze submits a scenario and returns the raw analysis payload.
	// Transport failures and non-success statuses are returned as network
	// DomainErrors; the payload is never validated here.
	Analyze(ctx context.Context, req AnalyzeRequest) (RawAnalysis, error)

	// Health checks backend liveness. A nil error means reachable.
	Health(ctx context.Context) error
}

// Persistence namespaces. Each is an independently saved/loaded partition:
// corruption in one never affects the others.
const (
	NamespaceAgents  = "agents"
	NamespaceHistory = "history"
	NamespaceDetails = "details"
	NamespaceUI      = "ui"
)

// Namespaces lists every partition the module owns, in reset order.
func Namespaces() []string {
	return []string{NamespaceAgents, NamespaceHistory, NamespaceDetails, NamespaceUI}
}

// Store is the typed repository contract for snapshot persistence.
// Implementations must never let malformed stored data propagate: Load
// reports absent (false, nil) and logs a warning instead.
type Store interface {
	// Save persists value under the namespace, replacing any previous value.
	Save(namespace string, value any) error

	// Load reads the namespace into the pointer `into`. It returns false
	// with a nil error when the namespace is absent or unreadable.
	Load(namespace string, into any) (bool, error)

	// Delete removes a single namespace. Deleting an absent namespace is
	// not an error.
	Delete(namespace string) error

	// Reset removes every namespace the module owns. After Reset, Load of
	// any namespace reports absent.
	Reset() error
}

// AnalysisListener observes orchestrator outcomes. Registering listeners
// decouples the orchestrator from downstream consumers (web push, logging,
// tests).
type AnalysisListener interface {
	// OnAnalysisCompleted is called after the registry and history have
	// been fully updated for a successful run.
	OnAnalysisCompleted(record AnalysisRecord)

	// OnAnalysisFailed is called after the failure-path agent reset.
	OnAnalysisFailed(scenario string, err error)
}
