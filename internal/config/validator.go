package config

import (
	"fmt"
	"math"

	"github.com/fourpillars-ai/pillars/internal/core"
)

// weightTolerance allows for float noise when checking that agent weights
// sum to 1.0.
const weightTolerance = 0.01

// Validate checks a loaded configuration. The first problem found is
// returned as a validation DomainError.
func Validate(cfg *Config) error {
	switch cfg.State.Backend {
	case "json", "sqlite", "memory":
	default:
		return core.ErrValidation("state_backend",
			fmt.Sprintf("unknown state backend %q (want json, sqlite or memory)", cfg.State.Backend))
	}

	if cfg.History.Capacity <= 0 {
		return core.ErrValidation("history_capacity", "history capacity must be positive")
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return core.ErrValidation("server_port", "server port out of range")
	}

	if cfg.Backend.URL == "" {
		return core.ErrValidation("backend_url", "backend url is required")
	}

	return validateAgents(cfg.Agents)
}

func validateAgents(agents []core.AgentSpec) error {
	if len(agents) == 0 {
		return core.ErrValidation("agents_empty", "at least one agent must be configured")
	}

	seen := make(map[core.AgentID]bool, len(agents))
	sum := 0.0
	for _, a := range agents {
		if a.ID == "" {
			return core.ErrValidation("agent_id", "agent id must not be empty")
		}
		if seen[a.ID] {
			return core.ErrValidation("agent_duplicate",
				fmt.Sprintf("duplicate agent id %q", a.ID))
		}
		seen[a.ID] = true
		if a.Name == "" {
			return core.ErrValidation("agent_name",
				fmt.Sprintf("agent %q has no display name", a.ID))
		}
		if a.Weight < 0 {
			return core.ErrValidation("agent_weight",
				fmt.Sprintf("agent %q has a negative weight", a.ID))
		}
		sum += a.Weight
	}

	if math.Abs(sum-1.0) > weightTolerance {
		return core.ErrValidation("agent_weights_sum",
			fmt.Sprintf("agent weights sum to %.3f, want 1.0", sum))
	}
	return nil
}
