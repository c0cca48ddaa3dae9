// Package normalize converts heterogeneous backend analysis payloads into
// the uniform per-agent result representation.
//
// The backend's response shape is not guaranteed. Classification is a total
// function over four recognized shapes, tried in priority order; the worst
// case synthesizes one default result per configured agent. Normalize never
// fails and never panics.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fourpillars-ai/pillars/internal/core"
)

// Shape tags the recognized response variants.
type Shape string

const (
	// ShapeResultList is an explicit array of per-agent result objects with
	// confidence already on the 0–100 scale.
	ShapeResultList Shape = "result_list"
	// ShapeResultMap is an object keyed by agent whose values carry a 0–1
	// fractional confidence and an analysis text.
	ShapeResultMap Shape = "result_map"
	// ShapeNameList is a flat list of utilized agent names with no
	// per-agent confidence.
	ShapeNameList Shape = "name_list"
	// ShapeUnknown matches nothing recognizable; results are synthesized.
	ShapeUnknown Shape = "unknown"
)

// resultListKeys are probed, in order, for ShapeResultList payloads.
var resultListKeys = []string{"agent_results", "agentResults", "results"}

// resultMapKeys are probed, in order, for ShapeResultMap payloads.
var resultMapKeys = []string{"results", "agents"}

// nameListKeys are probed, in order, for ShapeNameList payloads.
var nameListKeys = []string{"agents_utilized", "agentsUtilized", "utilized_agents", "agents"}

// Classify determines which recognized shape the payload has. First match
// wins. The returned value is the sub-payload the shape was matched on.
func Classify(raw core.RawAnalysis) (Shape, any) {
	if len(raw) == 0 {
		return ShapeUnknown, nil
	}

	for _, key := range resultListKeys {
		list, ok := raw[key].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		if _, isObj := list[0].(map[string]any); isObj {
			return ShapeResultList, list
		}
	}

	for _, key := range resultMapKeys {
		m, ok := raw[key].(map[string]any)
		if !ok || len(m) == 0 {
			continue
		}
		if mapValuesCarryConfidence(m) {
			return ShapeResultMap, m
		}
	}

	for _, key := range nameListKeys {
		list, ok := raw[key].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		if _, isStr := list[0].(string); isStr {
			return ShapeNameList, list
		}
	}

	return ShapeUnknown, nil
}

// mapValuesCarryConfidence reports whether at least one value looks like a
// per-agent result object.
func mapValuesCarryConfidence(m map[string]any) bool {
	for _, v := range m {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if _, has := entry["confidence"]; has {
			return true
		}
		if _, has := entry["analysis"]; has {
			return true
		}
	}
	return false
}

// Normalize converts a raw backend payload into per-agent results. The
// output is never empty: every element has a resolved agent id, an integer
// confidence in [0,100] and non-empty recommendation/analysis text.
func Normalize(raw core.RawAnalysis, agents []core.AgentSpec) []core.AgentResult {
	shape, payload := Classify(raw)

	switch shape {
	case ShapeResultList:
		return fromResultList(payload.([]any), agents)
	case ShapeResultMap:
		return fromResultMap(payload.(map[string]any), agents)
	case ShapeNameList:
		return fromNameList(payload.([]any), agents)
	default:
		return Synthesize(agents)
	}
}

// Synthesize builds the last-resort default result set: one entry per
// configured agent with the default confidence and templated text.
func Synthesize(agents []core.AgentSpec) []core.AgentResult {
	out := make([]core.AgentResult, 0, len(agents))
	for _, spec := range agents {
		out = append(out, core.AgentResult{
			AgentID:        spec.ID,
			AgentName:      spec.Name,
			Confidence:     core.DefaultConfidence,
			Recommendation: defaultRecommendation(spec.Name),
			Analysis:       defaultAnalysis(spec.Name),
		})
	}
	return out
}

func fromResultList(list []any, agents []core.AgentSpec) []core.AgentResult {
	out := make([]core.AgentResult, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := firstString(entry, "agentName", "agent_name", "agent", "name")
		if name == "" {
			continue
		}
		conf := core.DefaultConfidence
		if v, ok := numberField(entry, "confidence"); ok {
			conf = core.ClampConfidence(v)
		}
		out = append(out, buildResult(name, conf, entry, agents))
	}
	if len(out) == 0 {
		return Synthesize(agents)
	}
	return out
}

func fromResultMap(m map[string]any, agents []core.AgentSpec) []core.AgentResult {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]core.AgentResult, 0, len(names))
	for _, name := range names {
		entry, ok := m[name].(map[string]any)
		if !ok {
			continue
		}
		conf := core.DefaultConfidence
		if v, ok := numberField(entry, "confidence"); ok {
			// Map-shaped results carry fractional confidence.
			if v <= 1.0 {
				v *= 100
			}
			conf = core.ClampConfidence(v)
		}
		out = append(out, buildResult(name, conf, entry, agents))
	}
	if len(out) == 0 {
		return Synthesize(agents)
	}
	return out
}

func fromNameList(list []any, agents []core.AgentSpec) []core.AgentResult {
	out := make([]core.AgentResult, 0, len(list))
	for _, item := range list {
		name, ok := item.(string)
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, buildResult(name, core.DefaultConfidence, nil, agents))
	}
	if len(out) == 0 {
		return Synthesize(agents)
	}
	return out
}

// buildResult assembles one normalized result, filling any missing text
// with templated fallbacks.
func buildResult(name string, confidence int, entry map[string]any, agents []core.AgentSpec) core.AgentResult {
	id, display := ResolveAgent(name, agents)

	recommendation := ""
	analysis := ""
	var metrics map[string]any
	if entry != nil {
		recommendation = firstString(entry, "recommendation", "summary")
		analysis = firstString(entry, "analysis", "text", "output")
		if m, ok := entry["metrics"].(map[string]any); ok && len(m) > 0 {
			metrics = m
		}
	}
	if strings.TrimSpace(recommendation) == "" {
		recommendation = defaultRecommendation(display)
	}
	if strings.TrimSpace(analysis) == "" {
		analysis = defaultAnalysis(display)
	}

	return core.AgentResult{
		AgentID:        id,
		AgentName:      display,
		Confidence:     confidence,
		Recommendation: recommendation,
		Analysis:       analysis,
		Metrics:        metrics,
	}
}

// ResolveAgent maps a raw agent name to a configured id via case-insensitive
// substring match ("Finance Agent" resolves to finance). Unmatched names
// fall back to a slug of the raw name, preserving the record for readers
// without inventing a configured agent.
func ResolveAgent(name string, agents []core.AgentSpec) (core.AgentID, string) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, spec := range agents {
		id := strings.ToLower(string(spec.ID))
		if strings.Contains(lower, id) || strings.Contains(id, lower) {
			return spec.ID, spec.Name
		}
	}
	return core.AgentID(Slugify(name)), strings.TrimSpace(name)
}

// Slugify lowercases a name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func defaultRecommendation(name string) string {
	return fmt.Sprintf("%s completed its assessment; review the detailed analysis before acting.", name)
}

func defaultAnalysis(name string) string {
	return fmt.Sprintf("%s returned no detailed analysis for this scenario.", name)
}

// firstString returns the first non-empty string value among the keys.
func firstString(entry map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := entry[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// numberField extracts a numeric field, tolerating JSON decode variants.
func numberField(entry map[string]any, key string) (float64, bool) {
	switch v := entry[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
