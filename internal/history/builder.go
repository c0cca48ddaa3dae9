package history

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fourpillars-ai/pillars/internal/core"
)

// Keyword vocabularies for priority classification. Keyword hits always win
// over the execution-time and depth heuristics.
var (
	criticalKeywords = []string{"critical", "urgent", "crisis", "emergency", "immediate"}
	highKeywords     = []string{"important", "significant", "major", "recommended", "priority"}
)

// BuildInput carries everything needed to derive one history record from a
// normalized analysis.
type BuildInput struct {
	// ID is the server-provided analysis id; empty generates one.
	ID               string
	Scenario         string
	Depth            core.Depth
	Raw              core.RawAnalysis
	Results          []core.AgentResult
	Timestamp        time.Time
	ExecutionSeconds float64
	// DefaultPriority applies when neither keywords nor heuristics fire.
	// Empty means medium.
	DefaultPriority core.Priority
	// Weights feed the verdict computation.
	Weights map[core.AgentID]float64
}

// Build derives a completed AnalysisRecord. It is pure apart from id
// generation and never fails: every derived field has a total fallback
// chain.
func Build(in BuildInput) core.AnalysisRecord {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	agentIDs := make([]core.AgentID, 0, len(in.Results))
	confidences := make(map[core.AgentID]int, len(in.Results))
	for _, r := range in.Results {
		agentIDs = append(agentIDs, r.AgentID)
		confidences[r.AgentID] = r.Confidence
	}

	resultText := joinResultText(in.Results)

	return core.AnalysisRecord{
		ID:                id,
		ScenarioText:      in.Scenario,
		Timestamp:         ts,
		ExecutionSeconds:  in.ExecutionSeconds,
		OverallConfidence: overallConfidence(in.Raw, confidences, in.ExecutionSeconds),
		AgentsUtilized:    agentIDs,
		Priority:          PriorityFor(in.Scenario+" "+resultText, in.ExecutionSeconds, in.Depth, in.DefaultPriority),
		Status:            core.AnalysisStatusCompleted,
		Verdict:           core.VerdictFor(core.WeightedScore(confidences, in.Weights)),
		AgentConfidences:  confidences,
		KeyInsights:       ExtractInsights(in.Raw, in.Results, in.Depth),
		RawResult:         append([]core.AgentResult(nil), in.Results...),
	}
}

// overallConfidenceKeys are probed in order for an explicit backend signal.
var overallConfidenceKeys = []string{"confidence_score", "overall_confidence", "confidence", "overall_score"}

// overallConfidence prefers an explicit backend value, then the mean of the
// per-agent confidences, then a deterministic heuristic floor. The source
// system added random jitter in the last case; that fabrication is dropped
// here so repeated derivations agree.
func overallConfidence(raw core.RawAnalysis, confidences map[core.AgentID]int, executionSeconds float64) int {
	for _, key := range overallConfidenceKeys {
		if v, ok := rawNumber(raw, key); ok {
			if v <= 1.0 {
				v *= 100
			}
			return core.ClampConfidence(v)
		}
	}

	if len(confidences) > 0 {
		sum := 0
		for _, c := range confidences {
			sum += c
		}
		return core.ClampConfidence(float64(sum) / float64(len(confidences)))
	}

	bonus := math.Min(math.Max(executionSeconds, 0), core.ConfidenceBonusCap)
	return core.ClampConfidence(core.ConfidenceFloor + bonus)
}

// PriorityFor classifies a record's priority. Keyword matches in the
// combined scenario/result text take precedence; then long execution or
// comprehensive depth raise the priority; then the caller default.
func PriorityFor(text string, executionSeconds float64, depth core.Depth, fallback core.Priority) core.Priority {
	lower := strings.ToLower(text)
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			return core.PriorityCritical
		}
	}
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return core.PriorityHigh
		}
	}
	if executionSeconds > 60 || depth == core.DepthComprehensive {
		return core.PriorityHigh
	}
	if fallback == "" {
		return core.PriorityMedium
	}
	return fallback
}

var (
	bulletRe   = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)
	sentenceRe = regexp.MustCompile(`[.!?]\s+`)
)

// ExtractInsights derives up to MaxKeyInsights short strings. Preference
// order: explicit backend insights, bullet lines in the result text,
// mid-length sentences, then a synthesized three-line summary.
func ExtractInsights(raw core.RawAnalysis, results []core.AgentResult, depth core.Depth) []string {
	if explicit := explicitInsights(raw); len(explicit) > 0 {
		return capInsights(explicit)
	}

	text := joinResultText(results)

	var bullets []string
	for _, m := range bulletRe.FindAllStringSubmatch(text, -1) {
		line := strings.TrimSpace(m[1])
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	if len(bullets) > 0 {
		return capInsights(bullets)
	}

	var sentences []string
	for _, s := range sentenceRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) >= 20 && len(s) <= 200 {
			sentences = append(sentences, strings.TrimRight(s, ".!?"))
		}
	}
	if len(sentences) > 0 {
		return capInsights(sentences)
	}

	return synthesizedInsights(results, depth)
}

// explicitInsights probes the raw payload for structured insight lists,
// including the nested recommendation object the backend produces.
func explicitInsights(raw core.RawAnalysis) []string {
	if raw == nil {
		return nil
	}
	if list := stringList(raw["key_insights"]); len(list) > 0 {
		return list
	}
	if list := stringList(raw["insights"]); len(list) > 0 {
		return list
	}
	if rec, ok := raw["recommendation"].(map[string]any); ok {
		if list := stringList(rec["key_insights"]); len(list) > 0 {
			return list
		}
	}
	return nil
}

func synthesizedInsights(results []core.AgentResult, depth core.Depth) []string {
	if depth == "" {
		depth = core.DepthStandard
	}
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.AgentName)
	}
	agentList := "no agents"
	if len(names) > 0 {
		agentList = strings.Join(names, ", ")
	}
	label := string(depth)
	label = strings.ToUpper(label[:1]) + label[1:]
	return []string{
		fmt.Sprintf("%s analysis completed across %d agents", label, len(results)),
		fmt.Sprintf("Contributing agents: %s", agentList),
		"Review the per-agent assessments for detailed findings",
	}
}

func joinResultText(results []core.AgentResult) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.Analysis)
		b.WriteString("\n")
		b.WriteString(r.Recommendation)
		b.WriteString("\n")
	}
	return b.String()
}

func capInsights(list []string) []string {
	if len(list) > core.MaxKeyInsights {
		list = list[:core.MaxKeyInsights]
	}
	return list
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func rawNumber(raw core.RawAnalysis, key string) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	switch v := raw[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
