package core

// Shared defaults for the analysis pipeline.
const (
	// DefaultConfidence is assigned when the backend reports an agent
	// without a usable confidence value.
	DefaultConfidence = 85

	// ConfidenceFloor seeds the last-resort overall confidence heuristic.
	ConfidenceFloor = 75

	// ConfidenceBonusCap bounds the execution-time bonus added on top of
	// ConfidenceFloor.
	ConfidenceBonusCap = 10

	// DefaultHistoryCapacity bounds the analysis history store.
	DefaultHistoryCapacity = 100

	// MaxKeyInsights caps the insights extracted per record.
	MaxKeyInsights = 5

	// MaxScenarioLength bounds accepted scenario text.
	MaxScenarioLength = 5000
)

// Verdict thresholds on the 0–100 confidence scale.
const (
	VerdictStronglyThreshold    = 80
	VerdictRecommendThreshold   = 65
	VerdictConditionalThreshold = 50
	VerdictCautionThreshold     = 35
)

// VerdictFor maps a weighted overall score in [0,100] to a verdict.
func VerdictFor(score float64) Verdict {
	switch {
	case score >= VerdictStronglyThreshold:
		return VerdictStronglyRecommend
	case score >= VerdictRecommendThreshold:
		return VerdictRecommend
	case score >= VerdictConditionalThreshold:
		return VerdictConditional
	case score >= VerdictCautionThreshold:
		return VerdictCaution
	default:
		return VerdictNotRecommended
	}
}

// WeightedScore computes the weight-adjusted mean of per-agent confidences.
// Agents without a configured weight count as 0.25. Empty input yields the
// neutral score 50.
func WeightedScore(confidences map[AgentID]int, weights map[AgentID]float64) float64 {
	if len(confidences) == 0 {
		return 50
	}
	var sum, total float64
	for id, conf := range confidences {
		w, ok := weights[id]
		if !ok {
			w = 0.25
		}
		sum += float64(conf) * w
		total += w
	}
	if total == 0 {
		return 50
	}
	return sum / total
}
