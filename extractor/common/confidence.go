package common

// Confidence score components. A recognized institution earns the base;
// each located section adds a fixed increment; transactions add one point
// apiece up to the saturation count. The total caps at 100.
const (
	confidenceBase         = 40
	confidencePeriodBonus  = 15
	confidenceSummaryBonus = 15
	confidenceAccountBonus = 10
	confidenceTxSaturation = 20
)

// CalculateConfidence estimates parse completeness on a 0-100 scale.
func CalculateConfidence(result *ParseResult) int {
	if result == nil || !result.Success {
		return 0
	}
	score := confidenceBase
	if result.Period != nil {
		score += confidencePeriodBonus
	}
	if result.Summary != nil {
		score += confidenceSummaryBonus
	}
	if result.Account != nil {
		score += confidenceAccountBonus
	}
	count := len(result.Transactions)
	if count > confidenceTxSaturation {
		count = confidenceTxSaturation
	}
	score += count
	if score > 100 {
		score = 100
	}
	return score
}
