package score

import "math"

// Weighting applied to the two participation metrics.
const (
	metric1Weight = 0.6
	metric2Weight = 0.4
)

// The combined-metric bonus tops out at +10% once metric1+metric2 reaches
// bonusCap, so outlier inputs cannot inflate rewards without bound.
const (
	bonusCap     = 100.0
	bonusDivisor = 1000.0
)

// tokenRatio converts score to tokens (10:1).
const tokenRatio = 0.1

// Compute maps two non-negative participation metrics to a score and a token
// amount. Inputs are assumed validated by the caller; the function itself is
// pure and performs no rounding.
func Compute(metric1, metric2 float64) (score, tokens float64) {
	bonus := 1 + math.Min(metric1+metric2, bonusCap)/bonusDivisor
	score = (metric1*metric1Weight + metric2*metric2Weight) * bonus
	tokens = score * tokenRatio
	return score, tokens
}

// Round2 rounds to two decimal places. Callers apply it before persisting
// computed values.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
