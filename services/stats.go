package services

import "math"

// TrustScore is the percentage of decision-bearing check-ins that were
// honored, rounded to the nearest integer. totalDecisions counts entries
// with any will-ignore answer at all, not just "no"; zero decisions score 0.
// Pure and recomputed on every read, never persisted.
func TrustScore(honored, totalDecisions int64) int {
	if totalDecisions <= 0 {
		return 0
	}
	return int(math.Round(float64(honored) / float64(totalDecisions) * 100))
}
