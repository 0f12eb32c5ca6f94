// Package safety provides the keyword risk scorer applied to every
// persisted message. It annotates for moderation triage and never blocks
// delivery.
package safety

import (
	"strings"

	"safecircle/backend/internal/config"
)

// Score scans the lower-cased message for danger and concern keywords and
// returns a risk score clamped to [0, MaxRiskScore].
func Score(message string) int {
	lower := strings.ToLower(message)

	score := 0
	for _, word := range config.DangerWords {
		if strings.Contains(lower, word) {
			score += config.DangerWordWeight
		}
	}
	for _, word := range config.ConcernWords {
		if strings.Contains(lower, word) {
			score += config.ConcernWordWeight
		}
	}

	if score > config.MaxRiskScore {
		score = config.MaxRiskScore
	}
	return score
}

// Flagged reports whether a score crosses the review threshold.
func Flagged(score int) bool {
	return score > config.FlagRiskThreshold
}
