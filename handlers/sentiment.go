package handlers

import (
	"strings"

	"hara-wellness-system/models"
)

// Keyword heuristic for the tone of a logged consequence. It lives at the API
// layer on purpose: the progression engine only ever sees the signed delta.
var negativeWords = []string{
	"regret", "wrong", "bad", "mistake", "worse", "lost", "failed", "awful", "should have",
}

var positiveWords = []string{
	"glad", "right", "good", "better", "relieved", "worked", "happy", "grateful",
}

// ConsequenceXPDelta scores a consequence against the entry it belongs to:
// ignoring the gut and regretting it costs XP, honoring it and seeing a good
// outcome earns a little more. Everything else is neutral.
func ConsequenceXPDelta(entry *models.CheckInEntry, consequence string) int64 {
	text := strings.ToLower(consequence)
	switch {
	case entry.WillIgnore == models.IgnoreYes && containsAny(text, negativeWords):
		return -5
	case entry.Honored() && containsAny(text, positiveWords):
		return 5
	default:
		return 0
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
