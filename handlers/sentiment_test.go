package handlers_test

import (
	"testing"

	"hara-wellness-system/handlers"
	"hara-wellness-system/models"
)

func TestConsequenceXPDelta(t *testing.T) {
	tests := []struct {
		name        string
		willIgnore  string
		consequence string
		want        int64
	}{
		{"ignored and regretted", models.IgnoreYes, "I really regret buying it", -5},
		{"ignored, mixed case keyword", models.IgnoreYes, "That was a MISTAKE", -5},
		{"ignored but content", models.IgnoreYes, "Turned out fine actually", 0},
		{"honored and glad", models.IgnoreNo, "So glad I waited", 5},
		{"honored, keyword inside sentence", models.IgnoreNo, "It worked out well", 5},
		{"honored but regretful", models.IgnoreNo, "I regret skipping it", 0},
		{"not sure is always neutral", models.IgnoreNotSure, "Glad I thought about it", 0},
		{"empty consequence", models.IgnoreYes, "", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entry := &models.CheckInEntry{WillIgnore: tc.willIgnore}
			if got := handlers.ConsequenceXPDelta(entry, tc.consequence); got != tc.want {
				t.Errorf("ConsequenceXPDelta(%q, %q) = %d, want %d",
					tc.willIgnore, tc.consequence, got, tc.want)
			}
		})
	}
}
