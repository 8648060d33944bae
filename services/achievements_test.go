package services_test

import (
	"testing"
	"time"

	"hara-wellness-system/models"
	"hara-wellness-system/services"
)

var unlockTime = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func TestEvaluateAchievementsEmptyRecord(t *testing.T) {
	prog := &models.UserProgression{ExternalUserID: "user-1"}

	granted := services.EvaluateAchievements(prog, models.AchievementStats{}, unlockTime)

	if len(granted) != 0 {
		t.Errorf("granted %d achievements on a zero record, want none", len(granted))
	}
	if prog.TotalXP != 0 {
		t.Errorf("TotalXP = %d, want 0", prog.TotalXP)
	}
}

func TestEvaluateAchievementsIdempotent(t *testing.T) {
	prog := &models.UserProgression{
		ExternalUserID: "user-1",
		TotalCheckins:  1,
	}

	first := services.EvaluateAchievements(prog, models.AchievementStats{}, unlockTime)
	if len(first) != 1 || first[0].Code != "first_listen" {
		t.Fatalf("first pass granted %v, want just first_listen", first)
	}
	xpAfterFirst := prog.TotalXP

	second := services.EvaluateAchievements(prog, models.AchievementStats{}, unlockTime.Add(time.Hour))
	if len(second) != 0 {
		t.Errorf("second pass re-granted %v", second)
	}
	if prog.TotalXP != xpAfterFirst {
		t.Errorf("TotalXP changed on re-evaluation: %d -> %d", xpAfterFirst, prog.TotalXP)
	}
	if len(prog.Achievements) != 1 {
		t.Errorf("achievement list length = %d, want 1", len(prog.Achievements))
	}
}

func TestEvaluateAchievementsThresholdCrossing(t *testing.T) {
	// a counter that jumped straight to 7 unlocks both the 1- and the
	// 5-threshold but not the 15-threshold
	prog := &models.UserProgression{ExternalUserID: "user-1"}
	stats := models.AchievementStats{HonoredCount: 7}

	granted := services.EvaluateAchievements(prog, stats, unlockTime)

	codes := make(map[string]bool, len(granted))
	for _, g := range granted {
		codes[g.Code] = true
	}
	if !codes["first_trust"] || !codes["trust_5"] {
		t.Errorf("granted = %v, want first_trust and trust_5", codes)
	}
	if codes["trust_15"] {
		t.Error("trust_15 granted at honored count 7")
	}
	if prog.TotalXP != 15+25 {
		t.Errorf("TotalXP = %d, want 40", prog.TotalXP)
	}
}

func TestEvaluateAchievementsGrantFields(t *testing.T) {
	prog := &models.UserProgression{ExternalUserID: "user-1", TotalCheckins: 1}

	granted := services.EvaluateAchievements(prog, models.AchievementStats{}, unlockTime)
	if len(granted) != 1 {
		t.Fatalf("granted %d, want 1", len(granted))
	}
	g := granted[0]
	if g.Code != "first_listen" || g.Name == "" || g.Description == "" || g.Icon == "" {
		t.Errorf("grant fields not populated: %+v", g)
	}
	if g.XP != 10 {
		t.Errorf("grant XP = %d, want 10", g.XP)
	}
	if !g.UnlockedAt.Equal(unlockTime) {
		t.Errorf("UnlockedAt = %v, want %v", g.UnlockedAt, unlockTime)
	}
}

func TestEvaluateAchievementsDeclarationOrder(t *testing.T) {
	// a snapshot that satisfies several predicates at once grants them in
	// the order the definitions declare
	prog := &models.UserProgression{
		ExternalUserID: "user-1",
		TotalCheckins:  1,
		CurrentStreak:  3,
	}
	stats := models.AchievementStats{DecisionsTracked: 1, HonoredCount: 1}

	granted := services.EvaluateAchievements(prog, stats, unlockTime)

	want := []string{"first_listen", "streak_3", "first_decision", "first_trust"}
	if len(granted) != len(want) {
		t.Fatalf("granted %d achievements, want %d", len(granted), len(want))
	}
	for i, code := range want {
		if granted[i].Code != code {
			t.Errorf("granted[%d] = %q, want %q", i, granted[i].Code, code)
		}
	}
}
