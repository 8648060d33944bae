package services

import (
	"time"

	"hara-wellness-system/models"
)

// EvaluateAchievements grants every not-yet-held achievement whose predicate
// holds against the current snapshot of (record, entry stats), appending the
// grant and adding its XP to the record. Definitions run in their declared
// order; the existing-code check is the sole idempotence guard. Returns the
// newly granted achievements.
func EvaluateAchievements(prog *models.UserProgression, stats models.AchievementStats, now time.Time) []models.AchievementGrant {
	var granted []models.AchievementGrant
	for _, def := range models.AchievementDefinitions {
		if prog.HasAchievement(def.Code) {
			continue
		}
		if !def.Unlocked(prog, stats) {
			continue
		}
		grant := models.AchievementGrant{
			Code:        def.Code,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			XP:          def.XP,
			UnlockedAt:  now,
		}
		prog.Achievements = append(prog.Achievements, grant)
		prog.TotalXP += def.XP
		granted = append(granted, grant)
	}
	return granted
}
