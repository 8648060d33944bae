// handlers/progression_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hara-wellness-system/middleware"
	"hara-wellness-system/models"
	"hara-wellness-system/services"
	"hara-wellness-system/utils"
)

func SetupProgressionRoutes(app *fiber.App, gamification *services.GamificationService, checkins *services.CheckInService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		prog, err := gamification.Progression(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}

		honored, totalDecisions, err := checkins.DecisionCounts(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to derive trust score",
				"cause": err.Error(),
			})
		}

		level := services.LevelOf(prog.TotalXP)
		now := gamification.Clock.Now()

		recent := prog.RecentAchievements(3)
		recentOut := make([]fiber.Map, 0, len(recent))
		for _, a := range recent {
			recentOut = append(recentOut, fiber.Map{
				"code":        a.Code,
				"name":        a.Name,
				"icon":        a.Icon,
				"xp":          a.XP,
				"unlocked_at": a.UnlockedAt,
				"unlocked":    utils.TimeAgo(a.UnlockedAt, now),
			})
		}

		return c.JSON(fiber.Map{
			"total_xp":            prog.TotalXP,
			"total_checkins":      prog.TotalCheckins,
			"current_streak":      prog.CurrentStreak,
			"last_check_in_date":  prog.LastCheckInDate,
			"level":               level.Level,
			"level_name":          level.LevelName,
			"current_level_xp":    level.CurrentLevelXP,
			"next_level_xp":       level.NextLevelXP,
			"progress_percent":    services.ClampPercent(level.ProgressPercent),
			"trust_score":         services.TrustScore(honored, totalDecisions),
			"honored_count":       honored,
			"total_decisions":     totalDecisions,
			"recent_achievements": recentOut,
		})
	})

	securedGroup.Get("/user/progress/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		prog, err := gamification.Progression(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}

		unlockedAt := make(map[string]models.AchievementGrant, len(prog.Achievements))
		for _, g := range prog.Achievements {
			unlockedAt[g.Code] = g
		}

		var response []fiber.Map
		for _, def := range models.AchievementDefinitions {
			entry := fiber.Map{
				"code":        def.Code,
				"name":        def.Name,
				"description": def.Description,
				"icon":        def.Icon,
				"xp":          def.XP,
				"unlocked":    false,
			}
			if g, ok := unlockedAt[def.Code]; ok {
				entry["unlocked"] = true
				entry["unlocked_at"] = g.UnlockedAt
			}
			response = append(response, entry)
		}
		return c.JSON(response)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	adminGroup.Post("/xp/adjust", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
			Delta  int64  `json:"delta" validate:"required"`
			Reason string `json:"reason" validate:"max=255"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		prog, err := gamification.AdjustXP(req.UserID, req.Delta)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "XP adjustment failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message":  "XP adjusted successfully",
			"user_id":  req.UserID,
			"delta":    req.Delta,
			"total_xp": prog.TotalXP,
		})
	})
}
