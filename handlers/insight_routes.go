// handlers/insight_routes.go
package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"hara-wellness-system/middleware"
	"hara-wellness-system/services"
	"hara-wellness-system/utils"
)

const insightCacheTTL = time.Hour

// Entries fed to the gateway per request; older history adds cost, not signal.
const insightEntryWindow = 30

func SetupInsightRoutes(app *fiber.App, insights *services.InsightClient, checkins *services.CheckInService, gamification *services.GamificationService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/user/insights", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		cacheKey := "insights:" + userID

		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			c.Set("Content-Type", "application/json")
			return c.Send(b)
		}

		entries, err := checkins.ListEntries(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load check-ins",
				"cause": err.Error(),
			})
		}
		if len(entries) == 0 {
			return c.JSON(fiber.Map{
				"patterns": "",
				"message":  "check in a few times and patterns will show up here",
			})
		}

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

		result, err := insights.GenerateInsights(services.InsightRequest{
			TrustScore: services.TrustScore(honored, totalDecisions),
			Streak:     prog.CurrentStreak,
			Entries:    services.SummarizeEntries(entries, insightEntryWindow),
		})
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "insight generation unavailable",
				"cause": err.Error(),
			})
		}

		if b, err := json.Marshal(result); err == nil {
			utils.CacheSetBytes(cacheKey, b, insightCacheTTL)
		}
		return c.JSON(result)
	})
}
