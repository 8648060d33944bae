// handlers/checkin_routes.go
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"hara-wellness-system/middleware"
	"hara-wellness-system/services"
	"hara-wellness-system/utils"
)

func SetupCheckInRoutes(app *fiber.App, checkins *services.CheckInService, gamification *services.GamificationService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// Check-ins are deliberate moments; a generous limit only catches abuse.
	writeLimit := middleware.RateLimit(rate.Limit(1), 10)

	securedGroup.Post("/checkins", writeLimit, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req services.NewCheckIn
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		entry, err := checkins.CreateEntry(userID, req)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCheckIn) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid check-in payload",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save check-in",
				"cause": err.Error(),
			})
		}

		prog, err := gamification.RecordCheckIn(userID, entry.XP)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "check-in saved but progression update failed",
				"cause": err.Error(),
			})
		}

		utils.CacheDelete("insights:" + userID)

		level := services.LevelOf(prog.TotalXP)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"entry": entry,
			"progression": fiber.Map{
				"total_xp":         prog.TotalXP,
				"total_checkins":   prog.TotalCheckins,
				"current_streak":   prog.CurrentStreak,
				"level":            level.Level,
				"level_name":       level.LevelName,
				"next_level_xp":    level.NextLevelXP,
				"progress_percent": services.ClampPercent(level.ProgressPercent),
			},
			"recent_achievements": prog.RecentAchievements(3),
		})
	})

	securedGroup.Get("/checkins", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		entries, err := checkins.ListEntries(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list check-ins",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"entries": entries,
			"count":   len(entries),
		})
	})

	securedGroup.Patch("/checkins/:id/consequence", writeLimit, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		entryID := c.Params("id")

		var req struct {
			Consequence string `json:"consequence"`
		}
		if err := c.BodyParser(&req); err != nil || req.Consequence == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "consequence text required",
			})
		}

		entry, err := checkins.GetEntry(userID, entryID)
		if err != nil {
			return entryError(c, err)
		}

		delta := ConsequenceXPDelta(entry, req.Consequence)

		entry, err = checkins.LogConsequence(userID, entryID, req.Consequence)
		if err != nil {
			return entryError(c, err)
		}

		// Always runs, even at delta 0: logging an outcome can unlock
		// outcome-count achievements.
		prog, err := gamification.AdjustXP(userID, delta)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "outcome saved but XP adjustment failed",
				"cause": err.Error(),
			})
		}

		utils.CacheDelete("insights:" + userID)

		return c.JSON(fiber.Map{
			"entry":    entry,
			"xp_delta": delta,
			"total_xp": prog.TotalXP,
		})
	})

	securedGroup.Post("/checkins/:id/voice-note", writeLimit, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		entryID := c.Params("id")

		fileHeader, err := c.FormFile("recording")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "recording file required",
			})
		}

		key := utils.VoiceNoteKey(userID, fileHeader.Filename)
		url, err := utils.UploadFileToR2(fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to upload recording",
				"cause": err.Error(),
			})
		}

		entry, err := checkins.AttachVoiceNote(userID, entryID, url)
		if err != nil {
			return entryError(c, err)
		}
		return c.JSON(entry)
	})

	securedGroup.Delete("/checkins/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		if err := checkins.DeleteEntry(userID, c.Params("id")); err != nil {
			return entryError(c, err)
		}
		utils.CacheDelete("insights:" + userID)
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func entryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEntryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "check-in not found"})
	case errors.Is(err, services.ErrNotVoiceEntry):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "entry was not captured in voice mode"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "check-in operation failed",
			"cause": err.Error(),
		})
	}
}
