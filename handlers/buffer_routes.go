// handlers/buffer_routes.go
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hara-wellness-system/middleware"
	"hara-wellness-system/models"
	"hara-wellness-system/services"
)

func SetupBufferRoutes(app *fiber.App, db *gorm.DB) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// Ad-hoc calculation from user-entered figures
	securedGroup.Post("/buffer/calculate", func(c *fiber.Ctx) error {
		type Req struct {
			NetWorth        string `json:"net_worth"`
			MonthlyIncome   string `json:"monthly_income"`
			MonthlyExpenses string `json:"monthly_expenses"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		in, err := parseBufferInput(req.NetWorth, req.MonthlyIncome, req.MonthlyExpenses)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "amounts must be decimal numbers",
			})
		}

		return c.JSON(services.ComputeLifeBuffer(in))
	})

	// Calculation backed by the mirrored portfolio snapshot
	securedGroup.Get("/buffer", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var mirror models.PortfolioMirror
		if err := db.Where("user_id = ?", userID).First(&mirror).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "no portfolio snapshot yet",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load portfolio",
				"cause": err.Error(),
			})
		}

		in, err := parseBufferInput(mirror.NetWorth, mirror.MonthlyIncome, mirror.MonthlyExpenses)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "portfolio snapshot is malformed",
			})
		}

		result := services.ComputeLifeBuffer(in)
		return c.JSON(fiber.Map{
			"buffer":      result,
			"currency":    mirror.Currency,
			"snapshot_at": mirror.SnapshotAt,
		})
	})
}

func parseBufferInput(netWorth, income, expenses string) (services.LifeBufferInput, error) {
	var in services.LifeBufferInput
	var err error
	if in.NetWorth, err = decimal.NewFromString(netWorth); err != nil {
		return in, err
	}
	if in.MonthlyIncome, err = decimal.NewFromString(income); err != nil {
		return in, err
	}
	if in.MonthlyExpenses, err = decimal.NewFromString(expenses); err != nil {
		return in, err
	}
	return in, nil
}
