// middleware/gateway.go
package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hara-wellness-system/utils"
)

// GatewayAuthMiddleware validates the Bearer token from the Gateway. Auth
// itself lives in the hosted backend; this service only trusts requests the
// Gateway has already authenticated.
func GatewayAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("HARA_SERVICE_TOKEN")
	if expectedToken == "" {
		utils.Sugar.Fatal("HARA_SERVICE_TOKEN is not set — service cannot authenticate Gateway")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			utils.Sugar.Warnw("missing Authorization header", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		// Parse "Bearer <token>"
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			// no "Bearer " prefix — try raw value (e.g., if Gateway sends raw token)
			token = authHeader
		}

		if token != expectedToken {
			utils.Sugar.Warnw("invalid gateway token", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		return c.Next()
	}
}
