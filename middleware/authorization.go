package middleware

import (
	"strings"

	"rental-marketplace-backend/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProtectedRoute verifies the requester's token and stores the payload in
// c.Locals("user"). Session issuance and refresh live in the external auth
// service; this only gates who may act as renter or owner.
func ProtectedRoute(ctx *AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")
		if accessToken == "" {
			header := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(header, "Bearer ") {
				accessToken = strings.TrimPrefix(header, "Bearer ")
			}
		}

		if accessToken == "" {
			config.Logger.Debug("No access token provided in request")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
				"error":   "Authentication required",
			})
		}

		payload, err := ctx.PasetoMaker.VerifyToken(accessToken)
		if err != nil {
			// Log invalid access token internally, but don't expose details to client
			config.Logger.Debug("Invalid access token encountered", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
				"error":   "Session expired or invalid. Please log in again.",
			})
		}

		c.Locals("user", payload)
		return c.Next()
	}
}
