package middleware

import (
	"rental-marketplace-backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// InitCors applies CORS settings to the app. Allowed origins come from
// CORS_ALLOW_ORIGINS (comma-separated).
func InitCors(app *fiber.App) {
	allowOrigins := config.GetEnv("CORS_ALLOW_ORIGINS")
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
		config.Logger.Warn("CORS_ALLOW_ORIGINS not set, using default: http://localhost:3000")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, Cookie",
		AllowCredentials: true,
	}))
}
