package routes

import (
	"rental-marketplace-backend/availability/controllers"
	"rental-marketplace-backend/availability/repositories"
	"rental-marketplace-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func AvailabilityRouterInit(
	app *fiber.App,
	db *gorm.DB,
	availabilityRepository repositories.AvailabilityRepository,
	asynqClient *asynq.Client,
	appCtx *middleware.AppContext,
) {
	availabilityController := &controllers.AvailabilityController{
		AvailabilityRepo: availabilityRepository,
		DB:               db,
		AsynqClient:      asynqClient,
	}

	availabilityRoutes := app.Group("/availability")
	availabilityRoutes.Get("/:listingID", availabilityController.ResolveAvailabilityController)

	protected := availabilityRoutes.Use(middleware.ProtectedRoute(appCtx))
	protected.Post("/:listingID/withdraw", availabilityController.WithdrawDatesController)
	protected.Post("/:listingID/restore", availabilityController.RestoreDatesController)
	protected.Post("/:listingID/maintenance", availabilityController.ScheduleMaintenanceController)
}
