package routes

import (
	"rental-marketplace-backend/bookings/controllers"
	"rental-marketplace-backend/bookings/repositories"
	"rental-marketplace-backend/bookings/services"
	"rental-marketplace-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func BookingRouterInit(
	app *fiber.App,
	db *gorm.DB,
	bookingRepository repositories.BookingRepository,
	guard *services.InflightGuard,
	asynqClient *asynq.Client,
	appCtx *middleware.AppContext,
) {
	bookingController := &controllers.BookingController{
		BookingRepo: bookingRepository,
		DB:          db,
		Guard:       guard,
		AsynqClient: asynqClient,
	}

	bookingRoutes := app.Group("/bookings", middleware.ProtectedRoute(appCtx))
	bookingRoutes.Get("/", bookingController.GetFilteredBookingsController)
	bookingRoutes.Get("/:id", bookingController.GetBookingController)
	bookingRoutes.Post("/:id/transition", bookingController.TransitionBookingController)
}
