package routes

import (
	availability_repositories "rental-marketplace-backend/availability/repositories"
	bookings_repositories "rental-marketplace-backend/bookings/repositories"
	"rental-marketplace-backend/middleware"
	"rental-marketplace-backend/reservations/controllers"
	"rental-marketplace-backend/reservations/services"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func ReservationRouterInit(
	app *fiber.App,
	db *gorm.DB,
	aggregator *services.Aggregator,
	availabilityRepository availability_repositories.AvailabilityRepository,
	bookingRepository bookings_repositories.BookingRepository,
	asynqClient *asynq.Client,
	appCtx *middleware.AppContext,
) {
	reservationController := &controllers.ReservationController{
		Aggregator:       aggregator,
		AvailabilityRepo: availabilityRepository,
		BookingRepo:      bookingRepository,
		DB:               db,
		AsynqClient:      asynqClient,
	}

	reservationRoutes := app.Group("/reservations", middleware.ProtectedRoute(appCtx))
	reservationRoutes.Get("/", reservationController.GetReservationsController)
	reservationRoutes.Post("/", reservationController.AddReservationController)
	reservationRoutes.Post("/submit", reservationController.SubmitReservationsController)
	reservationRoutes.Patch("/:lineID", reservationController.UpdateReservationController)
	reservationRoutes.Delete("/:lineID", reservationController.RemoveReservationController)
	reservationRoutes.Delete("/", reservationController.ClearReservationsController)
}
