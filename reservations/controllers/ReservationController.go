package controllers

import (
	availability_repositories "rental-marketplace-backend/availability/repositories"
	bookings_repositories "rental-marketplace-backend/bookings/repositories"
	"rental-marketplace-backend/config"
	"rental-marketplace-backend/notifications"
	"rental-marketplace-backend/reservations/services"
	"rental-marketplace-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReservationController struct {
	Aggregator       *services.Aggregator
	AvailabilityRepo availability_repositories.AvailabilityRepository
	BookingRepo      bookings_repositories.BookingRepository
	DB               *gorm.DB
	AsynqClient      *asynq.Client
}

// requireUser returns nil when the auth middleware did not attach a
// payload; the caller responds 401.
func (rc *ReservationController) requireUser(c *fiber.Ctx) *token.Payload {
	payload, ok := c.Locals("user").(*token.Payload)
	if !ok || payload == nil {
		return nil
	}
	return payload
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "User not authenticated",
	})
}

func (rc *ReservationController) enqueueCartEvent(payload *token.Payload, action string, lineCount int) {
	task, err := notifications.NewReservationChangedTask(notifications.ReservationChangedPayload{
		UserID:    payload.UserID,
		Action:    action,
		LineCount: lineCount,
	})
	if err != nil {
		config.Logger.Error("Failed to build reservation event task", zap.Error(err))
		return
	}
	notifications.Enqueue(rc.AsynqClient, task)
}
