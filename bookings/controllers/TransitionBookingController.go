package controllers

import (
	"errors"
	"time"

	"rental-marketplace-backend/bookings/services"
	"rental-marketplace-backend/config"
	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/notifications"
	"rental-marketplace-backend/token"
	"rental-marketplace-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransitionBookingRequest struct {
	TargetStatus models.BookingStatus `json:"target_status"`
	Reason       *string              `json:"reason"`
}

// TransitionBookingController moves a booking through its lifecycle. The
// in-flight guard serializes mutations per booking id; the transition table
// decides legality; status changes only after the commit succeeds.
func (bc *BookingController) TransitionBookingController(c *fiber.Ctx) error {
	var request TransitionBookingRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request payload",
			"error":   err.Error(),
		})
	}

	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid booking ID",
		})
	}

	if request.TargetStatus == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "target_status is required",
		})
	}

	payload, ok := c.Locals("user").(*token.Payload)
	if !ok || payload == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User not authenticated",
		})
	}

	ctx := c.UserContext()

	if err := bc.Guard.Acquire(ctx, bookingID); err != nil {
		if errors.Is(err, services.ErrTransitionInFlight) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Another transition for this booking is in flight",
			})
		}
		config.Logger.Error("In-flight guard failure",
			zap.String("bookingID", bookingID.String()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}
	defer bc.Guard.Release(ctx, bookingID)

	booking, err := bc.BookingRepo.GetBookingByID(bookingID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	role, err := services.RoleFor(booking, payload.UserID)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Only the renter or owner may act on this booking",
		})
	}

	// Duplicate confirm inside the grace window is a harmless no-op, the
	// counterparty was already notified.
	if request.TargetStatus == models.ConfirmedBookingStatus &&
		booking.Status == models.ConfirmedBookingStatus &&
		bc.Guard.InConfirmGrace(ctx, bookingID) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"message": "Booking already confirmed",
			"booking": booking,
		})
	}

	req := services.TransitionRequest{
		Target: request.TargetStatus,
		Role:   role,
		Reason: request.Reason,
		Now:    time.Now().In(dateLocation()),
	}

	if err := services.ValidateTransition(booking, req); err != nil {
		return bc.respondTransitionError(c, booking, err)
	}

	fromStatus := booking.Status

	tx := bc.DB.Begin()
	if tx.Error != nil {
		config.Logger.Error("Failed to begin transaction for booking transition",
			zap.Error(tx.Error),
			zap.String("bookingID", bookingID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error: Could not start database transaction",
		})
	}

	services.ApplyTransition(booking, req)

	if err := bc.BookingRepo.SaveBooking(tx, booking); err != nil {
		tx.Rollback()
		config.Logger.Error("Failed to persist booking transition",
			zap.Error(err),
			zap.String("bookingID", bookingID.String()),
			zap.String("target", string(request.TargetStatus)))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to transition booking",
			"error":   err.Error(),
		})
	}

	if err := tx.Commit().Error; err != nil {
		config.Logger.Error("Failed to commit booking transition",
			zap.Error(err),
			zap.String("bookingID", bookingID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error: Could not commit database transaction",
		})
	}

	if fromStatus == models.PendingBookingStatus && booking.Status == models.ConfirmedBookingStatus {
		bc.Guard.MarkConfirmGrace(ctx, bookingID)
	}

	config.Logger.Info("Booking transitioned",
		zap.String("bookingID", bookingID.String()),
		zap.String("from", string(fromStatus)),
		zap.String("to", string(booking.Status)),
		zap.String("role", string(role)))

	bc.enqueueTransitionEvent(booking, fromStatus, payload.UserID, role)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Booking transitioned successfully",
		"booking": booking,
	})
}

func (bc *BookingController) respondTransitionError(c *fiber.Ctx, booking *models.Booking, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":        false,
			"message":        "Transition not permitted; refresh the booking, it may have changed",
			"error":          err.Error(),
			"current_status": booking.Status,
		})
	case errors.Is(err, services.ErrReasonRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "A reason is required for this transition",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrPaymentRequired),
		errors.Is(err, services.ErrTooEarly),
		errors.Is(err, services.ErrTooLate):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to transition booking",
			"error":   err.Error(),
		})
	}
}

func (bc *BookingController) enqueueTransitionEvent(booking *models.Booking, from models.BookingStatus, actorID uuid.UUID, role services.Role) {
	counterpart := booking.OwnerID
	if role == services.OwnerRole {
		counterpart = booking.RenterID
	}

	task, err := notifications.NewBookingTransitionedTask(notifications.BookingTransitionedPayload{
		BookingID:     booking.ID,
		BookingNumber: booking.BookingNumber,
		FromStatus:    string(from),
		ToStatus:      string(booking.Status),
		ActorID:       actorID,
		CounterpartID: counterpart,
		OccurredAt:    time.Now().In(dateLocation()),
	})
	if err != nil {
		config.Logger.Error("Failed to build booking transition task", zap.Error(err))
		return
	}
	notifications.Enqueue(bc.AsynqClient, task)
}

func dateLocation() *time.Location {
	if utils.DateLocation != nil {
		return utils.DateLocation
	}
	return time.UTC
}
