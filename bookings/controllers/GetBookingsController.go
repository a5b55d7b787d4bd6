package controllers

import (
	"rental-marketplace-backend/config"
	"rental-marketplace-backend/token"
	"rental-marketplace-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetFilteredBookingsController lists the requester's bookings for one side
// of the marketplace (role=renter|owner) with status/listing/date filters.
func (bc *BookingController) GetFilteredBookingsController(c *fiber.Ctx) error {
	payload, ok := c.Locals("user").(*token.Payload)
	if !ok || payload == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User not authenticated",
		})
	}

	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	role := params.Filters["role"]
	offset := (params.Page - 1) * params.PageSize

	bookings, total, err := bc.BookingRepo.GetFilteredBookings(payload.UserID, role, params.Filters, params.PageSize, offset)
	if err != nil {
		config.Logger.Error("Failed to fetch filtered bookings",
			zap.String("userID", payload.UserID.String()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch bookings",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    pagination.NewPaginatedResponse(c, bookings, total, params),
	})
}

// GetBookingController returns one booking to its renter or owner.
func (bc *BookingController) GetBookingController(c *fiber.Ctx) error {
	payload, ok := c.Locals("user").(*token.Payload)
	if !ok || payload == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User not authenticated",
		})
	}

	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid booking ID",
		})
	}

	booking, err := bc.BookingRepo.GetBookingByID(bookingID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if booking.RenterID != payload.UserID && booking.OwnerID != payload.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Only the renter or owner may view this booking",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"booking": booking,
	})
}
