package controllers

import (
	"rental-marketplace-backend/availability/services"
	"rental-marketplace-backend/config"
	"rental-marketplace-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResolveAvailabilityController answers "what is the status of each date in
// this range for this listing". Bookings and overrides are read
// independently and merged per the derivation priority.
func (ac *AvailabilityController) ResolveAvailabilityController(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listingID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid listing ID",
		})
	}

	start, err := utils.ParseDateOnly(c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid start_date: " + err.Error(),
		})
	}
	end, err := utils.ParseDateOnly(c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid end_date: " + err.Error(),
		})
	}

	if end.Before(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "end_date must not be before start_date",
		})
	}
	if int(end.Time().Sub(start.Time()).Hours()/24) > maxResolveDays {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Date range too large",
		})
	}

	if _, err := ac.AvailabilityRepo.GetListingByID(listingID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	days, err := ac.resolveRange(listingID, start, end)
	if err != nil {
		config.Logger.Error("Failed to resolve availability",
			zap.String("listingID", listingID.String()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to resolve availability",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"days":    days,
	})
}

// resolveRange performs the two independent reads and the merge. Shared by
// the read endpoint and the withdraw/restore narrowing.
func (ac *AvailabilityController) resolveRange(listingID uuid.UUID, start, end utils.DateOnly) ([]services.AvailabilityDay, error) {
	bookings, err := ac.AvailabilityRepo.GetOverlappingBookings(
		listingID, start.Time(), end.Time(), services.BlockingBookingStatuses())
	if err != nil {
		return nil, err
	}

	overrides, err := ac.AvailabilityRepo.GetActiveOverrides(listingID, start.Time(), end.Time())
	if err != nil {
		return nil, err
	}

	today := utils.DateOnly(utils.Today())
	return services.DeriveCalendar(listingID, start, end, today, bookings, overrides), nil
}
