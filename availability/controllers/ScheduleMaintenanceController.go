package controllers

import (
	"time"

	"rental-marketplace-backend/availability/services"
	"rental-marketplace-backend/config"
	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ScheduleMaintenanceRequest struct {
	StartDate utils.DateOnly `json:"start_date"`
	EndDate   utils.DateOnly `json:"end_date"`
	Reason    *string        `json:"reason"`
	ExpiresAt *time.Time     `json:"expires_at"`
}

// ScheduleMaintenanceController blocks a date range for maintenance. Only
// currently available dates are taken; the rest of the batch is reported
// back. Expired maintenance is deactivated by the nightly sweep.
func (ac *AvailabilityController) ScheduleMaintenanceController(c *fiber.Ctx) error {
	var request ScheduleMaintenanceRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request payload",
			"error":   err.Error(),
		})
	}

	listing, payload, errResp := ac.authorizeOwner(c)
	if errResp != nil {
		return errResp(c)
	}

	if request.EndDate.Before(request.StartDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "end_date must not be before start_date",
		})
	}

	var requested []utils.DateOnly
	for d := request.StartDate; !d.After(request.EndDate); d = d.AddDays(1) {
		requested = append(requested, d)
	}
	if len(requested) > maxResolveDays {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Date range too large",
		})
	}

	eligible, rejected, errResp2 := ac.narrowBatch(c, listing.ID, requested, services.PartitionForWithdrawal)
	if errResp2 != nil {
		return errResp2(c)
	}
	if len(eligible) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success":        false,
			"message":        "No eligible dates in batch",
			"error":          services.ErrNoEligibleDates.Error(),
			"rejected_dates": rejected,
		})
	}

	overrides := make([]models.AvailabilityOverride, 0, len(eligible))
	for _, d := range eligible {
		overrides = append(overrides, models.AvailabilityOverride{
			ListingID: listing.ID,
			Date:      d.Time(),
			Kind:      models.MaintenanceOverrideKind,
			Reason:    request.Reason,
			ExpiresAt: request.ExpiresAt,
			IsActive:  true,
			CreatedBy: payload.UserID.String(),
		})
	}

	tx := ac.DB.Begin()
	if tx.Error != nil {
		config.Logger.Error("Failed to begin transaction for maintenance scheduling",
			zap.Error(tx.Error),
			zap.String("listingID", listing.ID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error: Could not start database transaction",
		})
	}

	if err := ac.AvailabilityRepo.CreateOverrides(tx, overrides); err != nil {
		tx.Rollback()
		config.Logger.Error("Failed to write maintenance overrides",
			zap.Error(err),
			zap.String("listingID", listing.ID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to schedule maintenance",
			"error":   err.Error(),
		})
	}

	if err := tx.Commit().Error; err != nil {
		config.Logger.Error("Failed to commit maintenance transaction",
			zap.Error(err),
			zap.String("listingID", listing.ID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error: Could not commit database transaction",
		})
	}

	config.Logger.Info("Maintenance scheduled",
		zap.String("listingID", listing.ID.String()),
		zap.Int("applied", len(eligible)),
		zap.Int("rejected", len(rejected)))

	ac.enqueueAvailabilityEvent(listing, "maintenance_scheduled", eligible)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":        true,
		"message":        "Maintenance scheduled successfully",
		"applied_dates":  eligible,
		"rejected_dates": rejected,
	})
}
