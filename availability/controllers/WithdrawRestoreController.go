package controllers

import (
	"time"

	"rental-marketplace-backend/availability/services"
	"rental-marketplace-backend/config"
	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/notifications"
	"rental-marketplace-backend/token"
	"rental-marketplace-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WithdrawDatesRequest struct {
	Dates  []utils.DateOnly `json:"dates"`
	Reason *string          `json:"reason"`
}

type RestoreDatesRequest struct {
	Dates []utils.DateOnly `json:"dates"`
}

// WithdrawDatesController removes specific dates from marketplace
// availability. The batch is narrowed to dates that are currently available
// and not in the past; nothing is written when the eligible set is empty.
func (ac *AvailabilityController) WithdrawDatesController(c *fiber.Ctx) error {
	var request WithdrawDatesRequest
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

	if len(request.Dates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "At least one date is required",
		})
	}

	eligible, rejected, errResp2 := ac.narrowBatch(c, listing.ID, request.Dates, services.PartitionForWithdrawal)
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
			Kind:      models.WithdrawalOverrideKind,
			Reason:    request.Reason,
			IsActive:  true,
			CreatedBy: payload.UserID.String(),
		})
	}

	tx := ac.DB.Begin()
	if tx.Error != nil {
		config.Logger.Error("Failed to begin transaction for withdrawal",
			zap.Error(tx.Error),
			zap.String("listingID", listing.ID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error: Could not start database transaction",
		})
	}

	if err := ac.AvailabilityRepo.CreateOverrides(tx, overrides); err != nil {
		tx.Rollback()
		config.Logger.Error("Failed to write withdrawal overrides",
			zap.Error(err),
			zap.String("listingID", listing.ID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to withdraw dates",
			"error":   err.Error(),
		})
	}

	if err := tx.Commit().Error; err != nil {
		config.Logger.Error("Failed to commit withdrawal transaction",
			zap.Error(err),
			zap.String("listingID", listing.ID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error: Could not commit database transaction",
		})
	}

	config.Logger.Info("Dates withdrawn",
		zap.String("listingID", listing.ID.String()),
		zap.Int("applied", len(eligible)),
		zap.Int("rejected", len(rejected)))

	ac.enqueueAvailabilityEvent(listing, "withdrawn", eligible)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":        true,
		"message":        "Dates withdrawn successfully",
		"applied_dates":  eligible,
		"rejected_dates": rejected,
	})
}

// RestoreDatesController re-adds previously withdrawn dates. Only dates
// currently unavailable are actionable; restoring an already-available date
// is reported as rejected, never double-applied.
func (ac *AvailabilityController) RestoreDatesController(c *fiber.Ctx) error {
	var request RestoreDatesRequest
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

	if len(request.Dates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "At least one date is required",
		})
	}

	eligible, rejected, errResp2 := ac.narrowBatch(c, listing.ID, request.Dates, services.PartitionForRestore)
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

	dates := make([]time.Time, 0, len(eligible))
	for _, d := range eligible {
		dates = append(dates, d.Time())
	}

	tx := ac.DB.Begin()
	if tx.Error != nil {
		config.Logger.Error("Failed to begin transaction for restore",
			zap.Error(tx.Error),
			zap.String("listingID", listing.ID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error: Could not start database transaction",
		})
	}

	affected, err := ac.AvailabilityRepo.DeactivateWithdrawals(tx, listing.ID, dates, payload.UserID.String())
	if err != nil {
		tx.Rollback()
		config.Logger.Error("Failed to deactivate withdrawal overrides",
			zap.Error(err),
			zap.String("listingID", listing.ID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to restore dates",
			"error":   err.Error(),
		})
	}

	if err := tx.Commit().Error; err != nil {
		config.Logger.Error("Failed to commit restore transaction",
			zap.Error(err),
			zap.String("listingID", listing.ID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error: Could not commit database transaction",
		})
	}

	config.Logger.Info("Dates restored",
		zap.String("listingID", listing.ID.String()),
		zap.Int64("overrides_deactivated", affected),
		zap.Int("rejected", len(rejected)))

	ac.enqueueAvailabilityEvent(listing, "restored", eligible)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":        true,
		"message":        "Dates restored successfully",
		"applied_dates":  eligible,
		"rejected_dates": rejected,
	})
}

type errorResponder func(*fiber.Ctx) error

// authorizeOwner loads the listing from the route param and checks the
// requester owns it.
func (ac *AvailabilityController) authorizeOwner(c *fiber.Ctx) (*models.Listing, *token.Payload, errorResponder) {
	listingID, err := uuid.Parse(c.Params("listingID"))
	if err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid listing ID",
			})
		}
	}

	payload, ok := c.Locals("user").(*token.Payload)
	if !ok || payload == nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User not authenticated",
			})
		}
	}

	listing, err := ac.AvailabilityRepo.GetListingByID(listingID)
	if err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
	}

	if listing.OwnerID != payload.UserID {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Only the listing owner may change availability",
			})
		}
	}

	return listing, payload, nil
}

// narrowBatch resolves the smallest range covering the requested dates and
// partitions the batch with the supplied rule.
func (ac *AvailabilityController) narrowBatch(
	c *fiber.Ctx,
	listingID uuid.UUID,
	requested []utils.DateOnly,
	partition func([]services.AvailabilityDay, []utils.DateOnly) ([]utils.DateOnly, []services.RejectedDate),
) ([]utils.DateOnly, []services.RejectedDate, errorResponder) {
	start, end, ok := services.DateBounds(requested)
	if !ok {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "At least one date is required",
			})
		}
	}

	days, err := ac.resolveRange(listingID, start, end)
	if err != nil {
		config.Logger.Error("Failed to resolve availability before narrowing",
			zap.String("listingID", listingID.String()),
			zap.Error(err))
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to resolve availability",
				"error":   err.Error(),
			})
		}
	}

	eligible, rejected := partition(days, requested)
	return eligible, rejected, nil
}

func (ac *AvailabilityController) enqueueAvailabilityEvent(listing *models.Listing, action string, dates []utils.DateOnly) {
	task, err := notifications.NewAvailabilityChangedTask(notifications.AvailabilityChangedPayload{
		ListingID: listing.ID,
		Action:    action,
		Dates:     dates,
		OwnerID:   listing.OwnerID,
	})
	if err != nil {
		config.Logger.Error("Failed to build availability event task", zap.Error(err))
		return
	}
	notifications.Enqueue(ac.AsynqClient, task)
}
