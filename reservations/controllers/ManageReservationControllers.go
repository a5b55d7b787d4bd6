package controllers

import (
	"errors"

	"rental-marketplace-backend/config"
	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/reservations/services"
	"rental-marketplace-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AddReservationRequest struct {
	ListingID          uuid.UUID                `json:"listing_id"`
	StartDate          utils.DateOnly           `json:"start_date"`
	EndDate            utils.DateOnly           `json:"end_date"`
	FulfillmentMethod  models.FulfillmentMethod `json:"fulfillment_method"`
	FulfillmentAddress *string                  `json:"fulfillment_address"`
	MeetLocation       *string                  `json:"meet_location"`
	TimeWindow         *string                  `json:"time_window"`
	Instructions       *string                  `json:"instructions"`
}

type UpdateReservationRequest struct {
	StartDate          *utils.DateOnly           `json:"start_date"`
	EndDate            *utils.DateOnly           `json:"end_date"`
	PricePerDay        *decimal.Decimal          `json:"price_per_day"`
	FulfillmentMethod  *models.FulfillmentMethod `json:"fulfillment_method"`
	FulfillmentAddress *string                   `json:"fulfillment_address"`
	MeetLocation       *string                   `json:"meet_location"`
	TimeWindow         *string                   `json:"time_window"`
	Instructions       *string                   `json:"instructions"`
}

// AddReservationController builds a line from the listing's current
// metadata and merges it into the cart. A line targeting the same listing
// and date range is overwritten in place, never duplicated.
func (rc *ReservationController) AddReservationController(c *fiber.Ctx) error {
	var request AddReservationRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request payload",
			"error":   err.Error(),
		})
	}

	payload := rc.requireUser(c)
	if payload == nil {
		return unauthenticated(c)
	}

	listing, err := rc.AvailabilityRepo.GetListingByID(request.ListingID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if !supportsFulfillment(listing, request.FulfillmentMethod) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Listing does not support this fulfillment method",
			"error":   services.ErrFulfillmentUnsupported.Error(),
		})
	}

	line := services.ReservationLine{
		ListingID:          listing.ID,
		ListingTitle:       listing.Title,
		ListingImage:       listing.ImageURL,
		OwnerID:            listing.OwnerID,
		CategoryID:         listing.CategoryID,
		StartDate:          request.StartDate,
		EndDate:            request.EndDate,
		PricePerDay:        listing.PricePerDay,
		DeliveryFee:        listing.DeliveryFee,
		Currency:           listing.Currency,
		FulfillmentMethod:  request.FulfillmentMethod,
		FulfillmentAddress: request.FulfillmentAddress,
		MeetLocation:       request.MeetLocation,
		TimeWindow:         request.TimeWindow,
		Instructions:       request.Instructions,
	}

	stored, merged, err := rc.Aggregator.AddOrUpdate(c.UserContext(), payload.UserID, line)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
		config.Logger.Error("Failed to add reservation line",
			zap.String("userID", payload.UserID.String()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to add reservation",
			"error":   err.Error(),
		})
	}

	action := "added"
	if merged {
		action = "updated"
	}
	count, _ := rc.Aggregator.LineCount(c.UserContext(), payload.UserID)
	rc.enqueueCartEvent(payload, action, count)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Reservation " + action,
		"line":    stored,
		"merged":  merged,
	})
}

// UpdateReservationController merges a partial edit into one line; date or
// price changes recompute duration and total.
func (rc *ReservationController) UpdateReservationController(c *fiber.Ctx) error {
	var request UpdateReservationRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request payload",
			"error":   err.Error(),
		})
	}

	payload := rc.requireUser(c)
	if payload == nil {
		return unauthenticated(c)
	}

	lineID := c.Params("lineID")
	patch := services.LineUpdate{
		StartDate:          request.StartDate,
		EndDate:            request.EndDate,
		PricePerDay:        request.PricePerDay,
		FulfillmentMethod:  request.FulfillmentMethod,
		FulfillmentAddress: request.FulfillmentAddress,
		MeetLocation:       request.MeetLocation,
		TimeWindow:         request.TimeWindow,
		Instructions:       request.Instructions,
	}

	updated, err := rc.Aggregator.Update(c.UserContext(), payload.UserID, lineID, patch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLineNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Reservation line not found",
			})
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		default:
			config.Logger.Error("Failed to update reservation line",
				zap.String("userID", payload.UserID.String()),
				zap.String("lineID", lineID),
				zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to update reservation",
				"error":   err.Error(),
			})
		}
	}

	count, _ := rc.Aggregator.LineCount(c.UserContext(), payload.UserID)
	rc.enqueueCartEvent(payload, "updated", count)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Reservation updated",
		"line":    updated,
	})
}

// RemoveReservationController deletes one line; removing an absent line
// succeeds quietly.
func (rc *ReservationController) RemoveReservationController(c *fiber.Ctx) error {
	payload := rc.requireUser(c)
	if payload == nil {
		return unauthenticated(c)
	}

	lineID := c.Params("lineID")
	if err := rc.Aggregator.Remove(c.UserContext(), payload.UserID, lineID); err != nil {
		config.Logger.Error("Failed to remove reservation line",
			zap.String("userID", payload.UserID.String()),
			zap.String("lineID", lineID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to remove reservation",
			"error":   err.Error(),
		})
	}

	count, _ := rc.Aggregator.LineCount(c.UserContext(), payload.UserID)
	rc.enqueueCartEvent(payload, "removed", count)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Reservation removed",
	})
}

// ClearReservationsController empties the set and erases persisted state.
func (rc *ReservationController) ClearReservationsController(c *fiber.Ctx) error {
	payload := rc.requireUser(c)
	if payload == nil {
		return unauthenticated(c)
	}

	if err := rc.Aggregator.Clear(c.UserContext(), payload.UserID); err != nil {
		config.Logger.Error("Failed to clear reservations",
			zap.String("userID", payload.UserID.String()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to clear reservations",
			"error":   err.Error(),
		})
	}

	rc.enqueueCartEvent(payload, "cleared", 0)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Reservations cleared",
	})
}

// GetReservationsController returns the line set with its aggregate price.
func (rc *ReservationController) GetReservationsController(c *fiber.Ctx) error {
	payload := rc.requireUser(c)
	if payload == nil {
		return unauthenticated(c)
	}

	lines, err := rc.Aggregator.Lines(c.UserContext(), payload.UserID)
	if err != nil {
		config.Logger.Error("Failed to load reservation lines",
			zap.String("userID", payload.UserID.String()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load reservations",
			"error":   err.Error(),
		})
	}

	total, err := rc.Aggregator.TotalPrice(c.UserContext(), payload.UserID)
	if err != nil {
		total = decimal.Zero
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":     true,
		"lines":       lines,
		"line_count":  len(lines),
		"total_price": total,
	})
}

func supportsFulfillment(listing *models.Listing, method models.FulfillmentMethod) bool {
	switch method {
	case models.PickupFulfillment:
		return listing.PickupAvailable
	case models.DeliveryFulfillment:
		return listing.DeliveryAvailable
	case models.MeetPublicFulfillment:
		return listing.MeetPublicAvailable
	case models.VisitFulfillment:
		return listing.VisitAvailable
	default:
		return false
	}
}
