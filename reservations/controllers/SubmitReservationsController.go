package controllers

import (
	availability_services "rental-marketplace-backend/availability/services"
	"rental-marketplace-backend/config"
	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/reservations/services"
	"rental-marketplace-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SubmitReservationsController turns the current cart into pending bookings
// in one transaction. Every line is re-checked against the availability
// calendar and the listing's current metadata; a single conflict aborts the
// whole submission so the user can adjust before retrying.
func (rc *ReservationController) SubmitReservationsController(c *fiber.Ctx) error {
	payload := rc.requireUser(c)
	if payload == nil {
		return unauthenticated(c)
	}

	ctx := c.UserContext()

	lines, err := rc.Aggregator.Lines(ctx, payload.UserID)
	if err != nil {
		config.Logger.Error("Failed to load reservation lines for submit",
			zap.String("userID", payload.UserID.String()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load reservations",
			"error":   err.Error(),
		})
	}

	if len(lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No reservation lines to submit",
			"error":   services.ErrEmptyCart.Error(),
		})
	}

	today := utils.DateOnly(utils.Today())

	var bookings []*models.Booking
	var conflicts []availability_services.RejectedDate

	for _, line := range lines {
		listing, err := rc.AvailabilityRepo.GetListingByID(line.ListingID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		days, err := rc.resolveListingRange(listing, line.StartDate, line.EndDate, today)
		if err != nil {
			config.Logger.Error("Failed to resolve availability during submit",
				zap.String("listingID", listing.ID.String()),
				zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to check availability",
				"error":   err.Error(),
			})
		}

		for _, day := range days {
			if day.Status != availability_services.AvailableDayStatus {
				conflicts = append(conflicts, availability_services.RejectedDate{
					Date:   day.Date,
					Reason: string(day.Status),
				})
			}
		}
		if len(conflicts) > 0 {
			continue
		}

		// Fresh listing metadata wins over the cart snapshot.
		booking := &models.Booking{
			ListingID:          listing.ID,
			RenterID:           payload.UserID,
			OwnerID:            listing.OwnerID,
			StartDate:          line.StartDate.Time(),
			EndDate:            line.EndDate.Time(),
			FulfillmentMethod:  line.FulfillmentMethod,
			FulfillmentAddress: line.FulfillmentAddress,
			MeetLocation:       line.MeetLocation,
			TimeWindow:         line.TimeWindow,
			Instructions:       line.Instructions,
			PricePerDay:        listing.PricePerDay,
			DeliveryFee:        listing.DeliveryFee,
			Currency:           listing.Currency,
			DurationDays:       services.DurationDays(line.StartDate, line.EndDate),
			Status:             models.PendingBookingStatus,
			PaymentStatus:      models.UnpaidPaymentStatus,
		}
		refreshed := line
		refreshed.PricePerDay = listing.PricePerDay
		refreshed.DeliveryFee = listing.DeliveryFee
		refreshed.Recompute()
		booking.TotalPrice = refreshed.TotalPrice

		bookings = append(bookings, booking)
	}

	if len(conflicts) > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":   false,
			"message":   "Requested dates are no longer available",
			"error":     services.ErrDatesConflict.Error(),
			"conflicts": conflicts,
		})
	}

	tx := rc.DB.Begin()
	if tx.Error != nil {
		config.Logger.Error("Failed to begin transaction for submission",
			zap.Error(tx.Error),
			zap.String("userID", payload.UserID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error: Could not start database transaction",
		})
	}

	seq, err := rc.BookingRepo.NextBookingSequence(tx)
	if err != nil {
		tx.Rollback()
		config.Logger.Error("Failed to allocate booking sequence", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to submit reservations",
			"error":   err.Error(),
		})
	}
	for i, booking := range bookings {
		booking.BookingNumber = utils.FormatBookingNumber(seq + int64(i))
	}

	if err := rc.BookingRepo.CreateBookings(tx, bookings); err != nil {
		tx.Rollback()
		config.Logger.Error("Failed to create bookings from reservations",
			zap.Error(err),
			zap.String("userID", payload.UserID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to submit reservations",
			"error":   err.Error(),
		})
	}

	if err := tx.Commit().Error; err != nil {
		config.Logger.Error("Failed to commit submission transaction",
			zap.Error(err),
			zap.String("userID", payload.UserID.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error: Could not commit database transaction",
		})
	}

	// Cart cleanup after a successful submission is advisory.
	if err := rc.Aggregator.Clear(ctx, payload.UserID); err != nil {
		config.Logger.Error("Failed to clear cart after submission",
			zap.String("userID", payload.UserID.String()),
			zap.Error(err))
	}

	config.Logger.Info("Reservations submitted",
		zap.String("userID", payload.UserID.String()),
		zap.Int("bookings_created", len(bookings)))

	rc.enqueueCartEvent(payload, "submitted", 0)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Reservations submitted successfully",
		"bookings": bookings,
	})
}

func (rc *ReservationController) resolveListingRange(listing *models.Listing, start, end, today utils.DateOnly) ([]availability_services.AvailabilityDay, error) {
	bookings, err := rc.AvailabilityRepo.GetOverlappingBookings(
		listing.ID, start.Time(), end.Time(), availability_services.BlockingBookingStatuses())
	if err != nil {
		return nil, err
	}

	overrides, err := rc.AvailabilityRepo.GetActiveOverrides(listing.ID, start.Time(), end.Time())
	if err != nil {
		return nil, err
	}

	return availability_services.DeriveCalendar(listing.ID, start, end, today, bookings, overrides), nil
}
