package services

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationLine is a pending, not-yet-committed rental request. It lives
// in the per-user cart until submitted or removed; the backing store never
// sees it.
type ReservationLine struct {
	ID           string         `json:"id"`
	ListingID    uuid.UUID      `json:"listing_id"`
	ListingTitle string         `json:"listing_title"`
	ListingImage *string        `json:"listing_image,omitempty"`
	OwnerID      uuid.UUID      `json:"owner_id"`
	CategoryID   *uuid.UUID     `json:"category_id,omitempty"`
	StartDate    utils.DateOnly `json:"start_date"`
	EndDate      utils.DateOnly `json:"end_date"`

	PricePerDay decimal.Decimal `json:"price_per_day"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Currency    string          `json:"currency"`

	FulfillmentMethod  models.FulfillmentMethod `json:"fulfillment_method"`
	FulfillmentAddress *string                  `json:"fulfillment_address,omitempty"`
	MeetLocation       *string                  `json:"meet_location,omitempty"`
	TimeWindow         *string                  `json:"time_window,omitempty"`
	Instructions       *string                  `json:"instructions,omitempty"`

	DurationDays int             `json:"duration_days"`
	TotalPrice   decimal.Decimal `json:"total_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DurationDays is the charged rental length: the whole-day gap between the
// dates, floored at one day. A same-day rental still bills one day.
func DurationDays(start, end utils.DateOnly) int {
	hours := end.Time().Sub(start.Time()).Hours()
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Recompute refreshes the derived duration and price after any mutation of
// dates, price or delivery fee.
func (l *ReservationLine) Recompute() {
	l.DurationDays = DurationDays(l.StartDate, l.EndDate)
	total := l.PricePerDay.Mul(decimal.NewFromInt(int64(l.DurationDays)))
	if l.FulfillmentMethod == models.DeliveryFulfillment && l.DeliveryFee.IsPositive() {
		total = total.Add(l.DeliveryFee)
	}
	l.TotalPrice = total
}

// Validate rejects malformed lines before anything reaches the cart store.
func (l *ReservationLine) Validate() error {
	if l.ListingID == uuid.Nil {
		return fmt.Errorf("%w: listing id is required", ErrValidation)
	}
	if l.StartDate.Time().IsZero() || l.EndDate.Time().IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if !l.EndDate.After(l.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}
	if l.PricePerDay.IsNegative() {
		return fmt.Errorf("%w: price per day cannot be negative", ErrValidation)
	}
	if l.DeliveryFee.IsNegative() {
		return fmt.Errorf("%w: delivery fee cannot be negative", ErrValidation)
	}

	switch l.FulfillmentMethod {
	case models.PickupFulfillment, models.VisitFulfillment:
	case models.DeliveryFulfillment:
		if l.FulfillmentAddress == nil || *l.FulfillmentAddress == "" {
			return fmt.Errorf("%w: delivery requires a fulfillment address", ErrValidation)
		}
	case models.MeetPublicFulfillment:
		if l.MeetLocation == nil || *l.MeetLocation == "" {
			return fmt.Errorf("%w: meeting in public requires a location", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown fulfillment method %q", ErrValidation, l.FulfillmentMethod)
	}

	return nil
}

// MergeKey identifies a line for in-place merge: a second submission for the
// same listing and date range updates the existing line rather than
// appending a duplicate.
func (l *ReservationLine) MergeKey() string {
	return fmt.Sprintf("%s|%s|%s", l.ListingID, l.StartDate, l.EndDate)
}

// NewLineID generates a locally unique line id. Not guaranteed globally
// unique across sessions; merges go through MergeKey, not the id.
func NewLineID(listingID uuid.UUID) string {
	return fmt.Sprintf("%s-%d-%04d", listingID, time.Now().UnixNano(), rand.Intn(10000))
}
