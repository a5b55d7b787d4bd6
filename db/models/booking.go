package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	PendingBookingStatus               BookingStatus = "pending"
	ConfirmedBookingStatus             BookingStatus = "confirmed"
	CancellationRequestedBookingStatus BookingStatus = "cancellation_requested"
	InProgressBookingStatus            BookingStatus = "in_progress"
	CompletedBookingStatus             BookingStatus = "completed"
	CancelledBookingStatus             BookingStatus = "cancelled"
	DisputedBookingStatus              BookingStatus = "disputed"
)

// IsTerminal reports whether no further transitions are possible.
func (s BookingStatus) IsTerminal() bool {
	return s == CompletedBookingStatus || s == CancelledBookingStatus
}

type PaymentStatus string

const (
	UnpaidPaymentStatus   PaymentStatus = "unpaid"
	PaidPaymentStatus     PaymentStatus = "paid"
	RefundedPaymentStatus PaymentStatus = "refunded"
)

type OwnerConfirmationStatus string

const (
	AwaitingOwnerConfirmation  OwnerConfirmationStatus = "awaiting"
	ConfirmedOwnerConfirmation OwnerConfirmationStatus = "confirmed"
	RejectedOwnerConfirmation  OwnerConfirmationStatus = "rejected"
)

type FulfillmentMethod string

const (
	PickupFulfillment     FulfillmentMethod = "pickup"
	DeliveryFulfillment   FulfillmentMethod = "delivery"
	MeetPublicFulfillment FulfillmentMethod = "meet_public"
	VisitFulfillment      FulfillmentMethod = "visit"
)

// Booking is a committed rental agreement between a renter and an owner.
// Status moves only through the transition table in bookings/services.
type Booking struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	BookingNumber string    `gorm:"unique;not null;index" json:"booking_number"`
	ListingID     uuid.UUID `gorm:"type:uuid;not null;index" json:"listing_id"`
	Listing       Listing   `gorm:"foreignKey:ListingID;references:ID" json:"listing"`
	RenterID      uuid.UUID `gorm:"type:uuid;not null;index" json:"renter_id"`
	OwnerID       uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`

	FulfillmentMethod  FulfillmentMethod `gorm:"type:varchar(20);not null" json:"fulfillment_method"`
	FulfillmentAddress *string           `gorm:"type:text" json:"fulfillment_address"`
	MeetLocation       *string           `gorm:"type:text" json:"meet_location"`
	TimeWindow         *string           `json:"time_window"`
	Instructions       *string           `gorm:"type:text" json:"instructions"`

	// Price snapshot taken at submission
	PricePerDay  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price_per_day"`
	DeliveryFee  decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"delivery_fee"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_price"`
	Currency     string          `gorm:"type:varchar(3);not null" json:"currency"`
	DurationDays int             `gorm:"not null" json:"duration_days"`

	Status                  BookingStatus           `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`
	PaymentStatus           PaymentStatus           `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	OwnerConfirmationStatus OwnerConfirmationStatus `gorm:"type:varchar(20);not null;default:'awaiting'" json:"owner_confirmation_status"`
	CancellationReason      *string                 `gorm:"type:text" json:"cancellation_reason"`
	DisputeReason           *string                 `gorm:"type:text" json:"dispute_reason"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
