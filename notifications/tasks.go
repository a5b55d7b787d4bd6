package notifications

import (
	"encoding/json"
	"time"

	"rental-marketplace-backend/utils"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types for events produced by the booking core. Consumed by the
// notification worker; analytics taps the same queue.
const (
	TypeBookingTransitioned = "booking:transitioned"
	TypeReservationChanged  = "reservation:changed"
	TypeAvailabilityChanged = "availability:dates_changed"
)

type BookingTransitionedPayload struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	ActorID       uuid.UUID `json:"actor_id"`
	CounterpartID uuid.UUID `json:"counterpart_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type ReservationChangedPayload struct {
	UserID    uuid.UUID `json:"user_id"`
	Action    string    `json:"action"` // added | updated | removed | cleared | submitted
	LineCount int       `json:"line_count"`
}

type AvailabilityChangedPayload struct {
	ListingID uuid.UUID        `json:"listing_id"`
	Action    string           `json:"action"` // withdrawn | restored | maintenance_scheduled
	Dates     []utils.DateOnly `json:"dates"`
	OwnerID   uuid.UUID        `json:"owner_id"`
}

func NewBookingTransitionedTask(p BookingTransitionedPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingTransitioned, payload), nil
}

func NewReservationChangedTask(p ReservationChangedPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReservationChanged, payload), nil
}

func NewAvailabilityChangedTask(p AvailabilityChangedPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAvailabilityChanged, payload), nil
}
