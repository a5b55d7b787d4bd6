package services

import (
	"fmt"
	"time"

	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/utils"

	"github.com/google/uuid"
)

// Role is the requester's relationship to the booking.
type Role string

const (
	RenterRole Role = "renter"
	OwnerRole  Role = "owner"
)

// RoleFor resolves the requester's role on a booking. A user renting their
// own listing is not a supported case, so renter wins ties.
func RoleFor(b *models.Booking, userID uuid.UUID) (Role, error) {
	switch {
	case b.RenterID == userID:
		return RenterRole, nil
	case b.OwnerID == userID:
		return OwnerRole, nil
	default:
		return "", ErrNotParticipant
	}
}

// TransitionRequest carries everything the table needs to decide.
type TransitionRequest struct {
	Target models.BookingStatus
	Role   Role
	Reason *string
	Now    time.Time
}

type transitionRule struct {
	target models.BookingStatus
	roles  map[Role]bool
	// reasonRequired lists the roles that must supply a reason. Renter
	// withdrawal before payment converges on the same cancelled status as an
	// owner rejection but does not need one.
	reasonRequired map[Role]bool
	precondition   func(b *models.Booking, req TransitionRequest) error
}

// transitionTable is the single source of truth for who may move a booking
// where. Anything absent here is rejected with ErrInvalidTransition. The
// dispute path is open from every non-terminal status and handled separately
// in findRule.
var transitionTable = map[models.BookingStatus][]transitionRule{
	models.PendingBookingStatus: {
		{
			target: models.ConfirmedBookingStatus,
			roles:  map[Role]bool{OwnerRole: true},
			precondition: func(b *models.Booking, req TransitionRequest) error {
				if b.OwnerConfirmationStatus == models.ConfirmedOwnerConfirmation {
					return fmt.Errorf("%w: owner already confirmed", ErrInvalidTransition)
				}
				return nil
			},
		},
		{
			target:         models.CancelledBookingStatus,
			roles:          map[Role]bool{OwnerRole: true, RenterRole: true},
			reasonRequired: map[Role]bool{OwnerRole: true},
			precondition: func(b *models.Booking, req TransitionRequest) error {
				// Renter withdrawal is only open before payment capture.
				if req.Role == RenterRole && b.PaymentStatus == models.PaidPaymentStatus {
					return fmt.Errorf("%w: renter cannot withdraw a paid booking", ErrInvalidTransition)
				}
				return nil
			},
		},
	},
	models.ConfirmedBookingStatus: {
		{
			target: models.InProgressBookingStatus,
			roles:  map[Role]bool{OwnerRole: true, RenterRole: true},
			precondition: func(b *models.Booking, req TransitionRequest) error {
				if req.Now.Before(dateFloor(b.StartDate)) {
					return ErrTooEarly
				}
				if req.Role == RenterRole && b.PaymentStatus != models.PaidPaymentStatus {
					return ErrPaymentRequired
				}
				return nil
			},
		},
		{
			target: models.CancellationRequestedBookingStatus,
			roles:  map[Role]bool{RenterRole: true},
			precondition: func(b *models.Booking, req TransitionRequest) error {
				if !req.Now.Before(dateFloor(b.StartDate)) {
					return ErrTooLate
				}
				return nil
			},
		},
	},
	models.CancellationRequestedBookingStatus: {
		{
			target: models.CancelledBookingStatus,
			roles:  map[Role]bool{OwnerRole: true},
		},
		{
			target:         models.ConfirmedBookingStatus,
			roles:          map[Role]bool{OwnerRole: true},
			reasonRequired: map[Role]bool{OwnerRole: true},
		},
	},
	models.InProgressBookingStatus: {
		{
			target: models.CompletedBookingStatus,
			roles:  map[Role]bool{OwnerRole: true, RenterRole: true},
		},
	},
}

var disputeRule = transitionRule{
	target:         models.DisputedBookingStatus,
	roles:          map[Role]bool{OwnerRole: true, RenterRole: true},
	reasonRequired: map[Role]bool{OwnerRole: true, RenterRole: true},
}

func findRule(from models.BookingStatus, req TransitionRequest) (*transitionRule, error) {
	if req.Target == models.DisputedBookingStatus {
		if from.IsTerminal() || from == models.DisputedBookingStatus {
			return nil, ErrInvalidTransition
		}
		return &disputeRule, nil
	}

	for i := range transitionTable[from] {
		rule := &transitionTable[from][i]
		if rule.target != req.Target {
			continue
		}
		if !rule.roles[req.Role] {
			return nil, ErrInvalidTransition
		}
		return rule, nil
	}
	return nil, ErrInvalidTransition
}

// ValidateTransition checks the table, the role gate, the reason
// requirement and the rule's precondition without touching the booking.
func ValidateTransition(b *models.Booking, req TransitionRequest) error {
	rule, err := findRule(b.Status, req)
	if err != nil {
		return err
	}

	if rule.reasonRequired[req.Role] && (req.Reason == nil || *req.Reason == "") {
		return ErrReasonRequired
	}

	if rule.precondition != nil {
		if err := rule.precondition(b, req); err != nil {
			return err
		}
	}

	return nil
}

// ApplyTransition mutates the booking in memory after a successful
// validation. The caller persists the result inside a transaction; nothing
// here reaches the store.
func ApplyTransition(b *models.Booking, req TransitionRequest) {
	from := b.Status
	b.Status = req.Target
	now := req.Now

	switch req.Target {
	case models.ConfirmedBookingStatus:
		if from == models.PendingBookingStatus {
			b.OwnerConfirmationStatus = models.ConfirmedOwnerConfirmation
			b.ConfirmedAt = &now
		}
		if from == models.CancellationRequestedBookingStatus {
			// Denied cancellation: record the owner's reason.
			b.CancellationReason = req.Reason
		}
	case models.CancelledBookingStatus:
		b.CancelledAt = &now
		if req.Reason != nil {
			b.CancellationReason = req.Reason
		}
		if from == models.PendingBookingStatus && req.Role == OwnerRole {
			b.OwnerConfirmationStatus = models.RejectedOwnerConfirmation
		}
	case models.CancellationRequestedBookingStatus:
		b.CancellationReason = req.Reason
	case models.CompletedBookingStatus:
		b.CompletedAt = &now
	case models.DisputedBookingStatus:
		b.DisputeReason = req.Reason
	}
}

// dateFloor compares against the start of the booking's first day in the
// app timezone.
func dateFloor(t time.Time) time.Time {
	loc := utils.DateLocation
	if loc == nil {
		loc = time.UTC
	}
	in := t.In(loc)
	return time.Date(in.Year(), in.Month(), in.Day(), 0, 0, 0, 0, loc)
}
