package services

import "errors"

var (
	// ErrInvalidTransition means the (current status, requester role, target)
	// triple is not in the transition table. The caller should refresh the
	// booking, its copy may be stale.
	ErrInvalidTransition = errors.New("bookings: transition not permitted for current status and role")

	ErrNotParticipant  = errors.New("bookings: requester is neither renter nor owner")
	ErrReasonRequired  = errors.New("bookings: a reason is required for this transition")
	ErrPaymentRequired = errors.New("bookings: booking must be paid before check-in")
	ErrTooEarly        = errors.New("bookings: rental period has not started yet")
	ErrTooLate         = errors.New("bookings: rental period has already started")
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrTransitionInFlight is the in-flight guard: a second mutation for the
	// same booking is ignored, not queued, while one is pending.
	ErrTransitionInFlight = errors.New("bookings: another transition for this booking is in flight")
)
