package services

import "errors"

var (
	// ErrValidation covers malformed input caught before any store access.
	// Never retried; the user must correct the input.
	ErrValidation = errors.New("reservations: invalid reservation line")

	ErrLineNotFound           = errors.New("reservations: line not found")
	ErrEmptyCart              = errors.New("reservations: no reservation lines to submit")
	ErrDatesConflict          = errors.New("reservations: requested dates are no longer available")
	ErrFulfillmentUnsupported = errors.New("reservations: listing does not support this fulfillment method")
)
