package services

import "errors"

var (
	// ErrNoEligibleDates means a withdraw/restore batch narrowed down to
	// nothing actionable; no store write happens in that case.
	ErrNoEligibleDates = errors.New("availability: no eligible dates in batch")

	ErrListingNotFound = errors.New("availability: listing not found")
	ErrNotListingOwner = errors.New("availability: requester is not the listing owner")
	ErrInvalidRange    = errors.New("availability: invalid date range")
)

// Rejection reasons reported alongside the applied set so the caller can
// tell the user why part of the batch was narrowed away.
const (
	RejectPastDate           = "past_date"
	RejectBooked             = "booked"
	RejectInProgress         = "in_progress"
	RejectMaintenance        = "maintenance"
	RejectAlreadyUnavailable = "already_unavailable"
	RejectAlreadyAvailable   = "already_available"
)
