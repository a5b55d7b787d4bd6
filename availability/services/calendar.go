package services

import (
	"time"

	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/utils"

	"github.com/google/uuid"
)

type DayStatus string

const (
	AvailableDayStatus   DayStatus = "available"
	BookedDayStatus      DayStatus = "booked"
	InProgressDayStatus  DayStatus = "in_progress"
	MaintenanceDayStatus DayStatus = "maintenance"
	UnavailableDayStatus DayStatus = "unavailable"
)

// AvailabilityDay is the resolved status of one calendar date for one
// listing. It is derived on every read, never persisted.
type AvailabilityDay struct {
	ListingID     uuid.UUID             `json:"listing_id"`
	Date          utils.DateOnly        `json:"date"`
	Status        DayStatus             `json:"status"`
	BookingID     *uuid.UUID            `json:"booking_id,omitempty"`
	BookingStatus *models.BookingStatus `json:"booking_status,omitempty"`
	Immutable     bool                  `json:"immutable"`
}

// RejectedDate records why one date in a batch was not actionable.
type RejectedDate struct {
	Date   utils.DateOnly `json:"date"`
	Reason string         `json:"reason"`
}

// blockingBookingStatuses are the booking states that claim calendar dates.
var blockingBookingStatuses = []models.BookingStatus{
	models.PendingBookingStatus,
	models.ConfirmedBookingStatus,
	models.InProgressBookingStatus,
}

// BlockingBookingStatuses returns the statuses the repository must fetch
// when resolving a calendar.
func BlockingBookingStatuses() []models.BookingStatus {
	return blockingBookingStatuses
}

// DeriveCalendar merges booking records and owner overrides into one
// AvailabilityDay per date of [start, end] (both inclusive). Priority per
// date: in_progress booking, then booked (pending/confirmed), then
// maintenance, then withdrawal, then available. Dates before today are
// resolved for display but flagged immutable.
func DeriveCalendar(
	listingID uuid.UUID,
	start, end utils.DateOnly,
	today utils.DateOnly,
	bookings []models.Booking,
	overrides []models.AvailabilityOverride,
) []AvailabilityDay {
	var days []AvailabilityDay

	for d := start; !d.After(end); d = d.AddDays(1) {
		day := AvailabilityDay{
			ListingID: listingID,
			Date:      d,
			Status:    AvailableDayStatus,
			Immutable: d.Before(today),
		}

		if b := coveringBooking(d, bookings); b != nil {
			day.BookingID = &b.ID
			status := b.Status
			day.BookingStatus = &status
			if b.Status == models.InProgressBookingStatus {
				day.Status = InProgressDayStatus
			} else {
				day.Status = BookedDayStatus
			}
		} else if o := coveringOverride(d, overrides); o != nil {
			if o.Kind == models.MaintenanceOverrideKind {
				day.Status = MaintenanceDayStatus
			} else {
				day.Status = UnavailableDayStatus
			}
		}

		days = append(days, day)
	}

	return days
}

// coveringBooking returns the booking claiming date d, preferring an
// in_progress booking if the store ever holds overlapping records.
func coveringBooking(d utils.DateOnly, bookings []models.Booking) *models.Booking {
	var found *models.Booking
	for i := range bookings {
		b := &bookings[i]
		if !coversDate(d, b.StartDate, b.EndDate) {
			continue
		}
		if b.Status == models.InProgressBookingStatus {
			return b
		}
		if found == nil {
			found = b
		}
	}
	return found
}

// coveringOverride prefers maintenance over a plain withdrawal on the same
// date.
func coveringOverride(d utils.DateOnly, overrides []models.AvailabilityOverride) *models.AvailabilityOverride {
	var found *models.AvailabilityOverride
	for i := range overrides {
		o := &overrides[i]
		if !o.IsActive || !sameDate(d, o.Date) {
			continue
		}
		if o.Kind == models.MaintenanceOverrideKind {
			return o
		}
		if found == nil {
			found = o
		}
	}
	return found
}

func coversDate(d utils.DateOnly, start, end time.Time) bool {
	t := truncateDate(d.Time())
	s := truncateDate(start)
	e := truncateDate(end)
	return !t.Before(s) && !t.After(e)
}

func sameDate(d utils.DateOnly, t time.Time) bool {
	return truncateDate(d.Time()).Equal(truncateDate(t))
}

// truncateDate rebuilds the calendar date at midnight UTC; comparisons look
// at year/month/day only, whatever location the source value carried.
func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PartitionForWithdrawal splits a requested batch into the dates a
// withdrawal may act on (currently available, not in the past) and the
// rejected remainder with per-date reasons. The caller narrows to the
// eligible subset instead of failing the whole batch.
func PartitionForWithdrawal(days []AvailabilityDay, requested []utils.DateOnly) (eligible []utils.DateOnly, rejected []RejectedDate) {
	index := indexDays(days)

	for _, d := range requested {
		day, ok := index[d.String()]
		if !ok {
			continue
		}
		if day.Immutable {
			rejected = append(rejected, RejectedDate{Date: d, Reason: RejectPastDate})
			continue
		}
		switch day.Status {
		case AvailableDayStatus:
			eligible = append(eligible, d)
		case BookedDayStatus:
			rejected = append(rejected, RejectedDate{Date: d, Reason: RejectBooked})
		case InProgressDayStatus:
			rejected = append(rejected, RejectedDate{Date: d, Reason: RejectInProgress})
		case MaintenanceDayStatus:
			rejected = append(rejected, RejectedDate{Date: d, Reason: RejectMaintenance})
		case UnavailableDayStatus:
			rejected = append(rejected, RejectedDate{Date: d, Reason: RejectAlreadyUnavailable})
		}
	}

	return eligible, rejected
}

// PartitionForRestore is the symmetric narrowing for restores: only dates
// currently unavailable (withdrawn) and not in the past are actionable. A
// second restore of an already-available date lands in the rejected set, so
// it never double-applies.
func PartitionForRestore(days []AvailabilityDay, requested []utils.DateOnly) (eligible []utils.DateOnly, rejected []RejectedDate) {
	index := indexDays(days)

	for _, d := range requested {
		day, ok := index[d.String()]
		if !ok {
			continue
		}
		if day.Immutable {
			rejected = append(rejected, RejectedDate{Date: d, Reason: RejectPastDate})
			continue
		}
		switch day.Status {
		case UnavailableDayStatus:
			eligible = append(eligible, d)
		case AvailableDayStatus:
			rejected = append(rejected, RejectedDate{Date: d, Reason: RejectAlreadyAvailable})
		case BookedDayStatus:
			rejected = append(rejected, RejectedDate{Date: d, Reason: RejectBooked})
		case InProgressDayStatus:
			rejected = append(rejected, RejectedDate{Date: d, Reason: RejectInProgress})
		case MaintenanceDayStatus:
			rejected = append(rejected, RejectedDate{Date: d, Reason: RejectMaintenance})
		}
	}

	return eligible, rejected
}

func indexDays(days []AvailabilityDay) map[string]AvailabilityDay {
	index := make(map[string]AvailabilityDay, len(days))
	for _, day := range days {
		index[day.Date.String()] = day
	}
	return index
}

// DateBounds returns the smallest range covering all requested dates.
func DateBounds(requested []utils.DateOnly) (start, end utils.DateOnly, ok bool) {
	if len(requested) == 0 {
		return start, end, false
	}
	start, end = requested[0], requested[0]
	for _, d := range requested[1:] {
		if d.Before(start) {
			start = d
		}
		if d.After(end) {
			end = d
		}
	}
	return start, end, true
}
