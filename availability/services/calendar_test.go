package services

import (
	"testing"
	"time"

	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/utils"

	"github.com/google/uuid"
)

var testListingID = uuid.MustParse("33333333-3333-3333-3333-333333333333")

func date(y int, m time.Month, d int) utils.DateOnly {
	return utils.DateOnly(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func booking(status models.BookingStatus, start, end utils.DateOnly) models.Booking {
	return models.Booking{
		ID:        uuid.New(),
		ListingID: testListingID,
		Status:    status,
		StartDate: start.Time(),
		EndDate:   end.Time(),
	}
}

func override(kind models.OverrideKind, d utils.DateOnly) models.AvailabilityOverride {
	return models.AvailabilityOverride{
		ID:        uuid.New(),
		ListingID: testListingID,
		Date:      d.Time(),
		Kind:      kind,
		IsActive:  true,
	}
}

func statusByDate(days []AvailabilityDay) map[string]DayStatus {
	out := make(map[string]DayStatus, len(days))
	for _, d := range days {
		out[d.Date.String()] = d.Status
	}
	return out
}

func TestDeriveCalendarBookedRange(t *testing.T) {
	// Confirmed booking Jul 10-12; resolving Jul 9-13 leaves the edges free.
	today := date(2024, 7, 1)
	bookings := []models.Booking{
		booking(models.ConfirmedBookingStatus, date(2024, 7, 10), date(2024, 7, 12)),
	}

	days := DeriveCalendar(testListingID, date(2024, 7, 9), date(2024, 7, 13), today, bookings, nil)
	if len(days) != 5 {
		t.Fatalf("got %d days; want 5", len(days))
	}

	want := map[string]DayStatus{
		"2024-07-09": AvailableDayStatus,
		"2024-07-10": BookedDayStatus,
		"2024-07-11": BookedDayStatus,
		"2024-07-12": BookedDayStatus,
		"2024-07-13": AvailableDayStatus,
	}
	got := statusByDate(days)
	for d, status := range want {
		if got[d] != status {
			t.Errorf("%s = %s; want %s", d, got[d], status)
		}
	}
}

func TestDeriveCalendarPriority(t *testing.T) {
	today := date(2024, 7, 1)

	tests := []struct {
		name      string
		bookings  []models.Booking
		overrides []models.AvailabilityOverride
		want      DayStatus
	}{
		{
			name: "in_progress beats maintenance",
			bookings: []models.Booking{
				booking(models.InProgressBookingStatus, date(2024, 7, 10), date(2024, 7, 10)),
			},
			overrides: []models.AvailabilityOverride{
				override(models.MaintenanceOverrideKind, date(2024, 7, 10)),
			},
			want: InProgressDayStatus,
		},
		{
			name: "pending booking beats withdrawal",
			bookings: []models.Booking{
				booking(models.PendingBookingStatus, date(2024, 7, 10), date(2024, 7, 10)),
			},
			overrides: []models.AvailabilityOverride{
				override(models.WithdrawalOverrideKind, date(2024, 7, 10)),
			},
			want: BookedDayStatus,
		},
		{
			name: "maintenance beats withdrawal",
			overrides: []models.AvailabilityOverride{
				override(models.WithdrawalOverrideKind, date(2024, 7, 10)),
				override(models.MaintenanceOverrideKind, date(2024, 7, 10)),
			},
			want: MaintenanceDayStatus,
		},
		{
			name: "withdrawal alone",
			overrides: []models.AvailabilityOverride{
				override(models.WithdrawalOverrideKind, date(2024, 7, 10)),
			},
			want: UnavailableDayStatus,
		},
		{
			name: "nothing covers the date",
			want: AvailableDayStatus,
		},
		{
			name: "inactive override is ignored",
			overrides: func() []models.AvailabilityOverride {
				o := override(models.WithdrawalOverrideKind, date(2024, 7, 10))
				o.IsActive = false
				return []models.AvailabilityOverride{o}
			}(),
			want: AvailableDayStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := date(2024, 7, 10)
			days := DeriveCalendar(testListingID, target, target, today, tt.bookings, tt.overrides)
			if len(days) != 1 {
				t.Fatalf("got %d days; want 1", len(days))
			}
			if days[0].Status != tt.want {
				t.Errorf("status = %s; want %s", days[0].Status, tt.want)
			}
		})
	}
}

func TestDeriveCalendarPastDatesImmutable(t *testing.T) {
	today := date(2024, 7, 11)

	days := DeriveCalendar(testListingID, date(2024, 7, 10), date(2024, 7, 12), today, nil, nil)
	if len(days) != 3 {
		t.Fatalf("got %d days; want 3", len(days))
	}
	if !days[0].Immutable {
		t.Error("yesterday should be immutable")
	}
	if days[1].Immutable {
		t.Error("today should not be immutable")
	}
	if days[2].Immutable {
		t.Error("tomorrow should not be immutable")
	}
}

func TestDeriveCalendarTodayMutableInWesternTimezone(t *testing.T) {
	// A deployment west of UTC builds "today" at local midnight, which is
	// hours after midnight UTC. Request dates parse to midnight UTC, so an
	// instant comparison would push today's own date into the immutable
	// past and reject its withdrawal as past_date.
	newYork := time.FixedZone("America/New_York", -5*60*60)
	today := utils.DateOnly(time.Date(2024, 7, 10, 0, 0, 0, 0, newYork))

	days := DeriveCalendar(testListingID, date(2024, 7, 9), date(2024, 7, 11), today, nil, nil)
	if len(days) != 3 {
		t.Fatalf("got %d days; want 3", len(days))
	}
	if !days[0].Immutable {
		t.Error("yesterday should be immutable")
	}
	if days[1].Immutable {
		t.Error("today should not be immutable")
	}
	if days[2].Immutable {
		t.Error("tomorrow should not be immutable")
	}

	eligible, rejected := PartitionForWithdrawal(days, []utils.DateOnly{date(2024, 7, 10)})
	if len(eligible) != 1 || len(rejected) != 0 {
		t.Errorf("withdrawing today = eligible %v, rejected %v; want today eligible", eligible, rejected)
	}
}

func TestDeriveCalendarCarriesBookingIdentity(t *testing.T) {
	today := date(2024, 7, 1)
	b := booking(models.ConfirmedBookingStatus, date(2024, 7, 10), date(2024, 7, 10))

	days := DeriveCalendar(testListingID, date(2024, 7, 10), date(2024, 7, 10), today, []models.Booking{b}, nil)
	if days[0].BookingID == nil || *days[0].BookingID != b.ID {
		t.Errorf("bookingID = %v; want %s", days[0].BookingID, b.ID)
	}
	if days[0].BookingStatus == nil || *days[0].BookingStatus != models.ConfirmedBookingStatus {
		t.Errorf("bookingStatus = %v; want confirmed", days[0].BookingStatus)
	}
}

func TestPartitionForWithdrawal(t *testing.T) {
	today := date(2024, 7, 10)
	bookings := []models.Booking{
		booking(models.ConfirmedBookingStatus, date(2024, 7, 12), date(2024, 7, 12)),
	}
	overrides := []models.AvailabilityOverride{
		override(models.WithdrawalOverrideKind, date(2024, 7, 13)),
		override(models.MaintenanceOverrideKind, date(2024, 7, 14)),
	}
	requested := []utils.DateOnly{
		date(2024, 7, 9),  // past
		date(2024, 7, 11), // available
		date(2024, 7, 12), // booked
		date(2024, 7, 13), // already withdrawn
		date(2024, 7, 14), // maintenance
		date(2024, 7, 15), // available
	}

	start, end, ok := DateBounds(requested)
	if !ok {
		t.Fatal("DateBounds reported empty request")
	}
	days := DeriveCalendar(testListingID, start, end, today, bookings, overrides)

	eligible, rejected := PartitionForWithdrawal(days, requested)

	wantEligible := []string{"2024-07-11", "2024-07-15"}
	if len(eligible) != len(wantEligible) {
		t.Fatalf("eligible = %v; want %v", eligible, wantEligible)
	}
	for i, d := range eligible {
		if d.String() != wantEligible[i] {
			t.Errorf("eligible[%d] = %s; want %s", i, d, wantEligible[i])
		}
	}

	wantReasons := map[string]string{
		"2024-07-09": RejectPastDate,
		"2024-07-12": RejectBooked,
		"2024-07-13": RejectAlreadyUnavailable,
		"2024-07-14": RejectMaintenance,
	}
	if len(rejected) != len(wantReasons) {
		t.Fatalf("rejected = %v; want %d entries", rejected, len(wantReasons))
	}
	for _, r := range rejected {
		if wantReasons[r.Date.String()] != r.Reason {
			t.Errorf("rejected %s reason = %s; want %s", r.Date, r.Reason, wantReasons[r.Date.String()])
		}
	}
}

func TestPartitionForWithdrawalAllRejected(t *testing.T) {
	today := date(2024, 7, 10)
	bookings := []models.Booking{
		booking(models.InProgressBookingStatus, date(2024, 7, 11), date(2024, 7, 12)),
	}
	requested := []utils.DateOnly{date(2024, 7, 11), date(2024, 7, 12)}

	days := DeriveCalendar(testListingID, date(2024, 7, 11), date(2024, 7, 12), today, bookings, nil)
	eligible, rejected := PartitionForWithdrawal(days, requested)

	if len(eligible) != 0 {
		t.Errorf("eligible = %v; want none", eligible)
	}
	if len(rejected) != 2 {
		t.Fatalf("rejected = %v; want 2 entries", rejected)
	}
	for _, r := range rejected {
		if r.Reason != RejectInProgress {
			t.Errorf("rejected %s reason = %s; want %s", r.Date, r.Reason, RejectInProgress)
		}
	}
}

func TestPartitionForRestore(t *testing.T) {
	today := date(2024, 7, 10)
	overrides := []models.AvailabilityOverride{
		override(models.WithdrawalOverrideKind, date(2024, 7, 11)),
	}
	requested := []utils.DateOnly{
		date(2024, 7, 11), // withdrawn, restorable
		date(2024, 7, 12), // already available, restore must not double-apply
	}

	days := DeriveCalendar(testListingID, date(2024, 7, 11), date(2024, 7, 12), today, nil, overrides)
	eligible, rejected := PartitionForRestore(days, requested)

	if len(eligible) != 1 || eligible[0].String() != "2024-07-11" {
		t.Errorf("eligible = %v; want [2024-07-11]", eligible)
	}
	if len(rejected) != 1 || rejected[0].Reason != RejectAlreadyAvailable {
		t.Errorf("rejected = %v; want already_available for 2024-07-12", rejected)
	}
}

func TestDateBounds(t *testing.T) {
	if _, _, ok := DateBounds(nil); ok {
		t.Error("DateBounds(nil) ok = true; want false")
	}

	requested := []utils.DateOnly{date(2024, 7, 12), date(2024, 7, 9), date(2024, 7, 15)}
	start, end, ok := DateBounds(requested)
	if !ok {
		t.Fatal("DateBounds ok = false; want true")
	}
	if start.String() != "2024-07-09" || end.String() != "2024-07-15" {
		t.Errorf("bounds = %s..%s; want 2024-07-09..2024-07-15", start, end)
	}
}
