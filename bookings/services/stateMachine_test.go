package services

import (
	"errors"
	"testing"
	"time"

	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/utils"

	"github.com/google/uuid"
)

var (
	testRenterID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testOwnerID  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func testBooking(status models.BookingStatus) *models.Booking {
	return &models.Booking{
		ID:            uuid.New(),
		BookingNumber: "BK-2024-00001",
		RenterID:      testRenterID,
		OwnerID:       testOwnerID,
		StartDate:     time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC),
		Status:        status,
		PaymentStatus: models.UnpaidPaymentStatus,
	}
}

func reason(s string) *string { return &s }

func TestRoleFor(t *testing.T) {
	b := testBooking(models.PendingBookingStatus)

	role, err := RoleFor(b, testRenterID)
	if err != nil || role != RenterRole {
		t.Fatalf("RoleFor(renter) = %v, %v; want renter, nil", role, err)
	}

	role, err = RoleFor(b, testOwnerID)
	if err != nil || role != OwnerRole {
		t.Fatalf("RoleFor(owner) = %v, %v; want owner, nil", role, err)
	}

	if _, err = RoleFor(b, uuid.New()); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("RoleFor(stranger) error = %v; want ErrNotParticipant", err)
	}
}

func TestValidateTransition(t *testing.T) {
	beforeStart := time.Date(2024, 7, 5, 12, 0, 0, 0, time.UTC)
	afterStart := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		booking func() *models.Booking
		req     TransitionRequest
		wantErr error
	}{
		{
			name:    "owner confirms pending",
			booking: func() *models.Booking { return testBooking(models.PendingBookingStatus) },
			req:     TransitionRequest{Target: models.ConfirmedBookingStatus, Role: OwnerRole, Now: beforeStart},
		},
		{
			name: "owner confirms twice",
			booking: func() *models.Booking {
				b := testBooking(models.PendingBookingStatus)
				b.OwnerConfirmationStatus = models.ConfirmedOwnerConfirmation
				return b
			},
			req:     TransitionRequest{Target: models.ConfirmedBookingStatus, Role: OwnerRole, Now: beforeStart},
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "renter cannot confirm",
			booking: func() *models.Booking { return testBooking(models.PendingBookingStatus) },
			req:     TransitionRequest{Target: models.ConfirmedBookingStatus, Role: RenterRole, Now: beforeStart},
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "renter withdraws unpaid pending booking",
			booking: func() *models.Booking { return testBooking(models.PendingBookingStatus) },
			req:     TransitionRequest{Target: models.CancelledBookingStatus, Role: RenterRole, Now: beforeStart},
		},
		{
			name: "renter cannot withdraw paid pending booking",
			booking: func() *models.Booking {
				b := testBooking(models.PendingBookingStatus)
				b.PaymentStatus = models.PaidPaymentStatus
				return b
			},
			req:     TransitionRequest{Target: models.CancelledBookingStatus, Role: RenterRole, Now: beforeStart},
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "owner rejection requires a reason",
			booking: func() *models.Booking { return testBooking(models.PendingBookingStatus) },
			req:     TransitionRequest{Target: models.CancelledBookingStatus, Role: OwnerRole, Now: beforeStart},
			wantErr: ErrReasonRequired,
		},
		{
			name:    "owner rejection with reason",
			booking: func() *models.Booking { return testBooking(models.PendingBookingStatus) },
			req:     TransitionRequest{Target: models.CancelledBookingStatus, Role: OwnerRole, Reason: reason("item broken"), Now: beforeStart},
		},
		{
			name: "renter checks in paid booking on start date",
			booking: func() *models.Booking {
				b := testBooking(models.ConfirmedBookingStatus)
				b.PaymentStatus = models.PaidPaymentStatus
				return b
			},
			req: TransitionRequest{Target: models.InProgressBookingStatus, Role: RenterRole, Now: afterStart},
		},
		{
			name:    "unpaid booking blocks renter check-in",
			booking: func() *models.Booking { return testBooking(models.ConfirmedBookingStatus) },
			req:     TransitionRequest{Target: models.InProgressBookingStatus, Role: RenterRole, Now: afterStart},
			wantErr: ErrPaymentRequired,
		},
		{
			name:    "unpaid booking does not block owner check-in",
			booking: func() *models.Booking { return testBooking(models.ConfirmedBookingStatus) },
			req:     TransitionRequest{Target: models.InProgressBookingStatus, Role: OwnerRole, Now: afterStart},
		},
		{
			name:    "check-in before start date",
			booking: func() *models.Booking { return testBooking(models.ConfirmedBookingStatus) },
			req:     TransitionRequest{Target: models.InProgressBookingStatus, Role: OwnerRole, Now: beforeStart},
			wantErr: ErrTooEarly,
		},
		{
			name:    "renter requests cancellation before start",
			booking: func() *models.Booking { return testBooking(models.ConfirmedBookingStatus) },
			req:     TransitionRequest{Target: models.CancellationRequestedBookingStatus, Role: RenterRole, Now: beforeStart},
		},
		{
			name:    "renter cannot request cancellation once started",
			booking: func() *models.Booking { return testBooking(models.ConfirmedBookingStatus) },
			req:     TransitionRequest{Target: models.CancellationRequestedBookingStatus, Role: RenterRole, Now: afterStart},
			wantErr: ErrTooLate,
		},
		{
			name:    "owner cannot request cancellation",
			booking: func() *models.Booking { return testBooking(models.ConfirmedBookingStatus) },
			req:     TransitionRequest{Target: models.CancellationRequestedBookingStatus, Role: OwnerRole, Now: beforeStart},
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "owner approves cancellation request",
			booking: func() *models.Booking { return testBooking(models.CancellationRequestedBookingStatus) },
			req:     TransitionRequest{Target: models.CancelledBookingStatus, Role: OwnerRole, Now: beforeStart},
		},
		{
			name:    "owner denial requires a reason",
			booking: func() *models.Booking { return testBooking(models.CancellationRequestedBookingStatus) },
			req:     TransitionRequest{Target: models.ConfirmedBookingStatus, Role: OwnerRole, Now: beforeStart},
			wantErr: ErrReasonRequired,
		},
		{
			name:    "renter cannot approve own cancellation request",
			booking: func() *models.Booking { return testBooking(models.CancellationRequestedBookingStatus) },
			req:     TransitionRequest{Target: models.CancelledBookingStatus, Role: RenterRole, Now: beforeStart},
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "renter checks out",
			booking: func() *models.Booking { return testBooking(models.InProgressBookingStatus) },
			req:     TransitionRequest{Target: models.CompletedBookingStatus, Role: RenterRole, Now: afterStart},
		},
		{
			name:    "owner checks out",
			booking: func() *models.Booking { return testBooking(models.InProgressBookingStatus) },
			req:     TransitionRequest{Target: models.CompletedBookingStatus, Role: OwnerRole, Now: afterStart},
		},
		{
			name:    "dispute from confirmed with reason",
			booking: func() *models.Booking { return testBooking(models.ConfirmedBookingStatus) },
			req:     TransitionRequest{Target: models.DisputedBookingStatus, Role: RenterRole, Reason: reason("item damaged"), Now: afterStart},
		},
		{
			name:    "dispute requires a reason",
			booking: func() *models.Booking { return testBooking(models.InProgressBookingStatus) },
			req:     TransitionRequest{Target: models.DisputedBookingStatus, Role: OwnerRole, Now: afterStart},
			wantErr: ErrReasonRequired,
		},
		{
			name:    "no dispute from completed",
			booking: func() *models.Booking { return testBooking(models.CompletedBookingStatus) },
			req:     TransitionRequest{Target: models.DisputedBookingStatus, Role: OwnerRole, Reason: reason("late return"), Now: afterStart},
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "completed is terminal",
			booking: func() *models.Booking { return testBooking(models.CompletedBookingStatus) },
			req:     TransitionRequest{Target: models.InProgressBookingStatus, Role: OwnerRole, Now: afterStart},
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "cancelled is terminal",
			booking: func() *models.Booking { return testBooking(models.CancelledBookingStatus) },
			req:     TransitionRequest{Target: models.ConfirmedBookingStatus, Role: OwnerRole, Now: beforeStart},
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.booking(), tt.req)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateTransition() error = %v; want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateTransition() error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyTransitionConfirm(t *testing.T) {
	b := testBooking(models.PendingBookingStatus)
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	ApplyTransition(b, TransitionRequest{Target: models.ConfirmedBookingStatus, Role: OwnerRole, Now: now})

	if b.Status != models.ConfirmedBookingStatus {
		t.Errorf("status = %s; want confirmed", b.Status)
	}
	if b.OwnerConfirmationStatus != models.ConfirmedOwnerConfirmation {
		t.Errorf("owner confirmation = %s; want confirmed", b.OwnerConfirmationStatus)
	}
	if b.ConfirmedAt == nil || !b.ConfirmedAt.Equal(now) {
		t.Errorf("confirmedAt = %v; want %v", b.ConfirmedAt, now)
	}
}

func TestApplyTransitionOwnerReject(t *testing.T) {
	b := testBooking(models.PendingBookingStatus)
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	ApplyTransition(b, TransitionRequest{
		Target: models.CancelledBookingStatus,
		Role:   OwnerRole,
		Reason: reason("not available"),
		Now:    now,
	})

	if b.Status != models.CancelledBookingStatus {
		t.Errorf("status = %s; want cancelled", b.Status)
	}
	if b.OwnerConfirmationStatus != models.RejectedOwnerConfirmation {
		t.Errorf("owner confirmation = %s; want rejected", b.OwnerConfirmationStatus)
	}
	if b.CancellationReason == nil || *b.CancellationReason != "not available" {
		t.Errorf("cancellation reason = %v; want 'not available'", b.CancellationReason)
	}
	if b.CancelledAt == nil {
		t.Error("cancelledAt not set")
	}
}

func TestApplyTransitionDenyCancellation(t *testing.T) {
	b := testBooking(models.CancellationRequestedBookingStatus)

	ApplyTransition(b, TransitionRequest{
		Target: models.ConfirmedBookingStatus,
		Role:   OwnerRole,
		Reason: reason("too close to start"),
		Now:    time.Now(),
	})

	if b.Status != models.ConfirmedBookingStatus {
		t.Errorf("status = %s; want confirmed", b.Status)
	}
	if b.CancellationReason == nil || *b.CancellationReason != "too close to start" {
		t.Errorf("denial reason = %v; want recorded", b.CancellationReason)
	}
}

func TestCheckInOnStartDateBoundary(t *testing.T) {
	// Midnight of the start date counts as started.
	b := testBooking(models.ConfirmedBookingStatus)
	b.PaymentStatus = models.PaidPaymentStatus

	onStart := utils.DateOnly(b.StartDate).Time()
	err := ValidateTransition(b, TransitionRequest{
		Target: models.InProgressBookingStatus,
		Role:   RenterRole,
		Now:    onStart,
	})
	if err != nil {
		t.Fatalf("check-in at start-of-day = %v; want nil", err)
	}
}
