package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"rental-marketplace-backend/config"
	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	config.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// fakeLineStore keeps lines in memory and can be told to fail.
type fakeLineStore struct {
	lines    map[uuid.UUID][]ReservationLine
	loadErr  error
	saveErr  error
	clearErr error
	saves    int
}

func newFakeLineStore() *fakeLineStore {
	return &fakeLineStore{lines: make(map[uuid.UUID][]ReservationLine)}
}

func (f *fakeLineStore) Load(ctx context.Context, userID uuid.UUID) ([]ReservationLine, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.lines[userID], nil
}

func (f *fakeLineStore) Save(ctx context.Context, userID uuid.UUID, lines []ReservationLine) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	stored := make([]ReservationLine, len(lines))
	copy(stored, lines)
	f.lines[userID] = stored
	return nil
}

func (f *fakeLineStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.lines, userID)
	return nil
}

var cartUserID = uuid.MustParse("44444444-4444-4444-4444-444444444444")

func mustDate(t *testing.T, s string) utils.DateOnly {
	t.Helper()
	d, err := utils.ParseDateOnly(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func pickupLine(t *testing.T, listingID uuid.UUID, start, end string, pricePerDay int64) ReservationLine {
	t.Helper()
	return ReservationLine{
		ListingID:         listingID,
		ListingTitle:      "Cordless drill",
		OwnerID:           uuid.New(),
		StartDate:         mustDate(t, start),
		EndDate:           mustDate(t, end),
		PricePerDay:       decimal.NewFromInt(pricePerDay),
		Currency:          "USD",
		FulfillmentMethod: models.PickupFulfillment,
	}
}

func TestDurationDays(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"2024-06-01", "2024-06-04", 3},
		{"2024-06-01", "2024-06-02", 1},
		{"2024-06-01", "2024-06-01", 1},
		{"2024-06-01", "2024-06-15", 14},
	}

	for _, tt := range tests {
		got := DurationDays(mustDate(t, tt.start), mustDate(t, tt.end))
		if got != tt.want {
			t.Errorf("DurationDays(%s, %s) = %d; want %d", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestRecompute(t *testing.T) {
	// 3 days at 50/day.
	line := pickupLine(t, uuid.New(), "2024-06-01", "2024-06-04", 50)
	line.Recompute()
	if line.DurationDays != 3 {
		t.Errorf("durationDays = %d; want 3", line.DurationDays)
	}
	if !line.TotalPrice.Equal(decimal.NewFromInt(150)) {
		t.Errorf("totalPrice = %s; want 150", line.TotalPrice)
	}

	// Delivery adds the fee; pickup never does.
	addr := "12 Main St"
	line.FulfillmentMethod = models.DeliveryFulfillment
	line.FulfillmentAddress = &addr
	line.DeliveryFee = decimal.NewFromInt(20)
	line.Recompute()
	if !line.TotalPrice.Equal(decimal.NewFromInt(170)) {
		t.Errorf("totalPrice with delivery = %s; want 170", line.TotalPrice)
	}

	line.FulfillmentMethod = models.PickupFulfillment
	line.Recompute()
	if !line.TotalPrice.Equal(decimal.NewFromInt(150)) {
		t.Errorf("totalPrice back on pickup = %s; want 150", line.TotalPrice)
	}
}

func TestValidate(t *testing.T) {
	addr := "12 Main St"
	spot := "Central station"

	tests := []struct {
		name   string
		mutate func(l *ReservationLine)
		valid  bool
	}{
		{"valid pickup line", func(l *ReservationLine) {}, true},
		{"missing listing", func(l *ReservationLine) { l.ListingID = uuid.Nil }, false},
		{"end equals start", func(l *ReservationLine) { l.EndDate = l.StartDate }, false},
		{"end before start", func(l *ReservationLine) {
			l.EndDate = mustDate(t, "2024-05-30")
		}, false},
		{"negative price", func(l *ReservationLine) {
			l.PricePerDay = decimal.NewFromInt(-1)
		}, false},
		{"delivery without address", func(l *ReservationLine) {
			l.FulfillmentMethod = models.DeliveryFulfillment
		}, false},
		{"delivery with address", func(l *ReservationLine) {
			l.FulfillmentMethod = models.DeliveryFulfillment
			l.FulfillmentAddress = &addr
		}, true},
		{"meet in public without location", func(l *ReservationLine) {
			l.FulfillmentMethod = models.MeetPublicFulfillment
		}, false},
		{"meet in public with location", func(l *ReservationLine) {
			l.FulfillmentMethod = models.MeetPublicFulfillment
			l.MeetLocation = &spot
		}, true},
		{"unknown fulfillment method", func(l *ReservationLine) {
			l.FulfillmentMethod = "teleport"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := pickupLine(t, uuid.New(), "2024-06-01", "2024-06-04", 50)
			tt.mutate(&line)
			err := line.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v; want nil", err)
			}
			if !tt.valid && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() = %v; want ErrValidation", err)
			}
		})
	}
}

func TestAddOrUpdateMergesSameRange(t *testing.T) {
	store := newFakeLineStore()
	agg := NewAggregator(store)
	ctx := context.Background()
	listingID := uuid.New()

	first, merged, err := agg.AddOrUpdate(ctx, cartUserID, pickupLine(t, listingID, "2024-06-01", "2024-06-04", 50))
	if err != nil || merged {
		t.Fatalf("first add: merged=%v, err=%v; want false, nil", merged, err)
	}

	// Same listing and range with a new price overwrites in place.
	second, merged, err := agg.AddOrUpdate(ctx, cartUserID, pickupLine(t, listingID, "2024-06-01", "2024-06-04", 60))
	if err != nil || !merged {
		t.Fatalf("second add: merged=%v, err=%v; want true, nil", merged, err)
	}
	if second.ID != first.ID {
		t.Errorf("merge changed line id %s -> %s", first.ID, second.ID)
	}
	if !second.TotalPrice.Equal(decimal.NewFromInt(180)) {
		t.Errorf("merged total = %s; want 180", second.TotalPrice)
	}

	lines, err := agg.Lines(ctx, cartUserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("line count = %d; want 1", len(lines))
	}
}

func TestAddOrUpdateAppendsDifferentRange(t *testing.T) {
	store := newFakeLineStore()
	agg := NewAggregator(store)
	ctx := context.Background()
	listingID := uuid.New()

	if _, _, err := agg.AddOrUpdate(ctx, cartUserID, pickupLine(t, listingID, "2024-06-01", "2024-06-04", 50)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := agg.AddOrUpdate(ctx, cartUserID, pickupLine(t, listingID, "2024-06-10", "2024-06-12", 50)); err != nil {
		t.Fatal(err)
	}

	count, err := agg.LineCount(ctx, cartUserID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("line count = %d; want 2", count)
	}

	total, err := agg.TotalPrice(ctx, cartUserID)
	if err != nil {
		t.Fatal(err)
	}
	// 3 days + 2 days at 50/day.
	if !total.Equal(decimal.NewFromInt(250)) {
		t.Errorf("total = %s; want 250", total)
	}
}

func TestUpdatePatchesAndRecomputes(t *testing.T) {
	store := newFakeLineStore()
	agg := NewAggregator(store)
	ctx := context.Background()

	line, _, err := agg.AddOrUpdate(ctx, cartUserID, pickupLine(t, uuid.New(), "2024-06-01", "2024-06-04", 50))
	if err != nil {
		t.Fatal(err)
	}

	newEnd := mustDate(t, "2024-06-06")
	updated, err := agg.Update(ctx, cartUserID, line.ID, LineUpdate{EndDate: &newEnd})
	if err != nil {
		t.Fatal(err)
	}
	if updated.DurationDays != 5 {
		t.Errorf("durationDays = %d; want 5", updated.DurationDays)
	}
	if !updated.TotalPrice.Equal(decimal.NewFromInt(250)) {
		t.Errorf("total = %s; want 250", updated.TotalPrice)
	}

	// Invalid patch is rejected without touching the line.
	badEnd := mustDate(t, "2024-05-01")
	if _, err := agg.Update(ctx, cartUserID, line.ID, LineUpdate{EndDate: &badEnd}); !errors.Is(err, ErrValidation) {
		t.Errorf("invalid patch error = %v; want ErrValidation", err)
	}
	lines, _ := agg.Lines(ctx, cartUserID)
	if lines[0].DurationDays != 5 {
		t.Errorf("line mutated by rejected patch: durationDays = %d; want 5", lines[0].DurationDays)
	}

	if _, err := agg.Update(ctx, cartUserID, "no-such-line", LineUpdate{EndDate: &newEnd}); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("unknown line error = %v; want ErrLineNotFound", err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newFakeLineStore()
	agg := NewAggregator(store)
	ctx := context.Background()

	line, _, err := agg.AddOrUpdate(ctx, cartUserID, pickupLine(t, uuid.New(), "2024-06-01", "2024-06-04", 50))
	if err != nil {
		t.Fatal(err)
	}

	if err := agg.Remove(ctx, cartUserID, line.ID); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := agg.Remove(ctx, cartUserID, line.ID); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	count, _ := agg.LineCount(ctx, cartUserID)
	if count != 0 {
		t.Errorf("line count after removes = %d; want 0", count)
	}
}

func TestClearErasesStore(t *testing.T) {
	store := newFakeLineStore()
	agg := NewAggregator(store)
	ctx := context.Background()

	if _, _, err := agg.AddOrUpdate(ctx, cartUserID, pickupLine(t, uuid.New(), "2024-06-01", "2024-06-04", 50)); err != nil {
		t.Fatal(err)
	}
	if err := agg.Clear(ctx, cartUserID); err != nil {
		t.Fatal(err)
	}

	if got := store.lines[cartUserID]; len(got) != 0 {
		t.Errorf("store still holds %d lines after clear", len(got))
	}
	count, _ := agg.LineCount(ctx, cartUserID)
	if count != 0 {
		t.Errorf("line count after clear = %d; want 0", count)
	}
}

func TestContains(t *testing.T) {
	store := newFakeLineStore()
	agg := NewAggregator(store)
	ctx := context.Background()
	listingID := uuid.New()

	if _, _, err := agg.AddOrUpdate(ctx, cartUserID, pickupLine(t, listingID, "2024-06-01", "2024-06-04", 50)); err != nil {
		t.Fatal(err)
	}

	got, err := agg.Contains(ctx, cartUserID, listingID)
	if err != nil || !got {
		t.Errorf("Contains(listing in cart) = %v, %v; want true, nil", got, err)
	}
	got, err = agg.Contains(ctx, cartUserID, uuid.New())
	if err != nil || got {
		t.Errorf("Contains(other listing) = %v, %v; want false, nil", got, err)
	}
}

func TestLoadsPersistedLinesLazily(t *testing.T) {
	store := newFakeLineStore()
	persisted := pickupLine(t, uuid.New(), "2024-06-01", "2024-06-04", 50)
	persisted.ID = "persisted-line"
	persisted.Recompute()
	store.lines[cartUserID] = []ReservationLine{persisted}

	agg := NewAggregator(store)
	lines, err := agg.Lines(context.Background(), cartUserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].ID != "persisted-line" {
		t.Errorf("lines = %v; want the persisted line", lines)
	}
}

func TestSaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	store := newFakeLineStore()
	store.saveErr = errors.New("redis down")
	agg := NewAggregator(store)
	ctx := context.Background()

	line, _, err := agg.AddOrUpdate(ctx, cartUserID, pickupLine(t, uuid.New(), "2024-06-01", "2024-06-04", 50))
	if err != nil {
		t.Fatalf("add with failing store: %v; want nil", err)
	}

	lines, err := agg.Lines(ctx, cartUserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].ID != line.ID {
		t.Errorf("in-memory set lost after failed save: %v", lines)
	}
}

func TestLoadFailurePropagates(t *testing.T) {
	store := newFakeLineStore()
	store.loadErr = errors.New("redis down")
	agg := NewAggregator(store)

	if _, _, err := agg.AddOrUpdate(context.Background(), cartUserID, pickupLine(t, uuid.New(), "2024-06-01", "2024-06-04", 50)); err == nil {
		t.Error("add with failing load succeeded; want error")
	}
}
