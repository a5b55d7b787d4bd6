package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rental-marketplace-backend/config"
	"rental-marketplace-backend/db/models"
	"rental-marketplace-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LineStore is the durable home of a user's line set. Injected so tests can
// swap in a double; the redis implementation lives in repositories.
type LineStore interface {
	Load(ctx context.Context, userID uuid.UUID) ([]ReservationLine, error)
	Save(ctx context.Context, userID uuid.UUID, lines []ReservationLine) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// LineUpdate is a partial edit of an existing line. Nil fields are left
// untouched; date or price changes recompute duration and total.
type LineUpdate struct {
	StartDate          *utils.DateOnly
	EndDate            *utils.DateOnly
	PricePerDay        *decimal.Decimal
	FulfillmentMethod  *models.FulfillmentMethod
	FulfillmentAddress *string
	MeetLocation       *string
	TimeWindow         *string
	Instructions       *string
}

// Aggregator maintains each user's working set of not-yet-committed rental
// requests. In-memory state is authoritative for the session; the store is
// loaded lazily per user and written best-effort after every mutation.
// Single-writer per user; concurrent sessions are last-writer-wins.
type Aggregator struct {
	store LineStore

	mu     sync.Mutex
	cache  map[uuid.UUID][]ReservationLine
	loaded map[uuid.UUID]bool
}

func NewAggregator(store LineStore) *Aggregator {
	return &Aggregator{
		store:  store,
		cache:  make(map[uuid.UUID][]ReservationLine),
		loaded: make(map[uuid.UUID]bool),
	}
}

// ensureLoaded must be called with the mutex held.
func (a *Aggregator) ensureLoaded(ctx context.Context, userID uuid.UUID) error {
	if a.loaded[userID] {
		return nil
	}
	lines, err := a.store.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load reservation lines: %w", err)
	}
	a.cache[userID] = lines
	a.loaded[userID] = true
	return nil
}

// persist is best-effort durability: a failed save is logged and the
// in-memory set stays authoritative. The aggregator is advisory, not the
// system of record.
func (a *Aggregator) persist(ctx context.Context, userID uuid.UUID) {
	if err := a.store.Save(ctx, userID, a.cache[userID]); err != nil {
		config.Logger.Error("Failed to persist reservation lines",
			zap.String("userID", userID.String()),
			zap.Error(err))
	}
}

// AddOrUpdate appends a new line, or overwrites the line with the same
// (listing, date range) in place. Returns the stored line and whether an
// existing line was merged.
func (a *Aggregator) AddOrUpdate(ctx context.Context, userID uuid.UUID, line ReservationLine) (ReservationLine, bool, error) {
	if err := line.Validate(); err != nil {
		return ReservationLine{}, false, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(ctx, userID); err != nil {
		return ReservationLine{}, false, err
	}

	line.Recompute()
	now := time.Now()
	line.UpdatedAt = now

	lines := a.cache[userID]
	for i := range lines {
		if lines[i].MergeKey() == line.MergeKey() {
			// Keep the original identity and position, overwrite the rest.
			line.ID = lines[i].ID
			line.CreatedAt = lines[i].CreatedAt
			lines[i] = line
			a.persist(ctx, userID)
			return line, true, nil
		}
	}

	line.ID = NewLineID(line.ListingID)
	line.CreatedAt = now
	a.cache[userID] = append(lines, line)
	a.persist(ctx, userID)
	return line, false, nil
}

// Update merges a partial edit into one line.
func (a *Aggregator) Update(ctx context.Context, userID uuid.UUID, lineID string, patch LineUpdate) (ReservationLine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(ctx, userID); err != nil {
		return ReservationLine{}, err
	}

	lines := a.cache[userID]
	for i := range lines {
		if lines[i].ID != lineID {
			continue
		}

		updated := lines[i]
		if patch.StartDate != nil {
			updated.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			updated.EndDate = *patch.EndDate
		}
		if patch.PricePerDay != nil {
			updated.PricePerDay = *patch.PricePerDay
		}
		if patch.FulfillmentMethod != nil {
			updated.FulfillmentMethod = *patch.FulfillmentMethod
		}
		if patch.FulfillmentAddress != nil {
			updated.FulfillmentAddress = patch.FulfillmentAddress
		}
		if patch.MeetLocation != nil {
			updated.MeetLocation = patch.MeetLocation
		}
		if patch.TimeWindow != nil {
			updated.TimeWindow = patch.TimeWindow
		}
		if patch.Instructions != nil {
			updated.Instructions = patch.Instructions
		}

		if err := updated.Validate(); err != nil {
			return ReservationLine{}, err
		}
		updated.Recompute()
		updated.UpdatedAt = time.Now()

		lines[i] = updated
		a.persist(ctx, userID)
		return updated, nil
	}

	return ReservationLine{}, ErrLineNotFound
}

// Remove deletes one line. Removing an absent line is a no-op.
func (a *Aggregator) Remove(ctx context.Context, userID uuid.UUID, lineID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(ctx, userID); err != nil {
		return err
	}

	lines := a.cache[userID]
	for i := range lines {
		if lines[i].ID == lineID {
			a.cache[userID] = append(lines[:i], lines[i+1:]...)
			a.persist(ctx, userID)
			return nil
		}
	}
	return nil
}

// Clear empties the set and erases persisted state.
func (a *Aggregator) Clear(ctx context.Context, userID uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cache[userID] = nil
	a.loaded[userID] = true

	if err := a.store.Clear(ctx, userID); err != nil {
		config.Logger.Error("Failed to erase persisted reservation lines",
			zap.String("userID", userID.String()),
			zap.Error(err))
	}
	return nil
}

// Lines returns a copy of the user's current line set.
func (a *Aggregator) Lines(ctx context.Context, userID uuid.UUID) ([]ReservationLine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(ctx, userID); err != nil {
		return nil, err
	}

	lines := make([]ReservationLine, len(a.cache[userID]))
	copy(lines, a.cache[userID])
	return lines, nil
}

// TotalPrice sums every line's total.
func (a *Aggregator) TotalPrice(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	lines, err := a.Lines(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalPrice)
	}
	return total, nil
}

func (a *Aggregator) LineCount(ctx context.Context, userID uuid.UUID) (int, error) {
	lines, err := a.Lines(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

// Contains reports whether any line targets the listing.
func (a *Aggregator) Contains(ctx context.Context, userID uuid.UUID, listingID uuid.UUID) (bool, error) {
	lines, err := a.Lines(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, l := range lines {
		if l.ListingID == listingID {
			return true, nil
		}
	}
	return false, nil
}
