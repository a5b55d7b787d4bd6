package services

import (
	"context"
	"fmt"
	"time"

	"rental-marketplace-backend/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// inflightTTL bounds how long a crashed request can hold the guard.
	inflightTTL = 30 * time.Second

	// confirmGraceTTL suppresses duplicate confirm requests right after a
	// successful confirmation, so the counterparty is not notified twice.
	// Layered on top of the in-flight guard, which only covers the round
	// trip itself.
	confirmGraceTTL = 10 * time.Second
)

// InflightGuard serializes mutating transitions per booking id. A second
// request while one is pending is ignored, not queued.
type InflightGuard struct {
	client *redis.Client
}

func NewInflightGuard(client *redis.Client) *InflightGuard {
	return &InflightGuard{client: client}
}

func inflightKey(bookingID uuid.UUID) string {
	return fmt.Sprintf("booking:inflight:%s", bookingID)
}

func confirmGraceKey(bookingID uuid.UUID) string {
	return fmt.Sprintf("booking:confirm_grace:%s", bookingID)
}

// Acquire returns ErrTransitionInFlight when another mutation already holds
// the booking.
func (g *InflightGuard) Acquire(ctx context.Context, bookingID uuid.UUID) error {
	ok, err := g.client.SetNX(ctx, inflightKey(bookingID), "1", inflightTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire in-flight guard: %w", err)
	}
	if !ok {
		return ErrTransitionInFlight
	}
	return nil
}

func (g *InflightGuard) Release(ctx context.Context, bookingID uuid.UUID) {
	if err := g.client.Del(ctx, inflightKey(bookingID)).Err(); err != nil {
		config.Logger.Error("Failed to release in-flight guard",
			zap.String("bookingID", bookingID.String()),
			zap.Error(err))
	}
}

// MarkConfirmGrace is called after a successful pending -> confirmed commit.
func (g *InflightGuard) MarkConfirmGrace(ctx context.Context, bookingID uuid.UUID) {
	if err := g.client.Set(ctx, confirmGraceKey(bookingID), "1", confirmGraceTTL).Err(); err != nil {
		config.Logger.Error("Failed to set confirm grace key",
			zap.String("bookingID", bookingID.String()),
			zap.Error(err))
	}
}

// InConfirmGrace reports whether a duplicate confirm should be treated as a
// harmless no-op. Redis trouble degrades to "no grace", the transition table
// still rejects the duplicate.
func (g *InflightGuard) InConfirmGrace(ctx context.Context, bookingID uuid.UUID) bool {
	n, err := g.client.Exists(ctx, confirmGraceKey(bookingID)).Result()
	if err != nil {
		config.Logger.Debug("Confirm grace lookup failed",
			zap.String("bookingID", bookingID.String()),
			zap.Error(err))
		return false
	}
	return n > 0
}
