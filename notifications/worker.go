package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"rental-marketplace-backend/config"
	"rental-marketplace-backend/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueue pushes a task best-effort: a queue outage must never fail the
// booking or calendar operation that produced the event.
func Enqueue(client *asynq.Client, task *asynq.Task) {
	if client == nil || task == nil {
		return
	}
	info, err := client.Enqueue(task)
	if err != nil {
		config.Logger.Error("Failed to enqueue notification task",
			zap.String("task_type", task.Type()),
			zap.Error(err))
		return
	}
	config.Logger.Debug("Notification task enqueued",
		zap.String("task_type", task.Type()),
		zap.String("task_id", info.ID))
}

// StartWorker runs the asynq server consuming produced events. Returns the
// server so main can shut it down.
func StartWorker(redisOpt asynq.RedisClientOpt) *asynq.Server {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingTransitioned, HandleBookingTransitioned)
	mux.HandleFunc(TypeReservationChanged, HandleReservationChanged)
	mux.HandleFunc(TypeAvailabilityChanged, HandleAvailabilityChanged)

	go func() {
		if err := srv.Run(mux); err != nil {
			config.Logger.Error("Notification worker stopped", zap.Error(err))
		}
	}()

	return srv
}

// HandleBookingTransitioned notifies the counterparty of a status change.
func HandleBookingTransitioned(ctx context.Context, t *asynq.Task) error {
	var p BookingTransitionedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal booking transition payload: %w", err)
	}

	config.Logger.Info("Booking transitioned",
		zap.String("booking_id", p.BookingID.String()),
		zap.String("booking_number", p.BookingNumber),
		zap.String("from_status", p.FromStatus),
		zap.String("to_status", p.ToStatus),
		zap.String("actor_id", p.ActorID.String()))

	// Counterparty contact lookup is owned by the external profile service;
	// NOTIFY_FALLBACK_EMAIL covers deployments without it.
	if to := config.GetEnv("NOTIFY_FALLBACK_EMAIL"); to != "" {
		message := fmt.Sprintf("Booking %s moved from %s to %s.", p.BookingNumber, p.FromStatus, p.ToStatus)
		if err := utils.SendEmail(to, message, "Booking update"); err != nil {
			config.Logger.Error("Failed to send booking notification email",
				zap.String("booking_number", p.BookingNumber),
				zap.Error(err))
		}
	}

	return nil
}

func HandleReservationChanged(ctx context.Context, t *asynq.Task) error {
	var p ReservationChangedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal reservation change payload: %w", err)
	}

	config.Logger.Info("Reservation set changed",
		zap.String("user_id", p.UserID.String()),
		zap.String("action", p.Action),
		zap.Int("line_count", p.LineCount))
	return nil
}

func HandleAvailabilityChanged(ctx context.Context, t *asynq.Task) error {
	var p AvailabilityChangedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal availability change payload: %w", err)
	}

	config.Logger.Info("Listing availability changed",
		zap.String("listing_id", p.ListingID.String()),
		zap.String("action", p.Action),
		zap.Int("date_count", len(p.Dates)))
	return nil
}
