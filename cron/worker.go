package cron

import (
	"context"
	"encoding/json"
	"time"

	"vendly/config"
	bookingRepo "vendly/database/repository/booking"
	"vendly/models"
	"vendly/services/notification"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker consumes the notification and reminder queues. Dispatch delivers a
// single queued event; reminders load the booking first so a cancelled one
// never pings anybody.
type Worker struct {
	Bookings bookingRepo.Repository
	Notifier notification.Notifier
	Logger   *zap.Logger
}

// Run starts the asynq server in the background and retries startup a few
// times before giving up.
func (w *Worker) Run() {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TaskNotificationDispatch, w.handleDispatch)
	mux.HandleFunc(notification.TaskBookingReminder, w.handleReminder)

	go func() {
		w.Logger.Info("starting notification worker")
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if err := srv.Run(mux); err != nil {
				w.Logger.Error("worker failed to start",
					zap.Int("attempt", attempt),
					zap.Int("maxAttempts", maxAttempts),
					zap.Error(err),
				)
				if attempt == maxAttempts {
					w.Logger.Fatal("worker startup attempts exhausted")
				}
				time.Sleep(time.Duration(attempt*2) * time.Second)
				continue
			}
			break
		}
	}()
}

// handleDispatch delivers one queued lifecycle event. Delivery here is the
// log channel; push and email transports hang off the same hook.
func (w *Worker) handleDispatch(_ context.Context, task *asynq.Task) error {
	var p notification.DispatchPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		w.Logger.Error("invalid dispatch payload", zap.Error(err))
		return err
	}

	w.Logger.Info("delivering notification",
		zap.String("recipient", p.RecipientID),
		zap.String("role", string(p.RecipientRole)),
		zap.String("event", string(p.Event)),
		zap.Any("data", p.Data),
	)
	return nil
}

// handleReminder notifies both parties ahead of the scheduled time. Bookings
// that were cancelled or already started since scheduling are skipped.
func (w *Worker) handleReminder(ctx context.Context, task *asynq.Task) error {
	var p notification.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		w.Logger.Error("invalid reminder payload", zap.Error(err))
		return err
	}

	b, err := w.Bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		if err == bookingRepo.ErrBookingNotFound {
			w.Logger.Warn("reminder for missing booking", zap.String("bookingID", p.BookingID))
			return nil
		}
		return err
	}
	if b.Status != models.BookingConfirmed {
		w.Logger.Debug("skipping reminder, booking no longer confirmed",
			zap.String("bookingID", b.ID),
			zap.String("status", string(b.Status)),
		)
		return nil
	}

	data := map[string]string{
		"bookingId":   b.ID,
		"reference":   b.Reference,
		"scheduledAt": b.ScheduledAt.Format(time.RFC3339),
	}
	recipients := []models.Recipient{{ID: b.VendorID, Role: models.RoleVendor}}
	if b.CustomerID != "" {
		recipients = append(recipients, models.Recipient{ID: b.CustomerID, Role: models.RoleCustomer})
	}
	for _, rcpt := range recipients {
		if err := w.Notifier.Notify(ctx, rcpt, models.EventBookingReminder, data); err != nil {
			w.Logger.Warn("reminder delivery failed",
				zap.String("recipient", rcpt.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}
