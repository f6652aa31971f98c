package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vendly/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	// TaskNotificationDispatch carries one lifecycle event to the worker.
	TaskNotificationDispatch = "notification:dispatch"
	// TaskBookingReminder fires ahead of a booking's scheduled time.
	TaskBookingReminder = "booking:reminder"
)

// DispatchPayload is the queued form of a Notify call.
type DispatchPayload struct {
	RecipientID   string            `json:"recipientId"`
	RecipientRole models.Role       `json:"recipientRole"`
	Event         models.EventKind  `json:"event"`
	Data          map[string]string `json:"data,omitempty"`
}

// ReminderPayload schedules a reminder for one booking.
type ReminderPayload struct {
	BookingID string `json:"bookingId"`
}

// AsynqNotifier enqueues events onto the shared Redis queue; the worker in
// cron/ delivers them out-of-band so no booking operation blocks on delivery.
type AsynqNotifier struct {
	Client *asynq.Client
	Logger *zap.Logger
}

func NewAsynqNotifier(client *asynq.Client, logger *zap.Logger) *AsynqNotifier {
	return &AsynqNotifier{Client: client, Logger: logger}
}

func (n *AsynqNotifier) Notify(ctx context.Context, recipient models.Recipient, event models.EventKind, data map[string]string) error {
	payload, err := json.Marshal(DispatchPayload{
		RecipientID:   recipient.ID,
		RecipientRole: recipient.Role,
		Event:         event,
		Data:          data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	task := asynq.NewTask(TaskNotificationDispatch, payload)
	if _, err := n.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	n.Logger.Debug("notification enqueued",
		zap.String("recipient", recipient.ID),
		zap.String("event", string(event)),
	)
	return nil
}

// ScheduleReminder enqueues a booking reminder to fire at the given time.
// Reminders for times already past are dropped silently.
func (n *AsynqNotifier) ScheduleReminder(ctx context.Context, bookingID string, at time.Time) error {
	if !at.After(time.Now()) {
		return nil
	}
	payload, err := json.Marshal(ReminderPayload{BookingID: bookingID})
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}
	task := asynq.NewTask(TaskBookingReminder, payload)
	if _, err := n.Client.EnqueueContext(ctx, task, asynq.ProcessAt(at), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}

// LogNotifier writes events to the log only. Used in development and tests.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Notify(_ context.Context, recipient models.Recipient, event models.EventKind, data map[string]string) error {
	n.Logger.Info("notification",
		zap.String("recipient", recipient.ID),
		zap.String("role", string(recipient.Role)),
		zap.String("event", string(event)),
		zap.Any("data", data),
	)
	return nil
}
