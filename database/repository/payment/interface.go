package paymentRepo

import (
	"context"
	"errors"
	"time"

	"vendly/models"
)

// ErrPaymentNotFound is returned when a payment or charge id does not exist.
var ErrPaymentNotFound = errors.New("payment not found")

// StatusUpdate is one reconciliation step applied to a payment row.
type StatusUpdate struct {
	Status       models.PaymentStatus
	ProcessedAt  *time.Time
	RefundedAt   *time.Time
	RefundAmount float64
	RefundReason string
	RawResponse  string
}

// Repository persists payment attempts keyed by the provider charge id.
type Repository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByChargeID(ctx context.Context, chargeID string) (*models.Payment, error)
	SetChargeID(ctx context.Context, paymentID, chargeID string) error
	ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error)
	SumCompletedForBooking(ctx context.Context, bookingID string) (float64, error)

	// ApplyStatus advances the payment keyed by chargeID to upd.Status using a
	// guarded single-document update: the write only lands when the current
	// status ranks strictly below the new one, which both serializes
	// concurrent webhooks for the same charge and makes replays no-ops.
	// Returns the resulting payment and whether the update was applied.
	ApplyStatus(ctx context.Context, chargeID string, upd StatusUpdate) (*models.Payment, bool, error)
}
