package bookingRepo

import (
	"context"
	"errors"
	"time"

	"vendly/models"
)

var (
	// ErrBookingNotFound is returned when a booking id or reference does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrCapacityExhausted is returned by the transactional create/reschedule
	// paths when the overlap count has reached slot capacity.
	ErrCapacityExhausted = errors.New("slot capacity exhausted")
	// ErrDuplicateReference is returned when a generated reference code collides.
	ErrDuplicateReference = errors.New("duplicate booking reference")
	// ErrStatusConflict is returned by the guarded reschedule/cancel writes
	// when the booking exists but a concurrent transition already moved it
	// out of the expected status.
	ErrStatusConflict = errors.New("booking status changed concurrently")
)

// Repository persists bookings. The create and reschedule operations carry
// the capacity check inside the same transaction as the write, so two
// concurrent requests cannot both observe free capacity and both commit.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)
	Update(ctx context.Context, b *models.Booking) error
	ListByVendor(ctx context.Context, vendorID string, from, to time.Time) ([]models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)

	// CountOverlapping counts bookings for the vendor in an active status
	// whose interval overlaps [start, end), excluding excludeID when set.
	CountOverlapping(ctx context.Context, vendorID string, start, end time.Time, excludeID string) (int, error)

	// CreateWithCapacityCheck re-counts overlaps and inserts atomically.
	// Returns ErrCapacityExhausted when the window is saturated.
	CreateWithCapacityCheck(ctx context.Context, b *models.Booking, capacity int) error

	// RescheduleWithCapacityCheck moves a pending booking to a new start,
	// with the same atomic overlap discipline (the booking itself excluded).
	// Returns ErrStatusConflict when the booking is no longer pending.
	RescheduleWithCapacityCheck(ctx context.Context, b *models.Booking, newStart time.Time, capacity int) error

	// CancelWithPaidSum marks the booking cancelled and returns the sum of
	// completed payments read inside the same transaction, so the refund is
	// never computed against a payment that completes concurrently. Returns
	// ErrStatusConflict when the booking already left pending/confirmed.
	CancelWithPaidSum(ctx context.Context, b *models.Booking) (float64, error)

	// ListStartingBetween returns active bookings scheduled inside [from, to),
	// used by the reminder worker.
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)
}
