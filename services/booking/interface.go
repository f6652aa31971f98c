package booking

import (
	"context"
	"time"

	bookingRepo "vendly/database/repository/booking"
	paymentRepo "vendly/database/repository/payment"
	serviceRepo "vendly/database/repository/service"
	"vendly/models"
	"vendly/services/notification"
	"vendly/services/payment"
	"vendly/services/scheduling"

	"go.uber.org/zap"
)

// CreateBookingRequest is the input for a new booking. Exactly one of
// CustomerID or Guest must be set.
type CreateBookingRequest struct {
	VendorID     string              `json:"vendorId" binding:"required"`
	ServiceID    string              `json:"serviceId" binding:"required"`
	CustomerID   string              `json:"customerId"`
	Guest        *models.GuestInfo   `json:"guest"`
	ScheduledAt  time.Time           `json:"scheduledAt" binding:"required"`
	Duration     int                 `json:"duration"` // minutes; 0 means the service duration
	LocationType models.LocationType `json:"locationType"`
	Address      *models.Address     `json:"address"`
	Notes        string              `json:"notes"`
}

// UpdateBookingRequest carries the mutable free-text fields. Which fields an
// actor may change is decided by the role they act as, not inferred from the
// field set.
type UpdateBookingRequest struct {
	CustomerNotes *string         `json:"customerNotes"`
	VendorNotes   *string         `json:"vendorNotes"`
	Address       *models.Address `json:"address"`
}

// CancellationResult reports the outcome of a cancellation: the tier applied
// and the refund issued against the amount already paid.
type CancellationResult struct {
	Booking      *models.Booking `json:"booking"`
	HoursNotice  float64         `json:"hoursNotice"`
	RefundRate   float64         `json:"refundRate"`
	PaidAmount   float64         `json:"paidAmount"`
	RefundAmount float64         `json:"refundAmount"`
}

// Service drives a booking through its lifecycle. All transitions validate
// their guard first; a failed guard mutates nothing.
type Service interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, id string, actor models.Actor) (*models.Booking, error)
	StartBooking(ctx context.Context, id string, actor models.Actor) (*models.Booking, error)
	CompleteBooking(ctx context.Context, id string, actor models.Actor) (*models.Booking, error)
	CancelBooking(ctx context.Context, id string, actor models.Actor, reason string) (*CancellationResult, error)
	RescheduleBooking(ctx context.Context, id string, newStart time.Time, actor models.Actor) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id string, actor models.Actor, req UpdateBookingRequest) (*models.Booking, error)
	InitiateDepositPayment(ctx context.Context, bookingID string) (*models.Payment, error)
}

// DefaultService is the production implementation.
type DefaultService struct {
	Repo            bookingRepo.Repository
	Payments        paymentRepo.Repository
	Services        serviceRepo.Repository
	Checker         scheduling.ConflictChecker
	Gateway         payment.Gateway
	Reconciler      payment.Reconciler
	Notifier        notification.Notifier
	Reminders       ReminderScheduler // optional; nil disables reminders
	Logger          *zap.Logger
	PlatformFeeRate float64
	Currency        string
	Now             func() time.Time // injectable clock; nil means time.Now
}

// ReminderScheduler enqueues a booking reminder to fire at a given time.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, bookingID string, at time.Time) error
}

func (s *DefaultService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
