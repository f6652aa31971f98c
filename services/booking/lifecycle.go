package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "vendly/database/repository/booking"
	"vendly/models"
	"vendly/services/scheduling"
	"vendly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reminderLead is how long before the scheduled time the reminder fires.
const reminderLead = 24 * time.Hour

// CreateBooking validates the request against the availability index and the
// existing load, prices it, and inserts it atomically with the capacity
// re-check. On a capacity race the whole check is retried once before the
// rejection surfaces.
func (s *DefaultService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	svc, err := s.Services.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.VendorID != req.VendorID {
		return nil, &ValidationError{Field: "serviceId", Detail: "service does not belong to vendor"}
	}

	duration := req.Duration
	if duration <= 0 {
		duration = svc.EffectiveDuration()
	}

	total, deposit := ComputePrice(*svc, duration)
	currency := svc.Currency
	if currency == "" {
		currency = s.Currency
	}

	b := &models.Booking{
		ID:            uuid.New().String(),
		Reference:     utils.GenerateBookingReference(),
		VendorID:      req.VendorID,
		CustomerID:    req.CustomerID,
		Guest:         req.Guest,
		ServiceID:     req.ServiceID,
		ScheduledAt:   req.ScheduledAt,
		Duration:      duration,
		TotalAmount:   total,
		DepositAmount: deposit,
		Currency:      currency,
		Status:        models.BookingPending,
		PaymentStatus: models.BookingUnpaid,
		LocationType:  req.LocationType,
		Address:       req.Address,
		CustomerNotes: req.Notes,
	}
	if b.LocationType == "" {
		b.LocationType = models.LocationVendor
	}
	if err := b.Validate(); err != nil {
		return nil, &ValidationError{Field: "booking", Detail: err.Error()}
	}

	if err := s.createWithRetry(ctx, b, req.ServiceID); err != nil {
		return nil, err
	}

	s.Logger.Info("booking created",
		zap.String("bookingID", b.ID),
		zap.String("reference", b.Reference),
		zap.String("vendorID", b.VendorID),
		zap.Time("scheduledAt", b.ScheduledAt),
	)
	s.notifyParticipants(ctx, b, models.EventBookingCreated)
	return b, nil
}

// createWithRetry runs the conflict check and the transactional insert, and
// retries the whole sequence once when the insert loses a capacity or
// reference race.
func (s *DefaultService) createWithRetry(ctx context.Context, b *models.Booking, serviceID string) error {
	for attempt := 0; ; attempt++ {
		slot, err := s.Checker.CheckAvailability(ctx, b.VendorID, serviceID, b.ScheduledAt, b.Duration, "")
		if err != nil {
			return err
		}

		err = s.Repo.CreateWithCapacityCheck(ctx, b, slot.Capacity)
		if err == nil {
			return nil
		}
		if err == bookingRepo.ErrDuplicateReference {
			b.Reference = utils.GenerateBookingReference()
		} else if err != bookingRepo.ErrCapacityExhausted {
			return err
		}
		if attempt >= 1 {
			if err == bookingRepo.ErrCapacityExhausted {
				return &scheduling.Error{Reason: scheduling.SlotFull, Detail: "capacity taken by a concurrent booking"}
			}
			return fmt.Errorf("booking insert failed after retry: %w", err)
		}
	}
}

func (s *DefaultService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.Repo.GetByID(ctx, id)
}

// ConfirmBooking moves pending → confirmed. Vendor only.
func (s *DefaultService) ConfirmBooking(ctx context.Context, id string, actor models.Actor) (*models.Booking, error) {
	b, err := s.vendorTransition(ctx, id, actor, "confirm",
		[]models.BookingStatus{models.BookingPending}, models.BookingConfirmed)
	if err != nil {
		return nil, err
	}

	s.notifyParticipants(ctx, b, models.EventBookingConfirmed)
	if s.Reminders != nil {
		if err := s.Reminders.ScheduleReminder(ctx, b.ID, b.ScheduledAt.Add(-reminderLead)); err != nil {
			s.Logger.Warn("failed to schedule booking reminder", zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	return b, nil
}

// StartBooking moves confirmed → in_progress. Vendor only.
func (s *DefaultService) StartBooking(ctx context.Context, id string, actor models.Actor) (*models.Booking, error) {
	return s.vendorTransition(ctx, id, actor, "start",
		[]models.BookingStatus{models.BookingConfirmed}, models.BookingInProgress)
}

// CompleteBooking moves confirmed or in_progress → completed. Vendor only.
func (s *DefaultService) CompleteBooking(ctx context.Context, id string, actor models.Actor) (*models.Booking, error) {
	b, err := s.vendorTransition(ctx, id, actor, "complete",
		[]models.BookingStatus{models.BookingConfirmed, models.BookingInProgress}, models.BookingCompleted)
	if err != nil {
		return nil, err
	}
	s.notifyParticipants(ctx, b, models.EventBookingCompleted)
	return b, nil
}

func (s *DefaultService) vendorTransition(ctx context.Context, id string, actor models.Actor, op string, from []models.BookingStatus, to models.BookingStatus) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleVendor || actor.ID != b.VendorID {
		return nil, &AuthorizationError{Actor: actor, Action: op + " booking " + id}
	}

	allowed := false
	for _, st := range from {
		if b.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &TransitionError{From: b.Status, Op: op}
	}

	b.Status = to
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.Logger.Info("booking transition",
		zap.String("bookingID", b.ID),
		zap.String("op", op),
		zap.String("status", string(to)),
	)
	return b, nil
}

// notifyParticipants fans the event out to vendor and customer. Guests have
// no account to notify; their copy is a delivery concern outside this core.
func (s *DefaultService) notifyParticipants(ctx context.Context, b *models.Booking, event models.EventKind) {
	data := map[string]string{
		"bookingId":   b.ID,
		"reference":   b.Reference,
		"scheduledAt": b.ScheduledAt.Format(time.RFC3339),
		"status":      string(b.Status),
	}
	recipients := []models.Recipient{{ID: b.VendorID, Role: models.RoleVendor}}
	if b.CustomerID != "" {
		recipients = append(recipients, models.Recipient{ID: b.CustomerID, Role: models.RoleCustomer})
	}
	for _, rcpt := range recipients {
		if err := s.Notifier.Notify(ctx, rcpt, event, data); err != nil {
			s.Logger.Warn("notification failed",
				zap.String("recipient", rcpt.ID),
				zap.String("event", string(event)),
				zap.Error(err),
			)
		}
	}
}
