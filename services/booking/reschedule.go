package booking

import (
	"context"
	"time"

	bookingRepo "vendly/database/repository/booking"
	"vendly/models"
	"vendly/services/scheduling"

	"go.uber.org/zap"
)

// rescheduleNotice is the minimum time before the scheduled start at which a
// reschedule may still be requested.
const rescheduleNotice = 12 * time.Hour

// RescheduleBooking moves a pending booking to a new time. The booking stays
// pending; the new window is re-validated with the booking itself excluded
// from the overlap count.
func (s *DefaultService) RescheduleBooking(ctx context.Context, id string, newStart time.Time, actor models.Actor) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.participant(actor, b) {
		return nil, &AuthorizationError{Actor: actor, Action: "reschedule booking " + id}
	}
	if b.Status != models.BookingPending {
		return nil, &TransitionError{From: b.Status, Op: "reschedule"}
	}
	if b.ScheduledAt.Sub(s.now()) < rescheduleNotice {
		return nil, ErrInsufficientNotice
	}

	slot, err := s.Checker.CheckAvailability(ctx, b.VendorID, b.ServiceID, newStart, b.Duration, b.ID)
	if err != nil {
		return nil, err
	}

	oldStart := b.ScheduledAt
	if err := s.Repo.RescheduleWithCapacityCheck(ctx, b, newStart, slot.Capacity); err != nil {
		switch err {
		case bookingRepo.ErrCapacityExhausted:
			return nil, &scheduling.Error{Reason: scheduling.SlotFull, Detail: "capacity taken by a concurrent booking"}
		case bookingRepo.ErrStatusConflict:
			return nil, s.transitionConflict(ctx, b, "reschedule")
		}
		return nil, err
	}

	s.Logger.Info("booking rescheduled",
		zap.String("bookingID", b.ID),
		zap.Time("from", oldStart),
		zap.Time("to", newStart),
	)
	s.notifyParticipants(ctx, b, models.EventBookingRescheduled)
	return b, nil
}
