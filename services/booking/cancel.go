package booking

import (
	"context"

	bookingRepo "vendly/database/repository/booking"
	"vendly/models"
	"vendly/utils"

	"go.uber.org/zap"
)

// CancelBooking cancels a pending or confirmed booking and issues the tiered
// refund against what was actually paid. Cancellation never fails for timing
// reasons: inside the no-refund window it still succeeds, zero-refunded.
func (s *DefaultService) CancelBooking(ctx context.Context, id string, actor models.Actor, reason string) (*CancellationResult, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.participant(actor, b) {
		return nil, &AuthorizationError{Actor: actor, Action: "cancel booking " + id}
	}
	if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
		return nil, &TransitionError{From: b.Status, Op: "cancel"}
	}

	now := s.now()
	hoursNotice := b.ScheduledAt.Sub(now).Hours()
	rate := RefundRate(hoursNotice)

	b.Cancellation = &models.CancellationMeta{
		Reason: reason,
		By:     string(actor.Role),
		At:     now,
	}

	// The paid sum is read inside the same transaction as the cancellation
	// write, so a concurrently completing payment cannot skew the refund.
	paid, err := s.Repo.CancelWithPaidSum(ctx, b)
	if err != nil {
		if err == bookingRepo.ErrStatusConflict {
			return nil, s.transitionConflict(ctx, b, "cancel")
		}
		return nil, err
	}

	refund := utils.Round2(rate * paid)
	if refund > 0 {
		if err := s.refundCompletedPayments(ctx, b.ID, refund, reason); err != nil {
			// The booking is already cancelled; surface the refund failure
			// so the caller can retry the money movement.
			return nil, err
		}
		if refund >= paid {
			b.PaymentStatus = models.BookingRefunded
		}
		if err := s.Repo.Update(ctx, b); err != nil {
			return nil, err
		}
	}

	s.Logger.Info("booking cancelled",
		zap.String("bookingID", b.ID),
		zap.Float64("hoursNotice", hoursNotice),
		zap.Float64("refundRate", rate),
		zap.Float64("refund", refund),
	)
	s.notifyParticipants(ctx, b, models.EventBookingCancelled)

	return &CancellationResult{
		Booking:      b,
		HoursNotice:  hoursNotice,
		RefundRate:   rate,
		PaidAmount:   paid,
		RefundAmount: refund,
	}, nil
}

// refundCompletedPayments walks the booking's completed payments and refunds
// them through the reconciler until the refund amount is covered.
func (s *DefaultService) refundCompletedPayments(ctx context.Context, bookingID string, refund float64, reason string) error {
	payments, err := s.Payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	remaining := refund
	for _, p := range payments {
		if remaining <= 0 {
			break
		}
		if p.Status != models.PaymentCompleted || p.ChargeID == "" {
			continue
		}
		amount := p.Amount
		if amount > remaining {
			amount = remaining
		}
		if _, err := s.Reconciler.RequestRefund(ctx, p.ChargeID, amount, reason); err != nil {
			return err
		}
		remaining = utils.Round2(remaining - amount)
	}
	return nil
}

// transitionConflict builds the guard error after a guarded write lost to a
// concurrent transition, re-reading the booking so From is the fresh status.
func (s *DefaultService) transitionConflict(ctx context.Context, b *models.Booking, op string) error {
	from := b.Status
	if cur, err := s.Repo.GetByID(ctx, b.ID); err == nil {
		from = cur.Status
	}
	return &TransitionError{From: from, Op: op}
}

func (s *DefaultService) participant(actor models.Actor, b *models.Booking) bool {
	switch actor.Role {
	case models.RoleVendor:
		return actor.ID == b.VendorID
	case models.RoleCustomer:
		return b.CustomerID != "" && actor.ID == b.CustomerID
	}
	return false
}
