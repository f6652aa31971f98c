package booking

import (
	"context"

	"vendly/models"
	"vendly/services/payment"
	"vendly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InitiateDepositPayment opens a deposit charge for a pending or confirmed
// booking. The payment row is persisted before the provider is called, so a
// gateway failure leaves a pending attempt behind that the caller can retry
// or the webhook path can settle.
func (s *DefaultService) InitiateDepositPayment(ctx context.Context, bookingID string) (*models.Payment, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
		return nil, &TransitionError{From: b.Status, Op: "initiate payment"}
	}
	if b.PaymentStatus == models.BookingPaid {
		return nil, &ValidationError{Field: "paymentStatus", Detail: "booking is already paid"}
	}

	fee := utils.Round2(s.PlatformFeeRate * b.DepositAmount)
	p := &models.Payment{
		ID:           uuid.New().String(),
		BookingID:    b.ID,
		Amount:       b.DepositAmount,
		PlatformFee:  fee,
		VendorAmount: utils.Round2(b.DepositAmount - fee),
		Currency:     b.Currency,
		Status:       models.PaymentPending,
	}
	if err := s.Payments.Create(ctx, p); err != nil {
		return nil, err
	}

	chargeID, err := s.Gateway.CreateCharge(ctx, utils.ToMinorUnits(p.Amount), p.Currency, map[string]string{
		"booking_id": b.ID,
		"payment_id": p.ID,
	})
	if err != nil {
		s.Logger.Warn("deposit charge failed at gateway",
			zap.String("bookingID", b.ID),
			zap.String("paymentID", p.ID),
			zap.Error(err),
		)
		return nil, &payment.Error{Kind: payment.GatewayUnavailable, Err: err}
	}

	if err := s.Payments.SetChargeID(ctx, p.ID, chargeID); err != nil {
		return nil, err
	}
	p.ChargeID = chargeID

	s.Logger.Info("deposit payment initiated",
		zap.String("bookingID", b.ID),
		zap.String("paymentID", p.ID),
		zap.Float64("amount", p.Amount),
	)
	return p, nil
}
