package payment

import (
	"context"
	"fmt"
	"time"

	bookingRepo "vendly/database/repository/booking"
	paymentRepo "vendly/database/repository/payment"
	"vendly/models"
	"vendly/services/notification"
	"vendly/utils"

	"go.uber.org/zap"
)

// Reconciler aligns internal Payment and Booking state with the provider's
// authoritative charge status. It is the bridge between the out-of-band
// payment process and the synchronous booking state machine.
type Reconciler interface {
	// VerifyWebhook checks the HMAC signature before any state is touched.
	VerifyWebhook(payload []byte, signature string) error
	// OnProviderEvent applies one provider event (webhook path). Unknown
	// charge ids are logged and swallowed: the provider retries blindly and
	// an error here would only cause a retry storm.
	OnProviderEvent(ctx context.Context, chargeID, providerStatus string, raw []byte) error
	// OnConfirm polls the provider for the charge and applies the result
	// (synchronous confirm path, used right after a client-side attempt).
	OnConfirm(ctx context.Context, chargeID string) (*models.Payment, error)
	// RequestRefund moves money back through the gateway and marks the
	// payment refunded. Terminal: the payment row is never re-opened.
	RequestRefund(ctx context.Context, chargeID string, amount float64, reason string) (*models.Payment, error)
}

// DefaultReconciler implements Reconciler.
type DefaultReconciler struct {
	Payments      paymentRepo.Repository
	Bookings      bookingRepo.Repository
	Gateway       Gateway
	Notifier      notification.Notifier
	Logger        *zap.Logger
	WebhookSecret string
	Now           func() time.Time // injectable clock; nil means time.Now
}

func (r *DefaultReconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *DefaultReconciler) VerifyWebhook(payload []byte, signature string) error {
	if r.WebhookSecret == "" {
		// Accepting unsigned webhooks is an explicit, insecure opt-in.
		r.Logger.Warn("webhook secret not configured; ACCEPTING UNSIGNED WEBHOOKS")
		return nil
	}
	return VerifySignature(payload, signature, r.WebhookSecret)
}

func (r *DefaultReconciler) OnProviderEvent(ctx context.Context, chargeID, providerStatus string, raw []byte) error {
	if _, err := r.Payments.GetByChargeID(ctx, chargeID); err != nil {
		if err == paymentRepo.ErrPaymentNotFound {
			r.Logger.Warn("webhook for unknown charge id dropped", zap.String("chargeID", chargeID))
			return nil
		}
		return err
	}
	_, err := r.apply(ctx, chargeID, providerStatus, string(raw), 0, "")
	return err
}

func (r *DefaultReconciler) OnConfirm(ctx context.Context, chargeID string) (*models.Payment, error) {
	if _, err := r.Payments.GetByChargeID(ctx, chargeID); err != nil {
		if err == paymentRepo.ErrPaymentNotFound {
			return nil, &Error{Kind: ChargeNotFound, Err: fmt.Errorf("charge %s", chargeID)}
		}
		return nil, err
	}

	providerStatus, err := r.Gateway.GetCharge(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	return r.apply(ctx, chargeID, providerStatus, "", 0, "")
}

func (r *DefaultReconciler) RequestRefund(ctx context.Context, chargeID string, amount float64, reason string) (*models.Payment, error) {
	p, err := r.Payments.GetByChargeID(ctx, chargeID)
	if err != nil {
		if err == paymentRepo.ErrPaymentNotFound {
			return nil, &Error{Kind: ChargeNotFound, Err: fmt.Errorf("charge %s", chargeID)}
		}
		return nil, err
	}
	if p.Status != models.PaymentCompleted {
		return nil, fmt.Errorf("cannot refund payment in status %s", p.Status)
	}

	if _, err := r.Gateway.CreateRefund(ctx, chargeID, utils.ToMinorUnits(amount), reason); err != nil {
		return nil, err
	}
	return r.apply(ctx, chargeID, ProviderRefunded, "", amount, reason)
}

// apply maps the provider status and advances the payment through the guarded
// repository update. Replays and stale events converge without side effects.
func (r *DefaultReconciler) apply(ctx context.Context, chargeID, providerStatus, raw string, refundAmount float64, refundReason string) (*models.Payment, error) {
	next := models.PaymentStatusFromProvider(providerStatus)
	upd := paymentRepo.StatusUpdate{
		Status:      next,
		RawResponse: raw,
	}
	now := r.now()
	switch next {
	case models.PaymentCompleted:
		upd.ProcessedAt = &now
	case models.PaymentRefunded:
		upd.RefundedAt = &now
		upd.RefundAmount = refundAmount
		upd.RefundReason = refundReason
	}

	p, applied, err := r.Payments.ApplyStatus(ctx, chargeID, upd)
	if err != nil {
		return nil, err
	}
	if applied {
		r.Logger.Info("payment status applied",
			zap.String("chargeID", chargeID),
			zap.String("status", string(next)),
		)
	} else {
		r.Logger.Debug("stale or replayed payment event ignored",
			zap.String("chargeID", chargeID),
			zap.String("status", string(p.Status)),
			zap.String("incoming", string(next)),
		)
	}

	// A replay of a success still walks the booking path: the payment may
	// have landed completed on an earlier delivery that failed before the
	// booking write. markBookingPaid is a no-op once the booking is paid.
	if p.Status == models.PaymentCompleted {
		if err := r.markBookingPaid(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *DefaultReconciler) markBookingPaid(ctx context.Context, p *models.Payment) error {
	b, err := r.Bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return fmt.Errorf("booking %s for completed payment: %w", p.BookingID, err)
	}
	if b.PaymentStatus == models.BookingPaid {
		return nil
	}
	b.PaymentStatus = models.BookingPaid
	if err := r.Bookings.Update(ctx, b); err != nil {
		return err
	}

	if b.CustomerID != "" {
		data := map[string]string{"bookingId": b.ID, "reference": b.Reference}
		if err := r.Notifier.Notify(ctx, models.Recipient{ID: b.CustomerID, Role: models.RoleCustomer}, models.EventPaymentConfirmed, data); err != nil {
			r.Logger.Warn("payment notification failed", zap.Error(err))
		}
	}
	return nil
}
