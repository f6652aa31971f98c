package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
)

// gatewayTimeout bounds every provider round trip. On timeout the payment
// stays pending and is settled later by the webhook path.
const gatewayTimeout = 15 * time.Second

// StripeGateway implements Gateway on Stripe PaymentIntents. The global
// stripe.Key is set at startup from configuration.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) CreateCharge(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", &Error{Kind: GatewayUnavailable, Err: fmt.Errorf("create charge: %w", err)}
	}
	return pi.ID, nil
}

func (g *StripeGateway) GetCharge(ctx context.Context, chargeID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	pi, err := paymentintent.Get(chargeID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return "", &Error{Kind: GatewayUnavailable, Err: fmt.Errorf("get charge %s: %w", chargeID, err)}
	}
	return providerStatusFromIntent(pi.Status), nil
}

func (g *StripeGateway) CreateRefund(ctx context.Context, chargeID string, amountCents int64, reason string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(chargeID),
	}
	if amountCents > 0 {
		params.Amount = stripe.Int64(amountCents)
	}
	if reason != "" {
		params.AddMetadata("reason", reason)
	}

	r, err := refund.New(params)
	if err != nil {
		return "", &Error{Kind: GatewayUnavailable, Err: fmt.Errorf("create refund for %s: %w", chargeID, err)}
	}
	return r.ID, nil
}

func providerStatusFromIntent(status stripe.PaymentIntentStatus) string {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return ProviderSuccessful
	case stripe.PaymentIntentStatusCanceled:
		return ProviderFailed
	default:
		return ProviderPending
	}
}
