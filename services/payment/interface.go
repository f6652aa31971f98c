package payment

import "context"

// Provider charge statuses as the reconciler understands them. Anything else
// is treated as pending.
const (
	ProviderSuccessful = "successful"
	ProviderPending    = "pending"
	ProviderFailed     = "failed"
	ProviderRefunded   = "refunded"
)

// Gateway is the external card-payment processor. Amounts are integer minor
// units at this boundary; the engine converts to and from decimal currency
// at its edges.
type Gateway interface {
	CreateCharge(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (chargeID string, err error)
	GetCharge(ctx context.Context, chargeID string) (providerStatus string, err error)
	CreateRefund(ctx context.Context, chargeID string, amountCents int64, reason string) (refundID string, err error)
}
