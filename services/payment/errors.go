package payment

import (
	"errors"
	"fmt"
)

// Kind classifies payment failures.
type Kind string

const (
	// GatewayUnavailable: the provider call failed or timed out. Retryable;
	// the payment stays pending and the webhook path settles it later.
	GatewayUnavailable Kind = "gateway_unavailable"
	// SignatureInvalid: the webhook signature did not verify. Fatal to the
	// single delivery; the provider retries.
	SignatureInvalid Kind = "signature_invalid"
	// ChargeNotFound: no payment row matches the provider charge id.
	ChargeNotFound Kind = "charge_not_found"
)

// Error is a payment-layer failure with its kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("payment error: %s", e.Kind)
	}
	return fmt.Sprintf("payment error: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a payment error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}
