package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnhandledEvent marks webhook types the reconciler does not act on.
// Callers log and acknowledge them so the provider stops retrying.
var ErrUnhandledEvent = errors.New("unhandled webhook event type")

// WebhookEvent is the provider's envelope: { type, data: { object: {...} } }.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object ChargeObject `json:"object"`
	} `json:"data"`
}

// ChargeObject is the charge payload inside a webhook event.
type ChargeObject struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// VerifySignature checks the HMAC-SHA256 hex signature over the raw body.
// A request that fails verification must be rejected before any state is
// touched.
func VerifySignature(payload []byte, signature, secret string) error {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return &Error{Kind: SignatureInvalid, Err: errors.New("signature mismatch")}
	}
	return nil
}

// ParseWebhook decodes the envelope and maps the event type to a provider
// charge status. Unrecognized types return ErrUnhandledEvent.
func ParseWebhook(payload []byte) (chargeID, providerStatus string, err error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", "", fmt.Errorf("malformed webhook payload: %w", err)
	}
	if event.Data.Object.ID == "" {
		return "", "", fmt.Errorf("webhook event %q carries no charge id", event.Type)
	}

	switch event.Type {
	case "charge.succeeded":
		providerStatus = ProviderSuccessful
	case "charge.failed":
		providerStatus = ProviderFailed
	case "charge.pending":
		providerStatus = ProviderPending
	case "refund.succeeded":
		providerStatus = ProviderRefunded
	default:
		return event.Data.Object.ID, "", ErrUnhandledEvent
	}
	return event.Data.Object.ID, providerStatus, nil
}
