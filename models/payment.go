package models

import "time"

// PaymentStatus is the internal settlement state of one payment attempt.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// PaymentStatusFromProvider maps a provider charge status to the internal
// status. Unrecognized values map to pending rather than erroring, so a
// provider schema change never loses a webhook.
func PaymentStatusFromProvider(providerStatus string) PaymentStatus {
	switch providerStatus {
	case "successful":
		return PaymentCompleted
	case "pending":
		return PaymentProcessing
	case "failed":
		return PaymentFailed
	case "refunded":
		return PaymentRefunded
	default:
		return PaymentPending
	}
}

// Rank orders statuses so a stale provider event can never overwrite a more
// advanced one. Refunded is terminal.
func (s PaymentStatus) Rank() int {
	switch s {
	case PaymentPending:
		return 0
	case PaymentProcessing:
		return 1
	case PaymentFailed:
		return 2
	case PaymentCompleted:
		return 3
	case PaymentRefunded:
		return 4
	}
	return -1
}

// Payment is one charge attempt against a booking. A booking may accumulate
// failed attempts; one completed payment is the common case.
type Payment struct {
	ID           string        `bson:"id" json:"id"`
	BookingID    string        `bson:"booking_id" json:"bookingId"`
	ChargeID     string        `bson:"charge_id,omitempty" json:"chargeId,omitempty"` // provider charge id
	Amount       float64       `bson:"amount" json:"amount"`
	PlatformFee  float64       `bson:"platform_fee" json:"platformFee"`
	VendorAmount float64       `bson:"vendor_amount" json:"vendorAmount"` // PlatformFee + VendorAmount == Amount
	Currency     string        `bson:"currency" json:"currency"`
	Status       PaymentStatus `bson:"status" json:"status"`
	ProcessedAt  *time.Time    `bson:"processed_at,omitempty" json:"processedAt,omitempty"`
	RefundedAt   *time.Time    `bson:"refunded_at,omitempty" json:"refundedAt,omitempty"`
	RefundAmount float64       `bson:"refund_amount,omitempty" json:"refundAmount,omitempty"`
	RefundReason string        `bson:"refund_reason,omitempty" json:"refundReason,omitempty"`
	RawResponse  string        `bson:"raw_response,omitempty" json:"-"` // opaque provider payload, kept for audit
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
}
