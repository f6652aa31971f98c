package models

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the states that hold capacity in a slot.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingInProgress}

// BookingPaymentStatus tracks how much of a booking has been settled.
type BookingPaymentStatus string

const (
	BookingUnpaid   BookingPaymentStatus = "unpaid"
	BookingPaid     BookingPaymentStatus = "paid"
	BookingRefunded BookingPaymentStatus = "refunded"
)

// LocationType describes where the service happens.
type LocationType string

const (
	LocationVendor   LocationType = "vendor_location"
	LocationCustomer LocationType = "customer_location"
	LocationRemote   LocationType = "remote"
)

// Address is the structured service address for customer-location bookings.
type Address struct {
	Line1    string `bson:"line1" json:"line1"`
	Line2    string `bson:"line2,omitempty" json:"line2,omitempty"`
	City     string `bson:"city" json:"city"`
	Region   string `bson:"region,omitempty" json:"region,omitempty"`
	PostCode string `bson:"post_code,omitempty" json:"postCode,omitempty"`
	Country  string `bson:"country,omitempty" json:"country,omitempty"`
}

// GuestInfo identifies a booking customer who has no account.
type GuestInfo struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// CancellationMeta records who cancelled a booking, when and why.
type CancellationMeta struct {
	Reason string    `bson:"reason,omitempty" json:"reason,omitempty"`
	By     string    `bson:"by" json:"by"` // "customer" or "vendor"
	At     time.Time `bson:"at" json:"at"`
}

// Booking is a single scheduled occurrence of a service. Bookings are never
// hard-deleted; cancellation is a terminal status.
type Booking struct {
	ID            string               `bson:"id" json:"id"`
	Reference     string               `bson:"reference" json:"reference"` // human-readable, unique
	VendorID      string               `bson:"vendor_id" json:"vendorId"`
	CustomerID    string               `bson:"customer_id,omitempty" json:"customerId,omitempty"` // empty for guest bookings
	Guest         *GuestInfo           `bson:"guest,omitempty" json:"guest,omitempty"`
	ServiceID     string               `bson:"service_id" json:"serviceId"`
	ScheduledAt   time.Time            `bson:"scheduled_at" json:"scheduledAt"`
	Duration      int                  `bson:"duration" json:"duration"` // minutes
	TotalAmount   float64              `bson:"total_amount" json:"totalAmount"`
	DepositAmount float64              `bson:"deposit_amount" json:"depositAmount"`
	Currency      string               `bson:"currency" json:"currency"`
	Status        BookingStatus        `bson:"status" json:"status"`
	PaymentStatus BookingPaymentStatus `bson:"payment_status" json:"paymentStatus"`
	LocationType  LocationType         `bson:"location_type" json:"locationType"`
	Address       *Address             `bson:"address,omitempty" json:"address,omitempty"`
	CustomerNotes string               `bson:"customer_notes,omitempty" json:"customerNotes,omitempty"`
	VendorNotes   string               `bson:"vendor_notes,omitempty" json:"vendorNotes,omitempty"`
	Cancellation  *CancellationMeta    `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	CreatedAt     time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updatedAt"`
}

// EndsAt is the exclusive end of the booked interval.
func (b Booking) EndsAt() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.Duration) * time.Minute)
}

// IsActive reports whether the booking still holds slot capacity.
func (b Booking) IsActive() bool {
	switch b.Status {
	case BookingPending, BookingConfirmed, BookingInProgress:
		return true
	}
	return false
}

// Overlaps is the symmetric interval-overlap test against another interval.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.ScheduledAt.Before(end) && start.Before(b.EndsAt())
}

// Validate enforces the creation invariants that do not need repository state.
func (b Booking) Validate() error {
	if b.VendorID == "" || b.ServiceID == "" {
		return fmt.Errorf("missing vendor or service id")
	}
	if b.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %d", b.Duration)
	}
	if b.DepositAmount > b.TotalAmount {
		return fmt.Errorf("deposit %.2f exceeds total %.2f", b.DepositAmount, b.TotalAmount)
	}
	hasCustomer := b.CustomerID != ""
	hasGuest := b.Guest != nil && b.Guest.Name != "" && b.Guest.Email != ""
	if hasCustomer == hasGuest {
		return fmt.Errorf("exactly one of customer id or guest identity must be set")
	}
	return nil
}
