package models

// Role identifies which side of a booking an actor is acting as. Self-bookings
// (customer == vendor) are disambiguated by the caller passing the role
// explicitly rather than inferring it from the fields being changed.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
)

// Actor is the authenticated party performing a booking operation.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Recipient is the target of a lifecycle notification.
type Recipient struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// EventKind names a booking lifecycle event handed to the Notifier. Delivery
// channel and template rendering live outside this core.
type EventKind string

const (
	EventBookingCreated     EventKind = "booking.created"
	EventBookingUpdated     EventKind = "booking.updated"
	EventBookingConfirmed   EventKind = "booking.confirmed"
	EventBookingCompleted   EventKind = "booking.completed"
	EventBookingCancelled   EventKind = "booking.cancelled"
	EventBookingRescheduled EventKind = "booking.rescheduled"
	EventBookingReminder    EventKind = "booking.reminder"
	EventPaymentConfirmed   EventKind = "payment.confirmed"
)
