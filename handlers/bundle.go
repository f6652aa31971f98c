package handlers

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	Availability *AvailabilityHandler
	Bookings     *BookingHandler
	Services     *ServiceHandler
	Payments     *PaymentHandler
	Webhooks     *WebhookHandler
}
