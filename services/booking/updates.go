package booking

import (
	"context"

	"vendly/models"

	"go.uber.org/zap"
)

// UpdateBooking applies the mutable fields an actor is allowed to touch. The
// role the caller acts as decides the permitted fields; it is never inferred
// from which fields happen to be set.
//
// Vendors may edit their notes at any status. Customers may edit their notes
// and the address only while the booking is still pending.
func (s *DefaultService) UpdateBooking(ctx context.Context, id string, actor models.Actor, req UpdateBookingRequest) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.participant(actor, b) {
		return nil, &AuthorizationError{Actor: actor, Action: "update booking " + id}
	}

	switch actor.Role {
	case models.RoleVendor:
		if req.CustomerNotes != nil || req.Address != nil {
			return nil, &AuthorizationError{Actor: actor, Action: "edit customer fields on booking " + id}
		}
		if req.VendorNotes != nil {
			b.VendorNotes = *req.VendorNotes
		}
	case models.RoleCustomer:
		if req.VendorNotes != nil {
			return nil, &AuthorizationError{Actor: actor, Action: "edit vendor notes on booking " + id}
		}
		if b.Status != models.BookingPending {
			return nil, &TransitionError{From: b.Status, Op: "update"}
		}
		if req.CustomerNotes != nil {
			b.CustomerNotes = *req.CustomerNotes
		}
		if req.Address != nil {
			b.Address = req.Address
		}
	default:
		return nil, &AuthorizationError{Actor: actor, Action: "update booking " + id}
	}

	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.Logger.Info("booking updated",
		zap.String("bookingID", b.ID),
		zap.String("actingAs", string(actor.Role)),
	)
	s.notifyParticipants(ctx, b, models.EventBookingUpdated)
	return b, nil
}
