package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vendly/models"
	"vendly/services/scheduling"
)

func createReq() CreateBookingRequest {
	return CreateBookingRequest{
		VendorID:    "vendor-1",
		ServiceID:   "svc-1",
		CustomerID:  "cust-1",
		ScheduledAt: testNow.Add(48 * time.Hour),
	}
}

func TestCreateBooking(t *testing.T) {
	env := newTestEnv()

	b, err := env.svc.CreateBooking(context.Background(), createReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Status != models.BookingPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if b.PaymentStatus != models.BookingUnpaid {
		t.Errorf("payment status = %s, want unpaid", b.PaymentStatus)
	}
	if b.Duration != 60 {
		t.Errorf("duration = %d, want the service's 60", b.Duration)
	}
	if b.TotalAmount != 100 || b.DepositAmount != 30 {
		t.Errorf("pricing = (%v, %v), want (100, 30)", b.TotalAmount, b.DepositAmount)
	}
	if !strings.HasPrefix(b.Reference, "VB-") {
		t.Errorf("reference %q missing VB- prefix", b.Reference)
	}
	if _, ok := env.bookings.bookings[b.ID]; !ok {
		t.Error("booking not persisted")
	}
	if len(env.notifier.events) != 2 || env.notifier.events[0] != models.EventBookingCreated {
		t.Errorf("events = %v, want booking.created to both parties", env.notifier.events)
	}
}

func TestCreateBookingProRatedPrice(t *testing.T) {
	env := newTestEnv()
	req := createReq()
	req.Duration = 90

	b, err := env.svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TotalAmount != 150 {
		t.Errorf("90 minutes of a 100-per-hour service = %v, want 150", b.TotalAmount)
	}
	if b.DepositAmount != 45 {
		t.Errorf("deposit = %v, want 45", b.DepositAmount)
	}
}

func TestCreateBookingGuest(t *testing.T) {
	env := newTestEnv()
	req := createReq()
	req.CustomerID = ""
	req.Guest = &models.GuestInfo{Name: "Ada", Email: "ada@example.com"}

	b, err := env.svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Guest == nil || b.CustomerID != "" {
		t.Error("guest identity not carried")
	}
	// Guests have no account; only the vendor is notified.
	if len(env.notifier.events) != 1 {
		t.Errorf("got %d notifications for a guest booking, want 1", len(env.notifier.events))
	}
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateBookingRequest)
	}{
		{"both customer and guest", func(r *CreateBookingRequest) {
			r.Guest = &models.GuestInfo{Name: "Ada", Email: "ada@example.com"}
		}},
		{"neither customer nor guest", func(r *CreateBookingRequest) {
			r.CustomerID = ""
		}},
		{"service belongs to another vendor", func(r *CreateBookingRequest) {
			r.VendorID = "vendor-2"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			req := createReq()
			tt.mutate(&req)

			_, err := env.svc.CreateBooking(context.Background(), req)
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Errorf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestCreateBookingSchedulingRejectionPropagates(t *testing.T) {
	env := newTestEnv()
	env.checker.err = &scheduling.Error{Reason: scheduling.DayUnavailable}

	_, err := env.svc.CreateBooking(context.Background(), createReq())
	if !scheduling.IsReason(err, scheduling.DayUnavailable) {
		t.Errorf("got %v, want DayUnavailable", err)
	}
	if len(env.bookings.bookings) != 0 {
		t.Error("rejected booking was persisted")
	}
}

func TestCreateBookingCapacityRace(t *testing.T) {
	// A booking that fills the slot after the conflict check passed: the
	// transactional insert refuses, the service retries once, then reports
	// the slot full.
	existing := &models.Booking{
		ID: "winner", VendorID: "vendor-1", Status: models.BookingPending,
		ScheduledAt: testNow.Add(48 * time.Hour), Duration: 60,
	}
	env := newTestEnv(existing)

	_, err := env.svc.CreateBooking(context.Background(), createReq())
	if !scheduling.IsReason(err, scheduling.SlotFull) {
		t.Fatalf("got %v, want SlotFull", err)
	}
	if env.checker.calls != 2 {
		t.Errorf("conflict check ran %d times, want 2 (one retry)", env.checker.calls)
	}
}

func pendingBooking() *models.Booking {
	return &models.Booking{
		ID:          "bk-1",
		Reference:   "VB-TEST1234",
		VendorID:    "vendor-1",
		CustomerID:  "cust-1",
		ServiceID:   "svc-1",
		ScheduledAt: testNow.Add(48 * time.Hour),
		Duration:    60,
		TotalAmount: 100, DepositAmount: 30,
		Currency:      "ZAR",
		Status:        models.BookingPending,
		PaymentStatus: models.BookingUnpaid,
	}
}

var (
	vendor   = models.Actor{ID: "vendor-1", Role: models.RoleVendor}
	customer = models.Actor{ID: "cust-1", Role: models.RoleCustomer}
)

func TestLifecycleTransitions(t *testing.T) {
	env := newTestEnv(pendingBooking())
	ctx := context.Background()

	b, err := env.svc.ConfirmBooking(ctx, "bk-1", vendor)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if b.Status != models.BookingConfirmed {
		t.Fatalf("status = %s, want confirmed", b.Status)
	}

	if b, err = env.svc.StartBooking(ctx, "bk-1", vendor); err != nil || b.Status != models.BookingInProgress {
		t.Fatalf("start: %v (status %s)", err, b.Status)
	}
	if b, err = env.svc.CompleteBooking(ctx, "bk-1", vendor); err != nil || b.Status != models.BookingCompleted {
		t.Fatalf("complete: %v (status %s)", err, b.Status)
	}
}

func TestCompleteDirectlyFromConfirmed(t *testing.T) {
	b := pendingBooking()
	b.Status = models.BookingConfirmed
	env := newTestEnv(b)

	got, err := env.svc.CompleteBooking(context.Background(), "bk-1", vendor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != models.BookingCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestTransitionGuards(t *testing.T) {
	tests := []struct {
		name string
		from models.BookingStatus
		op   func(*DefaultService, context.Context) error
	}{
		{"confirm a confirmed booking", models.BookingConfirmed, func(s *DefaultService, ctx context.Context) error {
			_, err := s.ConfirmBooking(ctx, "bk-1", vendor)
			return err
		}},
		{"start a pending booking", models.BookingPending, func(s *DefaultService, ctx context.Context) error {
			_, err := s.StartBooking(ctx, "bk-1", vendor)
			return err
		}},
		{"complete a pending booking", models.BookingPending, func(s *DefaultService, ctx context.Context) error {
			_, err := s.CompleteBooking(ctx, "bk-1", vendor)
			return err
		}},
		{"confirm a cancelled booking", models.BookingCancelled, func(s *DefaultService, ctx context.Context) error {
			_, err := s.ConfirmBooking(ctx, "bk-1", vendor)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pendingBooking()
			b.Status = tt.from
			env := newTestEnv(b)

			err := tt.op(env.svc, context.Background())
			if !IsInvalidTransition(err) {
				t.Errorf("got %v, want TransitionError", err)
			}
			if got := env.bookings.bookings["bk-1"].Status; got != tt.from {
				t.Errorf("failed guard mutated status to %s", got)
			}
		})
	}
}

func TestVendorOnlyTransitions(t *testing.T) {
	env := newTestEnv(pendingBooking())

	_, err := env.svc.ConfirmBooking(context.Background(), "bk-1", customer)
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Errorf("customer confirming: got %v, want AuthorizationError", err)
	}

	stranger := models.Actor{ID: "vendor-2", Role: models.RoleVendor}
	if _, err := env.svc.ConfirmBooking(context.Background(), "bk-1", stranger); !errors.As(err, &authErr) {
		t.Errorf("foreign vendor confirming: got %v, want AuthorizationError", err)
	}
}
