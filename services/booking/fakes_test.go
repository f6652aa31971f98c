package booking

import (
	"context"
	"time"

	bookingRepo "vendly/database/repository/booking"
	paymentRepo "vendly/database/repository/payment"
	serviceRepo "vendly/database/repository/service"
	"vendly/models"
	"vendly/services/scheduling"

	"go.uber.org/zap"
)

// memBookingRepo mirrors the transactional semantics of the mongo repository
// against an in-memory map.
type memBookingRepo struct {
	bookingRepo.Repository
	bookings map[string]*models.Booking
	paidSum  float64 // returned by CancelWithPaidSum
}

func newMemBookingRepo(bookings ...*models.Booking) *memBookingRepo {
	repo := &memBookingRepo{bookings: make(map[string]*models.Booking)}
	for _, b := range bookings {
		cp := *b
		repo.bookings[b.ID] = &cp
	}
	return repo
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) Update(_ context.Context, b *models.Booking) error {
	if _, ok := r.bookings[b.ID]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memBookingRepo) CountOverlapping(_ context.Context, vendorID string, start, end time.Time, excludeID string) (int, error) {
	count := 0
	for _, b := range r.bookings {
		if b.VendorID == vendorID && b.IsActive() && b.ID != excludeID && b.Overlaps(start, end) {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) CreateWithCapacityCheck(ctx context.Context, b *models.Booking, capacity int) error {
	count, _ := r.CountOverlapping(ctx, b.VendorID, b.ScheduledAt, b.EndsAt(), "")
	if count >= capacity {
		return bookingRepo.ErrCapacityExhausted
	}
	for _, existing := range r.bookings {
		if existing.Reference == b.Reference {
			return bookingRepo.ErrDuplicateReference
		}
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memBookingRepo) RescheduleWithCapacityCheck(ctx context.Context, b *models.Booking, newStart time.Time, capacity int) error {
	newEnd := newStart.Add(time.Duration(b.Duration) * time.Minute)
	count, _ := r.CountOverlapping(ctx, b.VendorID, newStart, newEnd, b.ID)
	if count >= capacity {
		return bookingRepo.ErrCapacityExhausted
	}
	stored, ok := r.bookings[b.ID]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if stored.Status != models.BookingPending {
		return bookingRepo.ErrStatusConflict
	}
	stored.ScheduledAt = newStart
	b.ScheduledAt = newStart
	return nil
}

func (r *memBookingRepo) CancelWithPaidSum(_ context.Context, b *models.Booking) (float64, error) {
	stored, ok := r.bookings[b.ID]
	if !ok {
		return 0, bookingRepo.ErrBookingNotFound
	}
	if stored.Status != models.BookingPending && stored.Status != models.BookingConfirmed {
		return 0, bookingRepo.ErrStatusConflict
	}
	stored.Status = models.BookingCancelled
	stored.Cancellation = b.Cancellation
	b.Status = models.BookingCancelled
	return r.paidSum, nil
}

type memPaymentRepo struct {
	paymentRepo.Repository
	payments []*models.Payment
}

func (r *memPaymentRepo) Create(_ context.Context, p *models.Payment) error {
	cp := *p
	r.payments = append(r.payments, &cp)
	return nil
}

func (r *memPaymentRepo) SetChargeID(_ context.Context, paymentID, chargeID string) error {
	for _, p := range r.payments {
		if p.ID == paymentID {
			p.ChargeID = chargeID
			return nil
		}
	}
	return paymentRepo.ErrPaymentNotFound
}

func (r *memPaymentRepo) ListByBooking(_ context.Context, bookingID string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range r.payments {
		if p.BookingID == bookingID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memServiceRepo struct {
	serviceRepo.Repository
	services map[string]*models.Service
}

func (r *memServiceRepo) GetByID(_ context.Context, id string) (*models.Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, serviceRepo.ErrServiceNotFound
	}
	cp := *svc
	return &cp, nil
}

// stubChecker approves everything with a fixed slot, or rejects with err.
type stubChecker struct {
	slot  *models.AvailabilitySlot
	err   error
	calls int
}

func (c *stubChecker) CheckAvailability(context.Context, string, string, time.Time, int, string) (*models.AvailabilitySlot, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.slot, nil
}

type stubGateway struct {
	chargeID  string
	chargeErr error
	charges   []int64
}

func (g *stubGateway) CreateCharge(_ context.Context, amountCents int64, _ string, _ map[string]string) (string, error) {
	if g.chargeErr != nil {
		return "", g.chargeErr
	}
	g.charges = append(g.charges, amountCents)
	return g.chargeID, nil
}

func (g *stubGateway) GetCharge(context.Context, string) (string, error) { return "pending", nil }

func (g *stubGateway) CreateRefund(context.Context, string, int64, string) (string, error) {
	return "re_1", nil
}

// stubReconciler records refund requests without touching a gateway.
type stubReconciler struct {
	refunds map[string]float64
	err     error
}

func (r *stubReconciler) VerifyWebhook([]byte, string) error { return nil }

func (r *stubReconciler) OnProviderEvent(context.Context, string, string, []byte) error { return nil }

func (r *stubReconciler) OnConfirm(context.Context, string) (*models.Payment, error) {
	return nil, nil
}

func (r *stubReconciler) RequestRefund(_ context.Context, chargeID string, amount float64, _ string) (*models.Payment, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.refunds == nil {
		r.refunds = make(map[string]float64)
	}
	r.refunds[chargeID] += amount
	return &models.Payment{ChargeID: chargeID, Status: models.PaymentRefunded, RefundAmount: amount}, nil
}

type memNotifier struct {
	events []models.EventKind
}

func (n *memNotifier) Notify(_ context.Context, _ models.Recipient, event models.EventKind, _ map[string]string) error {
	n.events = append(n.events, event)
	return nil
}

// testNow is the fixed clock for the booking service tests.
var testNow = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	svc      *DefaultService
	bookings *memBookingRepo
	payments *memPaymentRepo
	checker  *stubChecker
	gateway  *stubGateway
	recon    *stubReconciler
	notifier *memNotifier
}

func newTestEnv(bookings ...*models.Booking) *testEnv {
	env := &testEnv{
		bookings: newMemBookingRepo(bookings...),
		payments: &memPaymentRepo{},
		checker: &stubChecker{slot: &models.AvailabilitySlot{
			ID: "slot-1", VendorID: "vendor-1", Capacity: 1,
		}},
		gateway:  &stubGateway{chargeID: "ch_1"},
		recon:    &stubReconciler{},
		notifier: &memNotifier{},
	}
	env.svc = &DefaultService{
		Repo: env.bookings,
		Payments: env.payments,
		Services: &memServiceRepo{services: map[string]*models.Service{
			"svc-1": {ID: "svc-1", VendorID: "vendor-1", Name: "Deep Clean", Duration: 60, BasePrice: 100, Active: true},
		}},
		Checker:         env.checker,
		Gateway:         env.gateway,
		Reconciler:      env.recon,
		Notifier:        env.notifier,
		Logger:          zap.NewNop(),
		PlatformFeeRate: 0.10,
		Currency:        "ZAR",
		Now:             func() time.Time { return testNow },
	}
	return env
}

var _ scheduling.ConflictChecker = (*stubChecker)(nil)
