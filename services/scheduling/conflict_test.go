package scheduling

import (
	"context"
	"testing"
	"time"

	availabilityRepo "vendly/database/repository/availability"
	bookingRepo "vendly/database/repository/booking"
	"vendly/models"
)

type fakeSlotRepo struct {
	availabilityRepo.Repository
	slots []models.AvailabilitySlot
}

func (f *fakeSlotRepo) QuerySlots(_ context.Context, vendorID, serviceID string, day models.Weekday) ([]models.AvailabilitySlot, error) {
	var out []models.AvailabilitySlot
	for _, s := range f.slots {
		if s.VendorID != vendorID || s.Day != day || !s.Active {
			continue
		}
		if s.ServiceID != "" && s.ServiceID != serviceID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type fakeBookingCounter struct {
	bookingRepo.Repository
	bookings []models.Booking
}

func (f *fakeBookingCounter) CountOverlapping(_ context.Context, vendorID string, start, end time.Time, excludeID string) (int, error) {
	count := 0
	for _, b := range f.bookings {
		if b.VendorID != vendorID || !b.IsActive() || b.ID == excludeID {
			continue
		}
		if b.Overlaps(start, end) {
			count++
		}
	}
	return count, nil
}

// fixedNow is a Monday morning; at(h, m) lands on the same Monday.
var fixedNow = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 2, hour, min, 0, 0, time.UTC)
}

func newChecker(slots []models.AvailabilitySlot, bookings []models.Booking) *DefaultConflictChecker {
	return &DefaultConflictChecker{
		Slots:    &fakeSlotRepo{slots: slots},
		Bookings: &fakeBookingCounter{bookings: bookings},
		Now:      func() time.Time { return fixedNow },
	}
}

func mondaySlot(start, end, capacity int) models.AvailabilitySlot {
	return models.AvailabilitySlot{
		ID:          "slot-1",
		VendorID:    "vendor-1",
		Day:         models.Monday,
		StartMinute: start,
		EndMinute:   end,
		Capacity:    capacity,
		Active:      true,
	}
}

func TestCheckAvailabilityAccepts(t *testing.T) {
	checker := newChecker([]models.AvailabilitySlot{mondaySlot(9*60, 17*60, 1)}, nil)

	slot, err := checker.CheckAvailability(context.Background(), "vendor-1", "", at(10, 0), 60, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot.ID != "slot-1" {
		t.Errorf("got slot %q, want slot-1", slot.ID)
	}
}

func TestCheckAvailabilityRejections(t *testing.T) {
	slots := []models.AvailabilitySlot{mondaySlot(9*60, 17*60, 1)}
	booked := []models.Booking{{
		ID:          "existing",
		VendorID:    "vendor-1",
		Status:      models.BookingConfirmed,
		ScheduledAt: at(10, 0),
		Duration:    60,
	}}

	tests := []struct {
		name     string
		slots    []models.AvailabilitySlot
		bookings []models.Booking
		start    time.Time
		duration int
		want     Reason
	}{
		{"past start", slots, nil, fixedNow.Add(-time.Hour), 60, PastSchedule},
		{"start equals now", slots, nil, fixedNow, 60, PastSchedule},
		{"closed day", nil, nil, at(10, 0), 60, DayUnavailable},
		{"before opening", slots, nil, at(8, 30), 30, SlotUnavailable},
		{"runs past closing", slots, nil, at(16, 30), 60, SlotUnavailable},
		{"crosses midnight", slots, nil, at(23, 30), 60, SlotUnavailable},
		{"slot saturated", slots, booked, at(10, 0), 60, SlotFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newChecker(tt.slots, tt.bookings)
			_, err := checker.CheckAvailability(context.Background(), "vendor-1", "", tt.start, tt.duration, "")
			if !IsReason(err, tt.want) {
				t.Errorf("got %v, want reason %s", err, tt.want)
			}
		})
	}
}

// The overlap test is symmetric: a new booking conflicts when the intervals
// intersect, regardless of which one starts first or which is longer.
func TestCheckAvailabilitySymmetricOverlap(t *testing.T) {
	slots := []models.AvailabilitySlot{mondaySlot(9*60, 17*60, 1)}
	long := []models.Booking{{
		ID:          "long",
		VendorID:    "vendor-1",
		Status:      models.BookingConfirmed,
		ScheduledAt: at(10, 0),
		Duration:    180, // 10:00-13:00
	}}

	tests := []struct {
		name     string
		start    time.Time
		duration int
		wantFull bool
	}{
		{"short inside long", at(11, 0), 30, true},
		{"tail overlaps head", at(9, 30), 60, true},
		{"head overlaps tail", at(12, 30), 60, true},
		{"ends exactly at start", at(9, 0), 60, false},
		{"starts exactly at end", at(13, 0), 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newChecker(slots, long)
			_, err := checker.CheckAvailability(context.Background(), "vendor-1", "", tt.start, tt.duration, "")
			if tt.wantFull != IsReason(err, SlotFull) {
				t.Errorf("wantFull=%v, got %v", tt.wantFull, err)
			}
		})
	}
}

func TestCheckAvailabilityCapacityTwo(t *testing.T) {
	slots := []models.AvailabilitySlot{mondaySlot(9*60, 17*60, 2)}
	one := []models.Booking{{
		ID: "b1", VendorID: "vendor-1", Status: models.BookingPending,
		ScheduledAt: at(10, 0), Duration: 60,
	}}
	two := append(one, models.Booking{
		ID: "b2", VendorID: "vendor-1", Status: models.BookingConfirmed,
		ScheduledAt: at(10, 0), Duration: 60,
	})

	if _, err := newChecker(slots, one).CheckAvailability(context.Background(), "vendor-1", "", at(10, 0), 60, ""); err != nil {
		t.Errorf("one of two seats taken: unexpected %v", err)
	}
	_, err := newChecker(slots, two).CheckAvailability(context.Background(), "vendor-1", "", at(10, 0), 60, "")
	if !IsReason(err, SlotFull) {
		t.Errorf("both seats taken: got %v, want SlotFull", err)
	}
}

func TestCheckAvailabilityIgnoresCancelled(t *testing.T) {
	slots := []models.AvailabilitySlot{mondaySlot(9*60, 17*60, 1)}
	cancelled := []models.Booking{{
		ID: "gone", VendorID: "vendor-1", Status: models.BookingCancelled,
		ScheduledAt: at(10, 0), Duration: 60,
	}}

	if _, err := newChecker(slots, cancelled).CheckAvailability(context.Background(), "vendor-1", "", at(10, 0), 60, ""); err != nil {
		t.Errorf("cancelled booking should not block: %v", err)
	}
}

func TestCheckAvailabilityExcludesSelf(t *testing.T) {
	slots := []models.AvailabilitySlot{mondaySlot(9*60, 17*60, 1)}
	self := []models.Booking{{
		ID: "self", VendorID: "vendor-1", Status: models.BookingPending,
		ScheduledAt: at(10, 0), Duration: 60,
	}}

	checker := newChecker(slots, self)
	if _, err := checker.CheckAvailability(context.Background(), "vendor-1", "", at(10, 30), 60, "self"); err != nil {
		t.Errorf("booking must not conflict with itself on reschedule: %v", err)
	}
	_, err := checker.CheckAvailability(context.Background(), "vendor-1", "", at(10, 30), 60, "")
	if !IsReason(err, SlotFull) {
		t.Errorf("without exclusion the window is full, got %v", err)
	}
}

func TestCheckAvailabilityEffectiveRange(t *testing.T) {
	until := at(0, 0).AddDate(0, 0, -7) // expired last week
	expired := mondaySlot(9*60, 17*60, 1)
	expired.EffectiveUntil = &until

	checker := newChecker([]models.AvailabilitySlot{expired}, nil)
	_, err := checker.CheckAvailability(context.Background(), "vendor-1", "", at(10, 0), 60, "")
	if !IsReason(err, DayUnavailable) {
		t.Errorf("expired slot should leave the day unavailable, got %v", err)
	}
}
