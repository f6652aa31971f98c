package scheduling

import (
	"context"
	"fmt"
	"time"

	availabilityRepo "vendly/database/repository/availability"
	bookingRepo "vendly/database/repository/booking"
	"vendly/models"
)

// ConflictChecker decides whether a proposed (vendor, start, duration) window
// is bookable: inside an available slot and not saturated by existing active
// bookings.
type ConflictChecker interface {
	// CheckAvailability returns the slot the booking would land in, or a
	// scheduling Error. excludeBookingID removes one booking from the overlap
	// count (used when rescheduling, so the booking does not conflict with
	// itself).
	CheckAvailability(ctx context.Context, vendorID, serviceID string, start time.Time, durationMins int, excludeBookingID string) (*models.AvailabilitySlot, error)
}

// DefaultConflictChecker implements ConflictChecker against the materialized
// availability index and the booking store.
type DefaultConflictChecker struct {
	Slots    availabilityRepo.Repository
	Bookings bookingRepo.Repository
	Now      func() time.Time // injectable clock; nil means time.Now
}

func (c *DefaultConflictChecker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *DefaultConflictChecker) CheckAvailability(ctx context.Context, vendorID, serviceID string, start time.Time, durationMins int, excludeBookingID string) (*models.AvailabilitySlot, error) {
	if durationMins <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", durationMins)
	}
	if !start.After(c.now()) {
		return nil, &Error{Reason: PastSchedule, Detail: "requested start is not in the future"}
	}

	day := models.WeekdayOf(start)
	slots, err := c.Slots.QuerySlots(ctx, vendorID, serviceID, day)
	if err != nil {
		return nil, fmt.Errorf("slot lookup failed: %w", err)
	}

	effective := slots[:0]
	for _, slot := range slots {
		if slot.EffectiveOn(start) {
			effective = append(effective, slot)
		}
	}
	if len(effective) == 0 {
		return nil, &Error{Reason: DayUnavailable, Detail: fmt.Sprintf("vendor closed on %s", day)}
	}

	startMinute := start.Hour()*60 + start.Minute()
	endMinute := startMinute + durationMins
	var containing []models.AvailabilitySlot
	if endMinute <= 24*60 {
		for _, slot := range effective {
			if slot.Contains(startMinute, endMinute) {
				containing = append(containing, slot)
			}
		}
	}
	if len(containing) == 0 {
		return nil, &Error{
			Reason: SlotUnavailable,
			Detail: fmt.Sprintf("no slot contains [%02d:%02d, %02d:%02d)", startMinute/60, startMinute%60, endMinute/60, endMinute%60),
		}
	}

	// Capacity is evaluated against actual booked intervals, not slot
	// counters, so differently-sized bookings sharing one generic window are
	// counted correctly.
	end := start.Add(time.Duration(durationMins) * time.Minute)
	overlap, err := c.Bookings.CountOverlapping(ctx, vendorID, start, end, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("overlap count failed: %w", err)
	}
	for i := range containing {
		if overlap < containing[i].Capacity {
			return &containing[i], nil
		}
	}
	return nil, &Error{Reason: SlotFull, Detail: fmt.Sprintf("%d overlapping bookings", overlap)}
}
