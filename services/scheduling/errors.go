package scheduling

import (
	"errors"
	"fmt"
)

// Reason classifies why a requested window cannot be booked. Scheduling
// errors are expected and recoverable: the caller gets enough detail to
// offer an alternative slot, no retry needed.
type Reason string

const (
	// PastSchedule: the requested start is not strictly in the future.
	PastSchedule Reason = "past_schedule"
	// DayUnavailable: the vendor has no slots at all on that weekday.
	DayUnavailable Reason = "day_unavailable"
	// SlotUnavailable: no slot fully contains the requested window.
	SlotUnavailable Reason = "slot_unavailable"
	// SlotFull: every containing slot is already at capacity.
	SlotFull Reason = "slot_full"
)

// Error is a scheduling rejection with its reason.
type Error struct {
	Reason Reason
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("scheduling rejected: %s", e.Reason)
	}
	return fmt.Sprintf("scheduling rejected: %s (%s)", e.Reason, e.Detail)
}

// IsReason reports whether err is a scheduling rejection with the given reason.
func IsReason(err error, reason Reason) bool {
	var se *Error
	return errors.As(err, &se) && se.Reason == reason
}
