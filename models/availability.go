package models

import (
	"fmt"
	"time"
)

// Weekday is the day-of-week enum used at every scheduling boundary.
// Sunday = 0 .. Saturday = 6, matching time.Weekday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeekdayOf resolves the weekday of a timestamp in its own location.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d Weekday) String() string {
	names := [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return names[d]
}

// BreakInterval is a pause inside a template's open window.
// Start and End are minutes from midnight, [Start, End).
type BreakInterval struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// AvailabilityTemplate is a vendor's recurring weekly rule for one day.
// It is the source of truth; AvailabilitySlot rows are derived from it.
type AvailabilityTemplate struct {
	ID              string          `bson:"id" json:"id"`
	VendorID        string          `bson:"vendor_id" json:"vendorId"`
	Day             Weekday         `bson:"day" json:"day"`
	StartMinute     int             `bson:"start_minute" json:"startMinute"` // minutes from midnight
	EndMinute       int             `bson:"end_minute" json:"endMinute"`
	Breaks          []BreakInterval `bson:"breaks,omitempty" json:"breaks,omitempty"` // ordered, non-overlapping
	DefaultDuration int             `bson:"default_duration" json:"defaultDuration"`  // minutes
	Buffer          int             `bson:"buffer" json:"buffer"`                     // minutes between appointments
	EffectiveFrom   *time.Time      `bson:"effective_from,omitempty" json:"effectiveFrom,omitempty"`
	EffectiveUntil  *time.Time      `bson:"effective_until,omitempty" json:"effectiveUntil,omitempty"`
	Active          bool            `bson:"active" json:"active"`
	CreatedAt       time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updatedAt"`
}

// Validate enforces the template invariants: start < end, breaks inside the
// open window and mutually non-overlapping.
func (t AvailabilityTemplate) Validate() error {
	if !t.Day.Valid() {
		return fmt.Errorf("invalid day of week %d", int(t.Day))
	}
	if t.StartMinute < 0 || t.EndMinute > 24*60 {
		return fmt.Errorf("template window [%d, %d] outside the day", t.StartMinute, t.EndMinute)
	}
	if t.StartMinute > t.EndMinute {
		return fmt.Errorf("template start %d after end %d", t.StartMinute, t.EndMinute)
	}
	if t.DefaultDuration < 0 || t.Buffer < 0 {
		return fmt.Errorf("negative duration or buffer")
	}
	if t.EffectiveFrom != nil && t.EffectiveUntil != nil && t.EffectiveUntil.Before(*t.EffectiveFrom) {
		return fmt.Errorf("effective range ends before it starts")
	}
	prevEnd := -1
	for i, br := range t.Breaks {
		if br.Start >= br.End {
			return fmt.Errorf("break %d has start %d >= end %d", i, br.Start, br.End)
		}
		if br.Start < t.StartMinute || br.End > t.EndMinute {
			return fmt.Errorf("break %d [%d, %d] outside window [%d, %d]", i, br.Start, br.End, t.StartMinute, t.EndMinute)
		}
		if br.Start < prevEnd {
			return fmt.Errorf("break %d overlaps the previous break", i)
		}
		prevEnd = br.End
	}
	return nil
}

// EffectiveOn reports whether the template contributes slots on the given
// date. A nil bound is open-ended.
func (t AvailabilityTemplate) EffectiveOn(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	if t.EffectiveFrom != nil && day.Before(t.EffectiveFrom.Truncate(24*time.Hour)) {
		return false
	}
	if t.EffectiveUntil != nil && day.After(t.EffectiveUntil.Truncate(24*time.Hour)) {
		return false
	}
	return true
}

// AvailabilitySlot is a materialized bookable window derived from a template.
// It is a cache: bulk-deleted and regenerated whenever the template changes,
// never authoritative for audit.
type AvailabilitySlot struct {
	ID             string     `bson:"id" json:"id"`
	VendorID       string     `bson:"vendor_id" json:"vendorId"`
	ServiceID      string     `bson:"service_id,omitempty" json:"serviceId,omitempty"` // empty = generic, applies to all services
	TemplateID     string     `bson:"template_id" json:"templateId"`
	Day            Weekday    `bson:"day" json:"day"`
	StartMinute    int        `bson:"start_minute" json:"startMinute"`
	EndMinute      int        `bson:"end_minute" json:"endMinute"`
	Capacity       int        `bson:"capacity" json:"capacity"` // max simultaneous bookings
	Active         bool       `bson:"active" json:"active"`
	EffectiveFrom  *time.Time `bson:"effective_from,omitempty" json:"effectiveFrom,omitempty"`
	EffectiveUntil *time.Time `bson:"effective_until,omitempty" json:"effectiveUntil,omitempty"`
}

// Contains reports whether the slot fully contains [start, end) in minutes
// from midnight.
func (s AvailabilitySlot) Contains(start, end int) bool {
	return start >= s.StartMinute && end <= s.EndMinute
}

// EffectiveOn reports whether the slot applies on the given date.
func (s AvailabilitySlot) EffectiveOn(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	if s.EffectiveFrom != nil && day.Before(s.EffectiveFrom.Truncate(24*time.Hour)) {
		return false
	}
	if s.EffectiveUntil != nil && day.After(s.EffectiveUntil.Truncate(24*time.Hour)) {
		return false
	}
	return true
}
