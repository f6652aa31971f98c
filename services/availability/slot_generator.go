package availability

import (
	"fmt"

	"vendly/models"
)

// window is one candidate [Start, End) carved out of a template's open hours,
// in minutes from midnight.
type window struct {
	Start int
	End   int
}

// generateWindows carves candidate windows of the given duration out of a
// template. The cursor always advances by duration+buffer, whether or not the
// window survived the break check, so spacing stays uniform. A zero-length
// open window, a break swallowing the whole window, or a duration longer than
// the open hours all yield an empty result rather than an error.
func generateWindows(tpl models.AvailabilityTemplate, duration int) []window {
	if duration <= 0 {
		return nil
	}
	var windows []window
	step := duration + tpl.Buffer
	for cursor := tpl.StartMinute; cursor+duration <= tpl.EndMinute; cursor += step {
		w := window{Start: cursor, End: cursor + duration}
		if !overlapsBreak(w, tpl.Breaks) {
			windows = append(windows, w)
		}
	}
	return windows
}

func overlapsBreak(w window, breaks []models.BreakInterval) bool {
	for _, br := range breaks {
		if w.Start < br.End && br.Start < w.End {
			return true
		}
	}
	return false
}

// BuildSlots materializes the bookable slot set for one template. When the
// vendor has active services, one slot set is generated per service using
// that service's own duration (falling back to the template default when the
// service has none); otherwise a single generic set is produced. Slot ids are
// derived from their coordinates so regeneration is deterministic.
func BuildSlots(tpl models.AvailabilityTemplate, services []models.Service) []models.AvailabilitySlot {
	capacity := 1

	build := func(serviceID string, duration int) []models.AvailabilitySlot {
		windows := generateWindows(tpl, duration)
		slots := make([]models.AvailabilitySlot, 0, len(windows))
		for _, w := range windows {
			slots = append(slots, models.AvailabilitySlot{
				ID:             slotID(tpl.ID, serviceID, tpl.Day, w.Start),
				VendorID:       tpl.VendorID,
				ServiceID:      serviceID,
				TemplateID:     tpl.ID,
				Day:            tpl.Day,
				StartMinute:    w.Start,
				EndMinute:      w.End,
				Capacity:       capacity,
				Active:         true,
				EffectiveFrom:  tpl.EffectiveFrom,
				EffectiveUntil: tpl.EffectiveUntil,
			})
		}
		return slots
	}

	if len(services) == 0 {
		return build("", tpl.DefaultDuration)
	}

	var all []models.AvailabilitySlot
	for _, svc := range services {
		duration := svc.Duration
		if duration <= 0 {
			duration = tpl.DefaultDuration
		}
		all = append(all, build(svc.ID, duration)...)
	}
	return all
}

// slotID is deterministic so regenerating the same template twice yields an
// identical slot set.
func slotID(templateID, serviceID string, day models.Weekday, start int) string {
	if serviceID == "" {
		return fmt.Sprintf("%s:d%d:m%04d", templateID, int(day), start)
	}
	return fmt.Sprintf("%s:%s:d%d:m%04d", templateID, serviceID, int(day), start)
}
