package availability

import (
	"context"
	"fmt"
	"time"

	"vendly/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpsertTemplate validates and stores a template, then regenerates the slot
// index for every day the change touches. Moving a template to another
// weekday regenerates both the old and the new day.
func (s *DefaultTemplateService) UpsertTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error {
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("invalid availability template: %w", err)
	}
	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}

	var previousDay *models.Weekday
	if existing, err := s.Repo.GetTemplate(ctx, tpl.ID); err == nil && existing.Day != tpl.Day {
		previousDay = &existing.Day
	}

	if err := s.Repo.UpsertTemplate(ctx, tpl); err != nil {
		return err
	}

	if previousDay != nil {
		if err := s.RegenerateDay(ctx, tpl.VendorID, *previousDay); err != nil {
			return err
		}
	}
	return s.RegenerateDay(ctx, tpl.VendorID, tpl.Day)
}

func (s *DefaultTemplateService) DeleteTemplate(ctx context.Context, id string) error {
	tpl, err := s.Repo.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	return s.RegenerateDay(ctx, tpl.VendorID, tpl.Day)
}

func (s *DefaultTemplateService) ListTemplates(ctx context.Context, vendorID string) ([]models.AvailabilityTemplate, error) {
	return s.Repo.ListTemplates(ctx, vendorID)
}

func (s *DefaultTemplateService) RegenerateDay(ctx context.Context, vendorID string, day models.Weekday) error {
	templates, err := s.Repo.ListTemplatesForDay(ctx, vendorID, day)
	if err != nil {
		return err
	}
	services, err := s.Services.ListActiveByVendor(ctx, vendorID)
	if err != nil {
		return err
	}

	var slots []models.AvailabilitySlot
	for _, tpl := range templates {
		if !tpl.Active {
			continue
		}
		slots = append(slots, BuildSlots(tpl, services)...)
	}

	if err := s.Repo.ReplaceSlots(ctx, vendorID, day, slots); err != nil {
		return err
	}
	s.Logger.Info("regenerated availability slots",
		zap.String("vendorID", vendorID),
		zap.Stringer("day", day),
		zap.Int("slots", len(slots)),
	)
	return nil
}

// SlotsOn answers the availability-index query: active slots for the vendor
// and service on the date's weekday, filtered by effective range.
func (s *DefaultTemplateService) SlotsOn(ctx context.Context, vendorID, serviceID string, date time.Time) ([]models.AvailabilitySlot, error) {
	slots, err := s.Repo.QuerySlots(ctx, vendorID, serviceID, models.WeekdayOf(date))
	if err != nil {
		return nil, err
	}
	effective := slots[:0]
	for _, slot := range slots {
		if slot.EffectiveOn(date) {
			effective = append(effective, slot)
		}
	}
	return effective, nil
}
