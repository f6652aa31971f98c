package availability

import (
	"context"
	"time"

	availabilityRepo "vendly/database/repository/availability"
	serviceRepo "vendly/database/repository/service"
	"vendly/models"

	"go.uber.org/zap"
)

// TemplateService manages a vendor's recurring availability and keeps the
// derived slot index in sync.
type TemplateService interface {
	UpsertTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
	ListTemplates(ctx context.Context, vendorID string) ([]models.AvailabilityTemplate, error)

	// RegenerateDay rebuilds the materialized slots for (vendor, day) from
	// the active templates. Idempotent: the previous set is purged first.
	RegenerateDay(ctx context.Context, vendorID string, day models.Weekday) error

	// SlotsOn returns the slots effective on the given date for the vendor
	// and service (or generic when serviceID is empty).
	SlotsOn(ctx context.Context, vendorID, serviceID string, date time.Time) ([]models.AvailabilitySlot, error)
}

// DefaultTemplateService implements TemplateService.
type DefaultTemplateService struct {
	Repo     availabilityRepo.Repository
	Services serviceRepo.Repository
	Logger   *zap.Logger
}
