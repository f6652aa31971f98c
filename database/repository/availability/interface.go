package availabilityRepo

import (
	"context"
	"errors"

	"vendly/models"
)

// ErrTemplateNotFound is returned when a template id does not exist.
var ErrTemplateNotFound = errors.New("availability template not found")

// Repository persists availability templates and their derived slots.
// Templates are the source of truth; slots are a regenerable cache.
type Repository interface {
	UpsertTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error
	GetTemplate(ctx context.Context, id string) (*models.AvailabilityTemplate, error)
	ListTemplates(ctx context.Context, vendorID string) ([]models.AvailabilityTemplate, error)
	ListTemplatesForDay(ctx context.Context, vendorID string, day models.Weekday) ([]models.AvailabilityTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error

	// ReplaceSlots purges every slot previously generated for (vendor, day)
	// and inserts the new set in one shot, so stale slots never linger after
	// a template edit.
	ReplaceSlots(ctx context.Context, vendorID string, day models.Weekday, slots []models.AvailabilitySlot) error

	// QuerySlots returns active slots for (vendor, day) matching the service
	// or applying generically (empty service id). Effective-date filtering is
	// done by the caller against the query date.
	QuerySlots(ctx context.Context, vendorID, serviceID string, day models.Weekday) ([]models.AvailabilitySlot, error)
}
