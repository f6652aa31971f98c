package availability

import (
	"context"
	"reflect"
	"testing"
	"time"

	availabilityRepo "vendly/database/repository/availability"
	serviceRepo "vendly/database/repository/service"
	"vendly/models"

	"go.uber.org/zap"
)

type dayKey struct {
	vendor string
	day    models.Weekday
}

type memAvailabilityRepo struct {
	templates map[string]*models.AvailabilityTemplate
	slots     map[dayKey][]models.AvailabilitySlot
	replaces  int
}

func newMemAvailabilityRepo() *memAvailabilityRepo {
	return &memAvailabilityRepo{
		templates: make(map[string]*models.AvailabilityTemplate),
		slots:     make(map[dayKey][]models.AvailabilitySlot),
	}
}

func (r *memAvailabilityRepo) UpsertTemplate(_ context.Context, tpl *models.AvailabilityTemplate) error {
	cp := *tpl
	r.templates[tpl.ID] = &cp
	return nil
}

func (r *memAvailabilityRepo) GetTemplate(_ context.Context, id string) (*models.AvailabilityTemplate, error) {
	tpl, ok := r.templates[id]
	if !ok {
		return nil, availabilityRepo.ErrTemplateNotFound
	}
	cp := *tpl
	return &cp, nil
}

func (r *memAvailabilityRepo) ListTemplates(_ context.Context, vendorID string) ([]models.AvailabilityTemplate, error) {
	var out []models.AvailabilityTemplate
	for _, tpl := range r.templates {
		if tpl.VendorID == vendorID {
			out = append(out, *tpl)
		}
	}
	return out, nil
}

func (r *memAvailabilityRepo) ListTemplatesForDay(_ context.Context, vendorID string, day models.Weekday) ([]models.AvailabilityTemplate, error) {
	var out []models.AvailabilityTemplate
	for _, tpl := range r.templates {
		if tpl.VendorID == vendorID && tpl.Day == day {
			out = append(out, *tpl)
		}
	}
	return out, nil
}

func (r *memAvailabilityRepo) DeleteTemplate(_ context.Context, id string) error {
	if _, ok := r.templates[id]; !ok {
		return availabilityRepo.ErrTemplateNotFound
	}
	delete(r.templates, id)
	return nil
}

func (r *memAvailabilityRepo) ReplaceSlots(_ context.Context, vendorID string, day models.Weekday, slots []models.AvailabilitySlot) error {
	r.slots[dayKey{vendorID, day}] = slots
	r.replaces++
	return nil
}

func (r *memAvailabilityRepo) QuerySlots(_ context.Context, vendorID, serviceID string, day models.Weekday) ([]models.AvailabilitySlot, error) {
	var out []models.AvailabilitySlot
	for _, s := range r.slots[dayKey{vendorID, day}] {
		if !s.Active {
			continue
		}
		if s.ServiceID != "" && s.ServiceID != serviceID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type noServicesRepo struct {
	serviceRepo.Repository
}

func (noServicesRepo) ListActiveByVendor(context.Context, string) ([]models.Service, error) {
	return nil, nil
}

func newTemplateService() (*DefaultTemplateService, *memAvailabilityRepo) {
	repo := newMemAvailabilityRepo()
	return &DefaultTemplateService{
		Repo:     repo,
		Services: noServicesRepo{},
		Logger:   zap.NewNop(),
	}, repo
}

func TestUpsertTemplateRegenerates(t *testing.T) {
	svc, repo := newTemplateService()
	tpl := mondayTemplate()

	if err := svc.UpsertTemplate(context.Background(), &tpl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	slots := repo.slots[dayKey{"vendor-1", models.Monday}]
	if len(slots) != 8 {
		t.Fatalf("got %d slots after upsert, want 8", len(slots))
	}
}

func TestUpsertTemplateRejectsInvalid(t *testing.T) {
	svc, repo := newTemplateService()
	tpl := mondayTemplate()
	tpl.StartMinute, tpl.EndMinute = tpl.EndMinute, tpl.StartMinute

	if err := svc.UpsertTemplate(context.Background(), &tpl); err == nil {
		t.Fatal("expected validation error for inverted window")
	}
	if repo.replaces != 0 {
		t.Error("invalid template triggered a regeneration")
	}
}

func TestUpsertTemplateIdempotentRegeneration(t *testing.T) {
	svc, repo := newTemplateService()
	tpl := mondayTemplate()

	if err := svc.UpsertTemplate(context.Background(), &tpl); err != nil {
		t.Fatal(err)
	}
	first := repo.slots[dayKey{"vendor-1", models.Monday}]

	if err := svc.UpsertTemplate(context.Background(), &tpl); err != nil {
		t.Fatal(err)
	}
	second := repo.slots[dayKey{"vendor-1", models.Monday}]

	if !reflect.DeepEqual(first, second) {
		t.Error("re-upserting an unchanged template changed the slot set")
	}
}

func TestUpsertTemplateDayMoveClearsOldDay(t *testing.T) {
	svc, repo := newTemplateService()
	tpl := mondayTemplate()

	if err := svc.UpsertTemplate(context.Background(), &tpl); err != nil {
		t.Fatal(err)
	}

	tpl.Day = models.Tuesday
	if err := svc.UpsertTemplate(context.Background(), &tpl); err != nil {
		t.Fatal(err)
	}

	if got := len(repo.slots[dayKey{"vendor-1", models.Monday}]); got != 0 {
		t.Errorf("old day still has %d slots", got)
	}
	if got := len(repo.slots[dayKey{"vendor-1", models.Tuesday}]); got != 8 {
		t.Errorf("new day has %d slots, want 8", got)
	}
}

func TestDeleteTemplatePurgesSlots(t *testing.T) {
	svc, repo := newTemplateService()
	tpl := mondayTemplate()

	if err := svc.UpsertTemplate(context.Background(), &tpl); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteTemplate(context.Background(), tpl.ID); err != nil {
		t.Fatal(err)
	}

	if got := len(repo.slots[dayKey{"vendor-1", models.Monday}]); got != 0 {
		t.Errorf("deleted template left %d slots behind", got)
	}
}

func TestSlotsOnFiltersEffectiveRange(t *testing.T) {
	svc, _ := newTemplateService()
	tpl := mondayTemplate()
	until := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	tpl.EffectiveUntil = &until

	if err := svc.UpsertTemplate(context.Background(), &tpl); err != nil {
		t.Fatal(err)
	}

	inside := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)   // a Monday before the cutoff
	outside := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC) // a Monday after

	slots, err := svc.SlotsOn(context.Background(), "vendor-1", "", inside)
	if err != nil || len(slots) != 8 {
		t.Errorf("inside range: %d slots (%v), want 8", len(slots), err)
	}
	slots, err = svc.SlotsOn(context.Background(), "vendor-1", "", outside)
	if err != nil || len(slots) != 0 {
		t.Errorf("past the cutoff: %d slots (%v), want 0", len(slots), err)
	}
}
