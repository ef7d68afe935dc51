package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/metrics"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/querycache"
	"github.com/pkordes/packlist/backend/internal/repo"
)

// TemplateService manages reusable packing templates and copies them to and
// from trips.
type TemplateService struct {
	templates repo.TemplateRepo
	tx        repo.Transactor
	inv       invalidator
}

// NewTemplateService constructs a TemplateService. Snapshot and apply run
// through tx; everything else uses templates directly.
func NewTemplateService(templates repo.TemplateRepo, tx repo.Transactor, cache *querycache.Cache, m *metrics.Metrics, log *slog.Logger) *TemplateService {
	return &TemplateService{templates: templates, tx: tx, inv: newInvalidator(cache, m, log)}
}

// ApplyResult reports what Apply created on the trip.
type ApplyResult struct {
	BagsCreated  int
	ItemsCreated int
}

// Create stores a template from scratch. Item BagIDs refer to the IDs of
// entries in t.Bags.
func (s *TemplateService) Create(ctx context.Context, t domain.Template) (domain.Template, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Template{}, fmt.Errorf("service.TemplateService.Create: %w", err)
	}
	t.Owner = user
	if err := normalizeTemplate(&t); err != nil {
		return domain.Template{}, fmt.Errorf("service.TemplateService.Create: %w", err)
	}

	var created domain.Template
	err = s.tx.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		var err error
		created, err = r.Templates.Create(ctx, t)
		return err
	})
	if err != nil {
		return domain.Template{}, fmt.Errorf("service.TemplateService.Create: %w", err)
	}
	s.inv.invalidate(userKey(EntityTemplates, user))
	return created, nil
}

// GetByID returns a template with its bags and items.
func (s *TemplateService) GetByID(ctx context.Context, id uuid.UUID) (domain.Template, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Template{}, fmt.Errorf("service.TemplateService.GetByID: %w", err)
	}
	t, err := querycache.Fetch(ctx, s.inv.cache, templateKey(id, user), 0,
		func(ctx context.Context) (domain.Template, error) { return s.templates.GetByID(ctx, user, id) })
	if err != nil {
		return domain.Template{}, fmt.Errorf("service.TemplateService.GetByID: %w", err)
	}
	return t, nil
}

// List returns the caller's template headers, newest first.
func (s *TemplateService) List(ctx context.Context) ([]domain.Template, error) {
	user, err := owner(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TemplateService.List: %w", err)
	}
	list, err := querycache.Fetch(ctx, s.inv.cache, userKey(EntityTemplates, user), 0,
		func(ctx context.Context) ([]domain.Template, error) { return s.templates.List(ctx, user) })
	if err != nil {
		return nil, fmt.Errorf("service.TemplateService.List: %w", err)
	}
	if list == nil {
		list = []domain.Template{}
	}
	return list, nil
}

// Update changes a template's name, description and activities.
func (s *TemplateService) Update(ctx context.Context, t domain.Template) (domain.Template, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Template{}, fmt.Errorf("service.TemplateService.Update: %w", err)
	}
	t.Owner = user
	if err := normalizeTemplate(&t); err != nil {
		return domain.Template{}, fmt.Errorf("service.TemplateService.Update: %w", err)
	}
	updated, err := s.templates.Update(ctx, t)
	if err != nil {
		return domain.Template{}, fmt.Errorf("service.TemplateService.Update: %w", err)
	}
	s.invalidate(t.ID, user)
	return updated, nil
}

// Delete removes a template and its rows.
func (s *TemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := owner(ctx)
	if err != nil {
		return fmt.Errorf("service.TemplateService.Delete: %w", err)
	}
	if err := s.templates.Delete(ctx, user, id); err != nil {
		return fmt.Errorf("service.TemplateService.Delete: %w", err)
	}
	s.invalidate(id, user)
	return nil
}

// AddBag appends a bag to a template.
func (s *TemplateService) AddBag(ctx context.Context, templateID uuid.UUID, bag domain.TemplateBag) (domain.TemplateBag, error) {
	user, _, err := s.load(ctx, templateID)
	if err != nil {
		return domain.TemplateBag{}, fmt.Errorf("service.TemplateService.AddBag: %w", err)
	}
	b := domain.Bag{Name: bag.Name, WeightLimit: bag.WeightLimit}
	if err := b.Validate(); err != nil {
		return domain.TemplateBag{}, fmt.Errorf("service.TemplateService.AddBag: %w", err)
	}
	bag.Name = b.Name

	stored, err := s.templates.AddBag(ctx, templateID, bag)
	if err != nil {
		return domain.TemplateBag{}, fmt.Errorf("service.TemplateService.AddBag: %w", err)
	}
	s.invalidate(templateID, user)
	return stored, nil
}

// DeleteBag removes a bag from a template; its items stay, unassigned.
func (s *TemplateService) DeleteBag(ctx context.Context, templateID, bagID uuid.UUID) error {
	user, _, err := s.load(ctx, templateID)
	if err != nil {
		return fmt.Errorf("service.TemplateService.DeleteBag: %w", err)
	}
	if err := s.templates.DeleteBag(ctx, templateID, bagID); err != nil {
		return fmt.Errorf("service.TemplateService.DeleteBag: %w", err)
	}
	s.invalidate(templateID, user)
	return nil
}

// AddItem appends an item to a template. A BagID must name one of the
// template's bags.
func (s *TemplateService) AddItem(ctx context.Context, templateID uuid.UUID, item domain.TemplateItem) (domain.TemplateItem, error) {
	user, t, err := s.load(ctx, templateID)
	if err != nil {
		return domain.TemplateItem{}, fmt.Errorf("service.TemplateService.AddItem: %w", err)
	}
	p := domain.PackingItem{Name: item.Name, Category: item.Category, Quantity: item.Quantity, Weight: item.Weight}
	if err := p.Validate(); err != nil {
		return domain.TemplateItem{}, fmt.Errorf("service.TemplateService.AddItem: %w", err)
	}
	item.Name, item.Category = p.Name, p.Category
	if id, ok := item.BagID.Get(); ok && !hasTemplateBag(t, id) {
		return domain.TemplateItem{}, fmt.Errorf("service.TemplateService.AddItem: %w: bag does not belong to this template", domain.ErrValidation)
	}

	stored, err := s.templates.AddItem(ctx, templateID, item)
	if err != nil {
		return domain.TemplateItem{}, fmt.Errorf("service.TemplateService.AddItem: %w", err)
	}
	s.invalidate(templateID, user)
	return stored, nil
}

// DeleteItem removes an item from a template.
func (s *TemplateService) DeleteItem(ctx context.Context, templateID, itemID uuid.UUID) error {
	user, _, err := s.load(ctx, templateID)
	if err != nil {
		return fmt.Errorf("service.TemplateService.DeleteItem: %w", err)
	}
	if err := s.templates.DeleteItem(ctx, templateID, itemID); err != nil {
		return fmt.Errorf("service.TemplateService.DeleteItem: %w", err)
	}
	s.invalidate(templateID, user)
	return nil
}

// SaveFromTrip snapshots a trip's bags, items and activities into a new
// template. Packed state is not kept.
func (s *TemplateService) SaveFromTrip(ctx context.Context, tripID uuid.UUID, name, description string) (domain.Template, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Template{}, fmt.Errorf("service.TemplateService.SaveFromTrip: %w", err)
	}

	var created domain.Template
	err = s.tx.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		trip, err := r.Trips.GetByID(ctx, user, tripID)
		if err != nil {
			return err
		}
		bags, err := r.Bags.List(ctx, tripID)
		if err != nil {
			return err
		}
		items, err := r.Items.List(ctx, tripID, domain.ItemFilter{})
		if err != nil {
			return err
		}

		t := Snapshot(trip, bags, items)
		t.Owner = user
		t.Name = name
		t.Description = description
		if err := normalizeTemplate(&t); err != nil {
			return err
		}
		created, err = r.Templates.Create(ctx, t)
		return err
	})
	if err != nil {
		return domain.Template{}, fmt.Errorf("service.TemplateService.SaveFromTrip: %w", err)
	}
	s.inv.invalidate(userKey(EntityTemplates, user))
	return created, nil
}

// Apply copies a template's bags and items onto a trip. Applying twice
// duplicates everything; nothing is created if any insert fails.
func (s *TemplateService) Apply(ctx context.Context, tripID, templateID uuid.UUID) (ApplyResult, error) {
	user, err := owner(ctx)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("service.TemplateService.Apply: %w", err)
	}

	var res ApplyResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		if _, err := r.Trips.GetByID(ctx, user, tripID); err != nil {
			return err
		}
		t, err := r.Templates.GetByID(ctx, user, templateID)
		if err != nil {
			return err
		}

		remap := make(map[uuid.UUID]uuid.UUID, len(t.Bags))
		for _, tb := range t.Bags {
			bag, err := r.Bags.Create(ctx, domain.Bag{TripID: tripID, Name: tb.Name, WeightLimit: tb.WeightLimit})
			if err != nil {
				return err
			}
			remap[tb.ID] = bag.ID
		}

		items := make([]domain.PackingItem, len(t.Items))
		for i, ti := range t.Items {
			items[i] = domain.PackingItem{
				TripID:   tripID,
				Name:     ti.Name,
				Category: ti.Category,
				Quantity: ti.Quantity,
				Weight:   ti.Weight,
			}
			if old, ok := ti.BagID.Get(); ok {
				if id, found := remap[old]; found {
					items[i].BagID = optional.Some(id)
				}
			}
		}
		if len(items) > 0 {
			if _, err := r.Items.CreateMany(ctx, items); err != nil {
				return err
			}
		}
		res = ApplyResult{BagsCreated: len(t.Bags), ItemsCreated: len(items)}
		return nil
	})
	if err != nil {
		return ApplyResult{}, fmt.Errorf("service.TemplateService.Apply: %w", err)
	}

	s.inv.metrics.ObserveTemplateApplied(res.ItemsCreated)
	s.inv.invalidate(tripKey(EntityItems, tripID, user), tripKey(EntityBags, tripID, user))
	return res, nil
}

// Snapshot converts a trip's current list into an unsaved template whose
// bag IDs are the trip's bag ids.
func Snapshot(trip domain.Trip, bags []domain.Bag, items []domain.PackingItem) domain.Template {
	t := domain.Template{
		Activities: append([]string{}, trip.Activities...),
		Bags:       make([]domain.TemplateBag, len(bags)),
		Items:      make([]domain.TemplateItem, len(items)),
	}
	for i, b := range bags {
		t.Bags[i] = domain.TemplateBag{ID: b.ID, Name: b.Name, WeightLimit: b.WeightLimit}
	}
	for i, it := range items {
		t.Items[i] = domain.TemplateItem{
			Name:     it.Name,
			Category: it.Category,
			Quantity: it.Quantity,
			Weight:   it.Weight,
			BagID:    it.BagID,
		}
	}
	return t
}

func (s *TemplateService) load(ctx context.Context, id uuid.UUID) (string, domain.Template, error) {
	user, err := owner(ctx)
	if err != nil {
		return "", domain.Template{}, err
	}
	t, err := s.templates.GetByID(ctx, user, id)
	if err != nil {
		return "", domain.Template{}, err
	}
	return user, t, nil
}

func (s *TemplateService) invalidate(id uuid.UUID, user string) {
	s.inv.invalidate(templateKey(id, user), userKey(EntityTemplates, user))
}

func templateKey(id uuid.UUID, user string) querycache.Key {
	return querycache.Key{Entity: EntityTemplate, ID: id.String(), User: user}
}

func normalizeTemplate(t *domain.Template) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)
	if t.Name == "" {
		return fmt.Errorf("%w: template name is required", domain.ErrValidation)
	}
	t.Activities = domain.CleanActivities(t.Activities)
	return nil
}

func hasTemplateBag(t domain.Template, id uuid.UUID) bool {
	for _, b := range t.Bags {
		if b.ID == id {
			return true
		}
	}
	return false
}
