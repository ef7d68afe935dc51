package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/metrics"
	"github.com/pkordes/packlist/backend/internal/querycache"
	"github.com/pkordes/packlist/backend/internal/repo"
)

// ActivityService manages the caller's custom activities.
type ActivityService struct {
	repo repo.ActivityRepo
	inv  invalidator
}

// NewActivityService constructs an ActivityService.
func NewActivityService(r repo.ActivityRepo, cache *querycache.Cache, m *metrics.Metrics, log *slog.Logger) *ActivityService {
	return &ActivityService{repo: r, inv: newInvalidator(cache, m, log)}
}

// Create stores a custom activity. The name may not shadow a predefined
// activity; a duplicate custom name is rejected by the store.
func (s *ActivityService) Create(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.CustomActivity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}
	a.Owner = user
	if err := normalizeActivity(&a); err != nil {
		return domain.CustomActivity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return domain.CustomActivity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}
	s.inv.invalidate(userKey(EntityActivities, user))
	return created, nil
}

// List returns the caller's custom activities in creation order.
func (s *ActivityService) List(ctx context.Context) ([]domain.CustomActivity, error) {
	user, err := owner(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.List: %w", err)
	}
	list, err := querycache.Fetch(ctx, s.inv.cache, userKey(EntityActivities, user), 0,
		func(ctx context.Context) ([]domain.CustomActivity, error) { return s.repo.List(ctx, user) })
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.List: %w", err)
	}
	if list == nil {
		list = []domain.CustomActivity{}
	}
	return list, nil
}

// Update renames an activity or replaces its suggestions. Trips that used
// the old name keep it and see it as orphaned.
func (s *ActivityService) Update(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.CustomActivity{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	a.Owner = user
	if err := normalizeActivity(&a); err != nil {
		return domain.CustomActivity{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return domain.CustomActivity{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	s.inv.invalidate(userKey(EntityActivities, user))
	return updated, nil
}

// Delete removes an activity. Trips are not touched.
func (s *ActivityService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := owner(ctx)
	if err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	if err := s.repo.Delete(ctx, user, id); err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	s.inv.invalidate(userKey(EntityActivities, user))
	return nil
}

// ByIDs returns the caller's activities among ids, in ids order.
func (s *ActivityService) ByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.CustomActivity, error) {
	user, err := owner(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.ByIDs: %w", err)
	}
	if len(ids) == 0 {
		return []domain.CustomActivity{}, nil
	}
	list, err := s.repo.ListByIDs(ctx, user, ids)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.ByIDs: %w", err)
	}
	return list, nil
}

// SuggestedItems concatenates the suggestions of the given activities in
// ids order. Unknown ids contribute nothing.
func (s *ActivityService) SuggestedItems(ctx context.Context, ids []uuid.UUID) ([]domain.SuggestedItem, error) {
	list, err := s.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.SuggestedItems: %w", err)
	}
	out := []domain.SuggestedItem{}
	for _, a := range list {
		out = append(out, a.SuggestedItems...)
	}
	return out, nil
}

// Orphaned returns the names that are neither predefined nor one of the
// caller's current custom activities.
func (s *ActivityService) Orphaned(ctx context.Context, names []string) ([]string, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.Orphaned: %w", err)
	}
	return domain.OrphanedActivities(names, list), nil
}

func normalizeActivity(a *domain.CustomActivity) error {
	a.Name = domain.NormalizeName(a.Name)
	if a.Name == "" {
		return fmt.Errorf("%w: activity name is required", domain.ErrValidation)
	}
	if domain.IsPredefinedActivity(a.Name) {
		return fmt.Errorf("%w: %q is a built-in activity", domain.ErrValidation, a.Name)
	}
	items := make([]domain.SuggestedItem, 0, len(a.SuggestedItems))
	for i, it := range a.SuggestedItems {
		p := domain.PackingItem{Name: it.Name, Category: it.Category, Quantity: it.Quantity}
		if p.Quantity == 0 {
			p.Quantity = 1
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("suggested item %d: %w", i, err)
		}
		items = append(items, domain.SuggestedItem{Name: p.Name, Category: p.Category, Quantity: p.Quantity})
	}
	a.SuggestedItems = items
	return nil
}
