package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/metrics"
	"github.com/pkordes/packlist/backend/internal/querycache"
	"github.com/pkordes/packlist/backend/internal/repo"
)

// CategoryService manages the caller's custom item categories.
type CategoryService struct {
	repo repo.CategoryRepo
	inv  invalidator
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(r repo.CategoryRepo, cache *querycache.Cache, m *metrics.Metrics, log *slog.Logger) *CategoryService {
	return &CategoryService{repo: r, inv: newInvalidator(cache, m, log)}
}

func (s *CategoryService) Create(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.CustomCategory{}, fmt.Errorf("service.CategoryService.Create: %w", err)
	}
	c.Owner = user
	if err := normalizeCategory(&c); err != nil {
		return domain.CustomCategory{}, fmt.Errorf("service.CategoryService.Create: %w", err)
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return domain.CustomCategory{}, fmt.Errorf("service.CategoryService.Create: %w", err)
	}
	s.inv.invalidate(userKey(EntityCategories, user))
	return created, nil
}

// List returns only the caller's custom categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.CustomCategory, error) {
	user, err := owner(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CategoryService.List: %w", err)
	}
	list, err := querycache.Fetch(ctx, s.inv.cache, userKey(EntityCategories, user), 0,
		func(ctx context.Context) ([]domain.CustomCategory, error) { return s.repo.List(ctx, user) })
	if err != nil {
		return nil, fmt.Errorf("service.CategoryService.List: %w", err)
	}
	if list == nil {
		list = []domain.CustomCategory{}
	}
	return list, nil
}

// All returns the default categories followed by the caller's custom ones.
func (s *CategoryService) All(ctx context.Context) ([]string, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CategoryService.All: %w", err)
	}
	return domain.AllCategories(list), nil
}

// Update renames a category. Items already using the old name keep it.
func (s *CategoryService) Update(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.CustomCategory{}, fmt.Errorf("service.CategoryService.Update: %w", err)
	}
	c.Owner = user
	if err := normalizeCategory(&c); err != nil {
		return domain.CustomCategory{}, fmt.Errorf("service.CategoryService.Update: %w", err)
	}
	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return domain.CustomCategory{}, fmt.Errorf("service.CategoryService.Update: %w", err)
	}
	s.inv.invalidate(userKey(EntityCategories, user))
	return updated, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := owner(ctx)
	if err != nil {
		return fmt.Errorf("service.CategoryService.Delete: %w", err)
	}
	if err := s.repo.Delete(ctx, user, id); err != nil {
		return fmt.Errorf("service.CategoryService.Delete: %w", err)
	}
	s.inv.invalidate(userKey(EntityCategories, user))
	return nil
}

func normalizeCategory(c *domain.CustomCategory) error {
	c.Name = domain.NormalizeName(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	if slices.Contains(domain.DefaultCategories, c.Name) {
		return fmt.Errorf("%w: %q is a built-in category", domain.ErrValidation, c.Name)
	}
	return nil
}
