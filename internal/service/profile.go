package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/metrics"
	"github.com/pkordes/packlist/backend/internal/querycache"
	"github.com/pkordes/packlist/backend/internal/repo"
)

// ProfileService reads and writes the caller's display profile.
type ProfileService struct {
	repo repo.ProfileRepo
	inv  invalidator
}

// NewProfileService constructs a ProfileService.
func NewProfileService(r repo.ProfileRepo, cache *querycache.Cache, m *metrics.Metrics, log *slog.Logger) *ProfileService {
	return &ProfileService{repo: r, inv: newInvalidator(cache, m, log)}
}

// Get returns domain.ErrNotFound until Set has been called.
func (s *ProfileService) Get(ctx context.Context) (domain.Profile, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.Get: %w", err)
	}
	p, err := querycache.Fetch(ctx, s.inv.cache, userKey(EntityProfile, user), 0,
		func(ctx context.Context) (domain.Profile, error) { return s.repo.Get(ctx, user) })
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.Get: %w", err)
	}
	return p, nil
}

func (s *ProfileService) Set(ctx context.Context, name string) (domain.Profile, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.Set: %w", err)
	}
	name = domain.NormalizeName(name)
	if name == "" {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.Set: %w: name is required", domain.ErrValidation)
	}
	p, err := s.repo.Upsert(ctx, domain.Profile{Owner: user, Name: name})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service.ProfileService.Set: %w", err)
	}
	s.inv.invalidate(userKey(EntityProfile, user))
	return p, nil
}
