package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/metrics"
	"github.com/pkordes/packlist/backend/internal/packing"
	"github.com/pkordes/packlist/backend/internal/querycache"
	"github.com/pkordes/packlist/backend/internal/repo"
)

// BagService manages the bags of the caller's trips.
type BagService struct {
	trips repo.TripRepo
	bags  repo.BagRepo
	items repo.ItemRepo
	inv   invalidator
}

// NewBagService constructs a BagService.
func NewBagService(trips repo.TripRepo, bags repo.BagRepo, items repo.ItemRepo, cache *querycache.Cache, m *metrics.Metrics, log *slog.Logger) *BagService {
	return &BagService{trips: trips, bags: bags, items: items, inv: newInvalidator(cache, m, log)}
}

// Create validates and stores a bag.
func (s *BagService) Create(ctx context.Context, bag domain.Bag) (domain.Bag, error) {
	user, err := authorizeTrip(ctx, s.trips, bag.TripID)
	if err != nil {
		return domain.Bag{}, fmt.Errorf("service.BagService.Create: %w", err)
	}
	if err := bag.Validate(); err != nil {
		return domain.Bag{}, fmt.Errorf("service.BagService.Create: %w", err)
	}
	created, err := s.bags.Create(ctx, bag)
	if err != nil {
		return domain.Bag{}, fmt.Errorf("service.BagService.Create: %w", err)
	}
	s.inv.invalidate(tripKey(EntityBags, bag.TripID, user))
	return created, nil
}

// List returns a trip's bags in creation order.
func (s *BagService) List(ctx context.Context, tripID uuid.UUID) ([]domain.Bag, error) {
	user, err := authorizeTrip(ctx, s.trips, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.BagService.List: %w", err)
	}
	k := tripKey(EntityBags, tripID, user)
	k.Variant = "list"
	bags, err := querycache.Fetch(ctx, s.inv.cache, k, 0, func(ctx context.Context) ([]domain.Bag, error) {
		return s.bags.List(ctx, tripID)
	})
	if err != nil {
		return nil, fmt.Errorf("service.BagService.List: %w", err)
	}
	if bags == nil {
		bags = []domain.Bag{}
	}
	return bags, nil
}

// Update renames a bag or changes its limit.
func (s *BagService) Update(ctx context.Context, bag domain.Bag) (domain.Bag, error) {
	user, err := authorizeTrip(ctx, s.trips, bag.TripID)
	if err != nil {
		return domain.Bag{}, fmt.Errorf("service.BagService.Update: %w", err)
	}
	if err := bag.Validate(); err != nil {
		return domain.Bag{}, fmt.Errorf("service.BagService.Update: %w", err)
	}
	updated, err := s.bags.Update(ctx, bag)
	if err != nil {
		return domain.Bag{}, fmt.Errorf("service.BagService.Update: %w", err)
	}
	s.inv.invalidate(tripKey(EntityBags, bag.TripID, user), tripKey(EntityItems, bag.TripID, user))
	return updated, nil
}

// Delete removes a bag. Its items stay on the trip, unassigned.
func (s *BagService) Delete(ctx context.Context, tripID, bagID uuid.UUID) error {
	user, err := authorizeTrip(ctx, s.trips, tripID)
	if err != nil {
		return fmt.Errorf("service.BagService.Delete: %w", err)
	}
	if err := s.bags.Delete(ctx, tripID, bagID); err != nil {
		return fmt.Errorf("service.BagService.Delete: %w", err)
	}
	s.inv.invalidate(tripKey(EntityBags, tripID, user), tripKey(EntityItems, tripID, user))
	return nil
}

// Summaries recomputes every bag's weight summary from the trip's current items.
func (s *BagService) Summaries(ctx context.Context, tripID uuid.UUID) ([]packing.BagSummary, error) {
	bags, err := s.List(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.BagService.Summaries: %w", err)
	}
	items, err := s.items.List(ctx, tripID, domain.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("service.BagService.Summaries: %w", err)
	}
	return packing.SummarizeBags(bags, items), nil
}
