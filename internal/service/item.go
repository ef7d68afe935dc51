package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/metrics"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/packing"
	"github.com/pkordes/packlist/backend/internal/querycache"
	"github.com/pkordes/packlist/backend/internal/repo"
)

// ItemService manages the packing items of the caller's trips.
type ItemService struct {
	trips repo.TripRepo
	items repo.ItemRepo
	bags  repo.BagRepo
	inv   invalidator
}

// NewItemService constructs an ItemService.
func NewItemService(trips repo.TripRepo, items repo.ItemRepo, bags repo.BagRepo, cache *querycache.Cache, m *metrics.Metrics, log *slog.Logger) *ItemService {
	return &ItemService{trips: trips, items: items, bags: bags, inv: newInvalidator(cache, m, log)}
}

// Add validates and stores one item on a trip.
func (s *ItemService) Add(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error) {
	user, err := s.authorize(ctx, item.TripID)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.Add: %w", err)
	}
	if err := item.Validate(); err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.Add: %w", err)
	}
	if err := s.checkBag(ctx, item.TripID, item.BagID); err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.Add: %w", err)
	}
	item.Packed = false

	created, err := s.items.Create(ctx, item)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.Add: %w", err)
	}
	s.invalidate(item.TripID, user)
	return created, nil
}

// BulkAdd stores several unassigned items at once, typically the selected
// suggestions. Nothing is stored if any item is invalid.
func (s *ItemService) BulkAdd(ctx context.Context, tripID uuid.UUID, items []domain.PackingItem) ([]domain.PackingItem, error) {
	user, err := s.authorize(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.BulkAdd: %w", err)
	}
	if len(items) == 0 {
		return []domain.PackingItem{}, nil
	}
	for i := range items {
		items[i].TripID = tripID
		items[i].BagID = optional.None[uuid.UUID]()
		items[i].Packed = false
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("service.ItemService.BulkAdd: item %d: %w", i, err)
		}
	}

	created, err := s.items.CreateMany(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.BulkAdd: %w", err)
	}
	s.invalidate(tripID, user)
	return created, nil
}

// List returns a trip's items matching filter.
func (s *ItemService) List(ctx context.Context, tripID uuid.UUID, filter domain.ItemFilter) ([]domain.PackingItem, error) {
	user, err := s.authorize(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.List: %w", err)
	}
	k := tripKey(EntityItems, tripID, user)
	k.Variant = itemVariant(filter)

	items, err := querycache.Fetch(ctx, s.inv.cache, k, 0, func(ctx context.Context) ([]domain.PackingItem, error) {
		return s.items.List(ctx, tripID, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.List: %w", err)
	}
	if items == nil {
		items = []domain.PackingItem{}
	}
	return items, nil
}

// Update saves an item's name, category, quantity, weight and bag. The
// packed flag is left alone; use TogglePacked.
func (s *ItemService) Update(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error) {
	user, err := s.authorize(ctx, item.TripID)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}
	if err := item.Validate(); err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}
	if err := s.checkBag(ctx, item.TripID, item.BagID); err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}

	updated, err := s.items.Update(ctx, item)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}
	s.invalidate(item.TripID, user)
	return updated, nil
}

// TogglePacked flips an item's packed flag and returns the new state.
func (s *ItemService) TogglePacked(ctx context.Context, tripID, itemID uuid.UUID) (bool, error) {
	user, err := s.authorize(ctx, tripID)
	if err != nil {
		return false, fmt.Errorf("service.ItemService.TogglePacked: %w", err)
	}
	item, err := s.items.TogglePacked(ctx, tripID, itemID)
	if err != nil {
		return false, fmt.Errorf("service.ItemService.TogglePacked: %w", err)
	}
	s.invalidate(tripID, user)
	return item.Packed, nil
}

// AssignToBag moves an item into a bag of the same trip, or out of any bag
// when bagID is absent.
func (s *ItemService) AssignToBag(ctx context.Context, tripID, itemID uuid.UUID, bagID optional.Value[uuid.UUID]) (domain.PackingItem, error) {
	user, err := s.authorize(ctx, tripID)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.AssignToBag: %w", err)
	}
	if err := s.checkBag(ctx, tripID, bagID); err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.AssignToBag: %w", err)
	}
	item, err := s.items.AssignBag(ctx, tripID, itemID, bagID)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("service.ItemService.AssignToBag: %w", err)
	}
	s.invalidate(tripID, user)
	return item, nil
}

// Delete removes one item.
func (s *ItemService) Delete(ctx context.Context, tripID, itemID uuid.UUID) error {
	user, err := s.authorize(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.ItemService.Delete: %w", err)
	}
	if err := s.items.Delete(ctx, tripID, itemID); err != nil {
		return fmt.Errorf("service.ItemService.Delete: %w", err)
	}
	s.invalidate(tripID, user)
	return nil
}

// Overview is a trip's packing progress with its items grouped by category.
type Overview struct {
	Progress   packing.Progress
	Categories []packing.CategoryGroup
}

// Progress summarizes how much of a trip is packed.
func (s *ItemService) Progress(ctx context.Context, tripID uuid.UUID) (Overview, error) {
	items, err := s.List(ctx, tripID, domain.ItemFilter{})
	if err != nil {
		return Overview{}, fmt.Errorf("service.ItemService.Progress: %w", err)
	}
	return Overview{
		Progress:   packing.PackingProgress(items),
		Categories: packing.GroupByCategory(items),
	}, nil
}

func (s *ItemService) authorize(ctx context.Context, tripID uuid.UUID) (string, error) {
	return authorizeTrip(ctx, s.trips, tripID)
}

// checkBag rejects a bag that is not one of the trip's bags.
func (s *ItemService) checkBag(ctx context.Context, tripID uuid.UUID, bagID optional.Value[uuid.UUID]) error {
	id, ok := bagID.Get()
	if !ok {
		return nil
	}
	if _, err := s.bags.GetByID(ctx, tripID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: bag does not belong to this trip", domain.ErrValidation)
		}
		return err
	}
	return nil
}

// invalidate drops item listings and bag summaries, which depend on items.
func (s *ItemService) invalidate(tripID uuid.UUID, user string) {
	s.inv.invalidate(tripKey(EntityItems, tripID, user), tripKey(EntityBags, tripID, user))
}

func itemVariant(f domain.ItemFilter) string {
	packed := "any"
	if p, ok := f.Packed.Get(); ok {
		packed = fmt.Sprint(p)
	}
	return "packed=" + packed + ",bag=" + f.Bag.String()
}

// authorizeTrip resolves the caller and checks they own tripID.
func authorizeTrip(ctx context.Context, trips repo.TripRepo, tripID uuid.UUID) (string, error) {
	user, err := owner(ctx)
	if err != nil {
		return "", err
	}
	if _, err := trips.GetByID(ctx, user, tripID); err != nil {
		return "", err
	}
	return user, nil
}
