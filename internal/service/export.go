package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/repo"
)

// ExportService flattens a trip's packing list for download.
type ExportService struct {
	trips repo.TripRepo
	items repo.ItemRepo
	bags  repo.BagRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, items repo.ItemRepo, bags repo.BagRepo) *ExportService {
	return &ExportService{trips: trips, items: items, bags: bags}
}

// Export returns one row per item, in list order, with bag names resolved.
// A trip with no items exports no rows.
func (s *ExportService) Export(ctx context.Context, tripID uuid.UUID) (domain.Trip, []domain.ExportRow, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	trip, err := s.trips.GetByID(ctx, user, tripID)
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	bags, err := s.bags.List(ctx, tripID)
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.ExportService.Export: bags: %w", err)
	}
	items, err := s.items.List(ctx, tripID, domain.ItemFilter{})
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.ExportService.Export: items: %w", err)
	}

	names := make(map[uuid.UUID]string, len(bags))
	for _, b := range bags {
		names[b.ID] = b.Name
	}

	rows := make([]domain.ExportRow, 0, len(items))
	for _, it := range items {
		row := domain.ExportRow{
			Item:        it.Name,
			Category:    it.Category,
			Quantity:    it.Quantity,
			WeightGrams: it.Weight.OrElse(0),
			Packed:      it.Packed,
		}
		if id, ok := it.BagID.Get(); ok {
			row.Bag = names[id]
		}
		rows = append(rows, row)
	}
	return trip, rows, nil
}
