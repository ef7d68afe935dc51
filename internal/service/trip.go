// Package service contains the business logic for the packing list API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
//
// Every method acts on behalf of the principal in its context (see
// auth.WithUser) and returns domain.ErrUnauthorized without one.
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

// weatherGuard serializes trip moves with weather reads. *WeatherService
// satisfies it.
type weatherGuard interface {
	Exclusive(tripID uuid.UUID, fn func() error) error
}

// TripService implements business logic for Trip operations.
type TripService struct {
	repo    repo.TripRepo
	tx      repo.Transactor
	weather weatherGuard
	inv     invalidator
}

// NewTripService constructs a TripService. Update needs tx. weather may be
// nil when nothing reads trip weather concurrently (for example in the CLI).
func NewTripService(r repo.TripRepo, tx repo.Transactor, weather weatherGuard, cache *querycache.Cache, m *metrics.Metrics, log *slog.Logger) *TripService {
	return &TripService{repo: r, tx: tx, weather: weather, inv: newInvalidator(cache, m, log)}
}

// Create validates and persists a new trip owned by the caller.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	trip.Owner = user
	trip.Activities = domain.CleanActivities(trip.Activities)
	if err := trip.Validate(); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.inv.invalidate(userKey(EntityTrips, user))
	return created, nil
}

// GetByID returns one of the caller's trips.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	trip, err := querycache.Fetch(ctx, s.inv.cache, tripKey(EntityTrip, id, user), 0,
		func(ctx context.Context) (domain.Trip, error) { return s.repo.GetByID(ctx, user, id) })
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// ListPaged returns one page of the caller's trips, newest start date first,
// and the total count.
func (s *TripService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	user, err := owner(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	trips, total, err := s.repo.ListPaged(ctx, user, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Update validates and saves a trip. Moving the trip in space or time
// deletes its stored weather in the same transaction.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	trip.Owner = user
	trip.Activities = domain.CleanActivities(trip.Activities)
	if err := trip.Validate(); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	var updated domain.Trip
	err = s.exclusive(trip.ID, func() error {
		moved := false
		err := s.tx.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
			existing, err := r.Trips.GetByID(ctx, user, trip.ID)
			if err != nil {
				return err
			}
			if updated, err = r.Trips.Update(ctx, trip); err != nil {
				return err
			}
			if !existing.LocationOrDatesChanged(updated) {
				return nil
			}
			moved = true
			if err := r.Weather.Clear(ctx, updated.ID); err != nil {
				return fmt.Errorf("clear weather: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		keys := []querycache.Key{
			tripKey(EntityTrip, updated.ID, user),
			userKey(EntityTrips, user),
		}
		if moved {
			keys = append(keys, tripKey(EntityTripWeather, updated.ID, user))
		}
		s.inv.invalidate(keys...)
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return updated, nil
}

func (s *TripService) exclusive(tripID uuid.UUID, fn func() error) error {
	if s.weather == nil {
		return fn()
	}
	return s.weather.Exclusive(tripID, fn)
}

// Delete removes a trip and everything hanging off it.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := owner(ctx)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.repo.Delete(ctx, user, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.inv.invalidate(
		tripKey(EntityTrip, id, user),
		userKey(EntityTrips, user),
		tripKey(EntityItems, id, user),
		tripKey(EntityBags, id, user),
		tripKey(EntityTripWeather, id, user),
	)
	return nil
}
