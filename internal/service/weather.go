package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/metrics"
	"github.com/pkordes/packlist/backend/internal/querycache"
	"github.com/pkordes/packlist/backend/internal/repo"
	"github.com/pkordes/packlist/backend/internal/weather"
)

// WeatherFetcher fetches live weather for a date range. *weather.Fetcher
// satisfies it.
type WeatherFetcher interface {
	FetchForTrip(ctx context.Context, lat, lon float64, start, end time.Time) weather.TripWeather
}

// DefaultPreviewTTL is how long an ad-hoc preview stays cached.
const DefaultPreviewTTL = 30 * time.Minute

// WeatherService serves trip weather through the persistent per-trip cache
// and ad-hoc previews through the in-memory query cache.
type WeatherService struct {
	trips      repo.TripRepo
	store      repo.WeatherCacheRepo
	fetcher    WeatherFetcher
	previewTTL time.Duration
	metrics    *metrics.Metrics
	log        *slog.Logger
	inv        invalidator

	locks   keyedMutex
	preview singleflight.Group
}

// NewWeatherService constructs a WeatherService. previewTTL <= 0 uses
// DefaultPreviewTTL.
func NewWeatherService(trips repo.TripRepo, store repo.WeatherCacheRepo, fetcher WeatherFetcher, cache *querycache.Cache, previewTTL time.Duration, m *metrics.Metrics, log *slog.Logger) *WeatherService {
	if previewTTL <= 0 {
		previewTTL = DefaultPreviewTTL
	}
	inv := newInvalidator(cache, m, log)
	return &WeatherService{
		trips:      trips,
		store:      store,
		fetcher:    fetcher,
		previewTTL: previewTTL,
		metrics:    m,
		log:        inv.log,
		inv:        inv,
	}
}

// ForTrip returns a trip's weather, preferring the stored copy. A live
// result is stored only when it has data. Returns domain.ErrNotEnabled when
// the trip has no location or dates yet.
//
// The trip is loaded and the result cached under the trip's lock, so a
// concurrent move (see Exclusive) cannot leave weather for the old location
// behind.
func (s *WeatherService) ForTrip(ctx context.Context, tripID uuid.UUID) (weather.TripWeather, error) {
	unlock := s.locks.lock(tripID)
	defer unlock()

	trip, err := s.enabledTrip(ctx, tripID)
	if err != nil {
		return weather.TripWeather{}, fmt.Errorf("service.WeatherService.ForTrip: %w", err)
	}

	k := tripKey(EntityTripWeather, tripID, trip.Owner)
	if v, ok := s.inv.cache.Get(k); ok {
		if w, ok := v.(weather.TripWeather); ok {
			return w, nil
		}
	}

	w, err := s.loadOrFetch(ctx, trip)
	if err != nil {
		return weather.TripWeather{}, fmt.Errorf("service.WeatherService.ForTrip: %w", err)
	}
	// Unavailable results are retried on the next read.
	if w.DataAvailable {
		s.inv.cache.Set(k, w)
	}
	return w, nil
}

// Refresh bypasses the stored copy and overwrites it when the live fetch
// has data.
func (s *WeatherService) Refresh(ctx context.Context, tripID uuid.UUID) (weather.TripWeather, error) {
	unlock := s.locks.lock(tripID)
	defer unlock()

	trip, err := s.enabledTrip(ctx, tripID)
	if err != nil {
		return weather.TripWeather{}, fmt.Errorf("service.WeatherService.Refresh: %w", err)
	}
	w, err := s.fetchAndStore(ctx, trip)
	if err != nil {
		return weather.TripWeather{}, fmt.Errorf("service.WeatherService.Refresh: %w", err)
	}
	s.inv.invalidate(tripKey(EntityTripWeather, tripID, trip.Owner))
	return w, nil
}

// Clear forgets a trip's stored weather.
func (s *WeatherService) Clear(ctx context.Context, tripID uuid.UUID) error {
	user, err := authorizeTrip(ctx, s.trips, tripID)
	if err != nil {
		return fmt.Errorf("service.WeatherService.Clear: %w", err)
	}

	unlock := s.locks.lock(tripID)
	defer unlock()
	if err := s.store.Clear(ctx, tripID); err != nil {
		return fmt.Errorf("service.WeatherService.Clear: %w", err)
	}
	s.inv.invalidate(tripKey(EntityTripWeather, tripID, user))
	return nil
}

// Exclusive runs fn while holding the trip's weather lock. TripService uses
// it to move a trip and drop its weather as one step.
func (s *WeatherService) Exclusive(tripID uuid.UUID, fn func() error) error {
	unlock := s.locks.lock(tripID)
	defer unlock()
	return fn()
}

// Preview fetches weather for a location and range that need not belong to
// a trip. Results with data are shared across callers for the preview TTL.
func (s *WeatherService) Preview(ctx context.Context, lat, lon float64, start, end time.Time) (weather.TripWeather, error) {
	if (lat == 0 && lon == 0) || start.IsZero() || end.IsZero() {
		return weather.TripWeather{}, fmt.Errorf("service.WeatherService.Preview: %w", domain.ErrNotEnabled)
	}
	if end.Before(start) {
		return weather.TripWeather{}, fmt.Errorf("service.WeatherService.Preview: %w: end date is before start date", domain.ErrValidation)
	}

	k := querycache.Key{
		Entity:  EntityWeatherPreview,
		Variant: fmt.Sprintf("%.4f,%.4f,%s,%s", lat, lon, start.Format(domain.DateLayout), end.Format(domain.DateLayout)),
	}
	if v, ok := s.inv.cache.Get(k); ok {
		if w, ok := v.(weather.TripWeather); ok {
			s.metrics.ObserveWeatherCache(true)
			return w, nil
		}
	}
	s.metrics.ObserveWeatherCache(false)

	v, _, _ := s.preview.Do(k.String(), func() (any, error) {
		w := s.fetcher.FetchForTrip(context.WithoutCancel(ctx), lat, lon, start, end)
		s.metrics.ObserveWeatherFetch("preview", w.DataAvailable)
		if w.DataAvailable {
			s.inv.cache.SetTTL(k, w, s.previewTTL)
		}
		return w, nil
	})
	return v.(weather.TripWeather), nil
}

// enabledTrip loads the caller's trip and checks it can have weather.
func (s *WeatherService) enabledTrip(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	user, err := owner(ctx)
	if err != nil {
		return domain.Trip{}, err
	}
	trip, err := s.trips.GetByID(ctx, user, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if !trip.HasCoordinates() || !trip.HasDates() {
		return domain.Trip{}, domain.ErrNotEnabled
	}
	return trip, nil
}

// loadOrFetch must be called with the trip's lock held.
func (s *WeatherService) loadOrFetch(ctx context.Context, trip domain.Trip) (weather.TripWeather, error) {
	cached, err := s.store.Get(ctx, trip.ID)
	switch {
	case err == nil:
		w, convErr := weather.FromCached(cached)
		if convErr == nil {
			s.metrics.ObserveWeatherCache(true)
			return w, nil
		}
		s.log.Warn("discarding unreadable cached weather", "trip_id", trip.ID, "error", convErr)
	case !errors.Is(err, domain.ErrNotFound):
		return weather.TripWeather{}, err
	}

	s.metrics.ObserveWeatherCache(false)
	return s.fetchAndStore(ctx, trip)
}

// fetchAndStore must be called with the trip's lock held.
func (s *WeatherService) fetchAndStore(ctx context.Context, trip domain.Trip) (weather.TripWeather, error) {
	w := s.fetcher.FetchForTrip(ctx, trip.Latitude, trip.Longitude, trip.StartDate, trip.EndDate)
	s.metrics.ObserveWeatherFetch("trip", w.DataAvailable)
	if !w.DataAvailable {
		s.log.Info("weather unavailable", "trip_id", trip.ID, "has_historical_days", w.HasHistoricalDays)
		return w, nil
	}
	if _, err := s.store.Set(ctx, weather.ToCached(trip.ID, w, time.Now())); err != nil {
		return weather.TripWeather{}, err
	}
	return w, nil
}

// keyedMutex serializes work per trip. Locks are not reentrant.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id uuid.UUID) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[uuid.UUID]*refLock)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &refLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
