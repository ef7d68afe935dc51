package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/packlist/backend/internal/domain"
)

// WeatherCacheRepo holds at most one cached weather entry per trip.
type WeatherCacheRepo interface {
	// Get returns domain.ErrNotFound when nothing is cached for the trip.
	Get(ctx context.Context, tripID uuid.UUID) (domain.CachedTripWeather, error)

	// Set creates or overwrites the trip's entry. CachedAt is set by the database.
	Set(ctx context.Context, c domain.CachedTripWeather) (domain.CachedTripWeather, error)

	// Clear removes the trip's entry. Clearing an absent entry is not an error.
	Clear(ctx context.Context, tripID uuid.UUID) error
}

type pgWeatherCacheRepo struct {
	db db
}

// NewWeatherCacheRepo constructs a WeatherCacheRepo backed by the provided db connection.
func NewWeatherCacheRepo(db db) WeatherCacheRepo {
	return &pgWeatherCacheRepo{db: db}
}

func (r *pgWeatherCacheRepo) Get(ctx context.Context, tripID uuid.UUID) (domain.CachedTripWeather, error) {
	const q = `SELECT trip_id, days, has_historical_days, cached_at FROM trip_weather WHERE trip_id = @trip_id`

	c, err := scanCachedWeather(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}))
	if err != nil {
		return domain.CachedTripWeather{}, fmt.Errorf("repo.WeatherCacheRepo.Get: %w", err)
	}
	return c, nil
}

func (r *pgWeatherCacheRepo) Set(ctx context.Context, c domain.CachedTripWeather) (domain.CachedTripWeather, error) {
	const q = `
		INSERT INTO trip_weather (trip_id, days, has_historical_days, cached_at)
		VALUES (@trip_id, @days, @has_historical_days, now())
		ON CONFLICT (trip_id) DO UPDATE
		SET days = EXCLUDED.days,
		    has_historical_days = EXCLUDED.has_historical_days,
		    cached_at = EXCLUDED.cached_at
		RETURNING trip_id, days, has_historical_days, cached_at`

	out, err := scanCachedWeather(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"trip_id":             c.TripID,
		"days":                nonNil(c.Days),
		"has_historical_days": c.HasHistoricalDays,
	}))
	if err != nil {
		return domain.CachedTripWeather{}, fmt.Errorf("repo.WeatherCacheRepo.Set: %w", err)
	}
	return out, nil
}

func (r *pgWeatherCacheRepo) Clear(ctx context.Context, tripID uuid.UUID) error {
	const q = `DELETE FROM trip_weather WHERE trip_id = @trip_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return fmt.Errorf("repo.WeatherCacheRepo.Clear: %w", err)
	}
	return nil
}

func scanCachedWeather(s scanner) (domain.CachedTripWeather, error) {
	var (
		c      domain.CachedTripWeather
		tripID pgtype.UUID
	)
	if err := s.Scan(&tripID, &c.Days, &c.HasHistoricalDays, &c.CachedAt); err != nil {
		return domain.CachedTripWeather{}, notFound(err)
	}
	c.TripID = uuid.UUID(tripID.Bytes)
	if c.Days == nil {
		c.Days = []domain.CachedWeatherDay{}
	}
	return c, nil
}
