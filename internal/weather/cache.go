package weather

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
)

// ToCached converts a fetched result into the persisted form.
func ToCached(tripID uuid.UUID, w TripWeather, now time.Time) domain.CachedTripWeather {
	days := make([]domain.CachedWeatherDay, len(w.Days))
	for i, d := range w.Days {
		days[i] = domain.CachedWeatherDay{
			Date:                     d.Date.Format(domain.DateLayout),
			TempMax:                  d.TempMax,
			TempMin:                  d.TempMin,
			PrecipitationProbability: d.PrecipitationProbability,
			PrecipitationSum:         d.PrecipitationSum,
			WeatherCode:              int64(d.WeatherCode),
			IsHistorical:             d.IsHistorical,
		}
	}
	return domain.CachedTripWeather{
		TripID:            tripID,
		Days:              days,
		HasHistoricalDays: w.HasHistoricalDays,
		CachedAt:          now,
	}
}

// FromCached converts a cache entry back into the working model. A cached
// entry with no days reads as unavailable.
func FromCached(c domain.CachedTripWeather) (TripWeather, error) {
	days := make([]Day, len(c.Days))
	for i, d := range c.Days {
		date, err := time.Parse(domain.DateLayout, d.Date)
		if err != nil {
			return TripWeather{}, fmt.Errorf("weather.FromCached: day %d: %w", i, err)
		}
		days[i] = Day{
			Date:                     date,
			TempMax:                  d.TempMax,
			TempMin:                  d.TempMin,
			PrecipitationProbability: d.PrecipitationProbability,
			PrecipitationSum:         d.PrecipitationSum,
			WeatherCode:              int(d.WeatherCode),
			IsHistorical:             d.IsHistorical,
		}
	}
	return TripWeather{
		Days:              days,
		HasHistoricalDays: c.HasHistoricalDays,
		DataAvailable:     len(days) > 0,
	}, nil
}
