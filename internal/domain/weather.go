package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/optional"
)

// TemperatureCategory buckets an average temperature for suggestions.
type TemperatureCategory string

const (
	Hot  TemperatureCategory = "Hot"
	Warm TemperatureCategory = "Warm"
	Mild TemperatureCategory = "Mild"
	Cold TemperatureCategory = "Cold"
)

// CachedTripWeather is the persisted weather entry for a trip. There is at
// most one per trip; it is overwritten on refresh and cleared when the trip's
// location or dates change.
type CachedTripWeather struct {
	TripID            uuid.UUID
	Days              []CachedWeatherDay
	HasHistoricalDays bool
	CachedAt          time.Time
}

// CachedWeatherDay is the stored form of one day. WeatherCode is kept as a
// wide integer to match the store; it is narrowed for classification.
type CachedWeatherDay struct {
	Date                     string                  `json:"date"`
	TempMax                  float64                 `json:"temp_max"`
	TempMin                  float64                 `json:"temp_min"`
	PrecipitationProbability optional.Value[float64] `json:"precipitation_probability,omitzero"`
	PrecipitationSum         optional.Value[float64] `json:"precipitation_sum,omitzero"`
	WeatherCode              int64                   `json:"weather_code"`
	IsHistorical             bool                    `json:"is_historical,omitempty"`
}
