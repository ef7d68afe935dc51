// Package weather acquires daily weather for a trip's date range from
// Open-Meteo, classifies it, and converts it to and from the cached form.
//
// Every fetch is fail-soft: network failures, non-2xx responses and
// malformed payloads produce a TripWeather with DataAvailable=false rather
// than an error. Nothing is retried.
package weather

import (
	"time"

	"github.com/pkordes/packlist/backend/internal/optional"
)

// Day is one day of weather. Date is a civil date at UTC midnight.
// Forecast days carry PrecipitationProbability (percent); historical days
// carry PrecipitationSum (mm).
type Day struct {
	Date                     time.Time               `json:"date"`
	TempMax                  float64                 `json:"temp_max"`
	TempMin                  float64                 `json:"temp_min"`
	PrecipitationProbability optional.Value[float64] `json:"precipitation_probability,omitzero"`
	PrecipitationSum         optional.Value[float64] `json:"precipitation_sum,omitzero"`
	WeatherCode              int                     `json:"weather_code"`
	IsHistorical             bool                    `json:"is_historical"`
}

// Midpoint is the average of the day's max and min temperature.
func (d Day) Midpoint() float64 {
	return (d.TempMax + d.TempMin) / 2
}

// TripWeather is the working weather model for a trip or a preview.
type TripWeather struct {
	Days              []Day `json:"days"`
	HasHistoricalDays bool  `json:"has_historical_days"`
	DataAvailable     bool  `json:"data_available"`
}

// Unavailable is the fail-soft result.
func Unavailable(historical bool) TripWeather {
	return TripWeather{Days: []Day{}, HasHistoricalDays: historical}
}

// DateOnly truncates t to its calendar date, expressed at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
