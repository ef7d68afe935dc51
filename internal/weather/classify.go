package weather

import (
	"math"

	"github.com/pkordes/packlist/backend/internal/domain"
)

type codeRange struct {
	lo, hi      int
	icon        string
	description string
}

var codeTable = []codeRange{
	{0, 0, "☀️", "Clear sky"},
	{1, 1, "🌤️", "Mainly clear"},
	{2, 2, "⛅", "Partly cloudy"},
	{3, 3, "☁️", "Overcast"},
	{45, 48, "🌫️", "Foggy"},
	{51, 55, "🌧️", "Drizzle"},
	{56, 57, "🌧️", "Freezing drizzle"},
	{61, 65, "🌧️", "Rain"},
	{66, 67, "🌧️", "Freezing rain"},
	{71, 77, "❄️", "Snow"},
	{80, 82, "🌦️", "Rain showers"},
	{85, 86, "🌨️", "Snow showers"},
	{95, 99, "⛈️", "Thunderstorm"},
}

var fallback = codeRange{icon: "🌤️", description: "Partly cloudy"}

func lookup(code int) codeRange {
	for _, r := range codeTable {
		if code >= r.lo && code <= r.hi {
			return r
		}
	}
	return fallback
}

// Icon maps a WMO weather code to an emoji.
func Icon(code int) string { return lookup(code).icon }

// Description maps a WMO weather code to a short label.
func Description(code int) string { return lookup(code).description }

const (
	rainyProbabilityPct = 30.0
	rainySumMM          = 1.0
	rainyDayFraction    = 0.3
)

// IsRainyDay prefers precipitation probability, then precipitation sum, then
// falls back to the weather code.
func IsRainyDay(d Day) bool {
	if p, ok := d.PrecipitationProbability.Get(); ok {
		return p >= rainyProbabilityPct
	}
	if s, ok := d.PrecipitationSum.Get(); ok {
		return s > rainySumMM
	}
	return (d.WeatherCode >= 51 && d.WeatherCode <= 67) || (d.WeatherCode >= 80 && d.WeatherCode <= 99)
}

// TemperatureCategory buckets an average temperature in Celsius.
func TemperatureCategory(avg float64) domain.TemperatureCategory {
	switch {
	case avg >= 30:
		return domain.Hot
	case avg >= 20:
		return domain.Warm
	case avg >= 10:
		return domain.Mild
	default:
		return domain.Cold
	}
}

// Condition summarizes a trip's weather for the suggestion catalog.
type Condition struct {
	Category domain.TemperatureCategory `json:"condition"`
	IsRainy  bool                       `json:"is_rainy"`
	// AvgTemp is rounded for display; classification uses the exact mean.
	AvgTemp   int `json:"avg_temp"`
	RainyDays int `json:"rainy_days"`
	TotalDays int `json:"total_days"`
}

// DeriveCondition returns false when w has no usable days.
func DeriveCondition(w TripWeather) (Condition, bool) {
	if !w.DataAvailable || len(w.Days) == 0 {
		return Condition{}, false
	}

	var sum float64
	rainy := 0
	for _, d := range w.Days {
		sum += d.Midpoint()
		if IsRainyDay(d) {
			rainy++
		}
	}
	total := len(w.Days)
	avg := sum / float64(total)

	return Condition{
		Category:  TemperatureCategory(avg),
		IsRainy:   float64(rainy)/float64(total) >= rainyDayFraction,
		AvgTemp:   int(math.Round(avg)),
		RainyDays: rainy,
		TotalDays: total,
	}, true
}
