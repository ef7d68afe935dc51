package weather_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/weather"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCacheRoundTrip(t *testing.T) {
	tripID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := weather.TripWeather{
		DataAvailable:     true,
		HasHistoricalDays: true,
		Days: []weather.Day{
			{Date: day(2026, 3, 10), TempMax: 18.4, TempMin: 9.1, PrecipitationProbability: optional.Some(45.0), WeatherCode: 61},
			{Date: day(2026, 3, 11), TempMax: 15, TempMin: 7.5, PrecipitationSum: optional.Some(2.3), WeatherCode: 3, IsHistorical: true},
		},
	}

	cached := weather.ToCached(tripID, in, now)

	assert.Equal(t, tripID, cached.TripID)
	assert.Equal(t, now, cached.CachedAt)
	require.Len(t, cached.Days, 2)
	assert.Equal(t, "2026-03-10", cached.Days[0].Date)
	assert.Equal(t, int64(61), cached.Days[0].WeatherCode)

	out, err := weather.FromCached(cached)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFromCached_EmptyIsUnavailable(t *testing.T) {
	out, err := weather.FromCached(domain.CachedTripWeather{Days: []domain.CachedWeatherDay{}, HasHistoricalDays: true})
	require.NoError(t, err)
	assert.False(t, out.DataAvailable)
	assert.True(t, out.HasHistoricalDays)
}

func TestFromCached_BadDate(t *testing.T) {
	_, err := weather.FromCached(domain.CachedTripWeather{Days: []domain.CachedWeatherDay{{Date: "not-a-date"}}})
	assert.Error(t, err)
}
