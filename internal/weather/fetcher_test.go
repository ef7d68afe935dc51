package weather_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/packlist/backend/internal/weather"
)

type call struct {
	kind       string
	start, end time.Time
}

// fakeSource returns one synthetic day per requested date and records calls.
type fakeSource struct {
	mu             sync.Mutex
	calls          []call
	failHistorical bool
}

func (f *fakeSource) record(kind string, start, end time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{kind, start, end})
}

func span(start, end time.Time, historical bool) []weather.Day {
	var out []weather.Day
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, weather.Day{Date: d, TempMax: 20, TempMin: 10, IsHistorical: historical})
	}
	return out
}

func (f *fakeSource) Forecast(_ context.Context, _, _ float64, start, end time.Time) weather.TripWeather {
	f.record("forecast", start, end)
	days := span(start, end, false)
	return weather.TripWeather{Days: days, DataAvailable: len(days) > 0}
}

func (f *fakeSource) Historical(_ context.Context, _, _ float64, start, end time.Time) weather.TripWeather {
	f.record("historical", start, end)
	if f.failHistorical {
		return weather.Unavailable(true)
	}
	days := span(start, end, true)
	return weather.TripWeather{Days: days, HasHistoricalDays: true, DataAvailable: len(days) > 0}
}

// afternoon is deliberately not midnight: "today" must be the calendar date.
var afternoon = time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)

func newFetcher(src weather.Source) *weather.Fetcher {
	return weather.NewFetcher(src,
		weather.WithClock(func() time.Time { return afternoon }),
		weather.WithLocation(time.UTC),
	)
}

func TestFetchForTrip_StraddlingHorizon(t *testing.T) {
	src := &fakeSource{}
	today := day(2026, 5, 10)

	got := newFetcher(src).FetchForTrip(context.Background(), 1, 2, today.AddDate(0, 0, 10), today.AddDate(0, 0, 20))

	require.True(t, got.DataAvailable)
	assert.True(t, got.HasHistoricalDays)
	require.Len(t, got.Days, 11)
	for i, d := range got.Days {
		assert.Equal(t, today.AddDate(0, 0, 10+i), d.Date, "day %d out of order", i)
		assert.Equal(t, i >= 5, d.IsHistorical, "day %d historical flag", i)
	}

	require.Len(t, src.calls, 2)
	assert.Equal(t, call{"forecast", today.AddDate(0, 0, 10), today.AddDate(0, 0, 14)}, src.calls[0])
	assert.Equal(t, call{"historical", today.AddDate(0, 0, 15), today.AddDate(0, 0, 20)}, src.calls[1])
}

func TestFetchForTrip_StraddlingWithHistoricalFailure(t *testing.T) {
	src := &fakeSource{failHistorical: true}
	today := day(2026, 5, 10)

	got := newFetcher(src).FetchForTrip(context.Background(), 1, 2, today.AddDate(0, 0, 12), today.AddDate(0, 0, 18))

	assert.True(t, got.DataAvailable)
	assert.False(t, got.HasHistoricalDays)
	assert.Len(t, got.Days, 3)
}

func TestFetchForTrip_ForecastOnly(t *testing.T) {
	src := &fakeSource{}
	today := day(2026, 5, 10)

	got := newFetcher(src).FetchForTrip(context.Background(), 1, 2, today.AddDate(0, 0, 1), today.AddDate(0, 0, 14))

	assert.False(t, got.HasHistoricalDays)
	assert.Len(t, got.Days, 14)
	require.Len(t, src.calls, 1)
	assert.Equal(t, "forecast", src.calls[0].kind)
}

func TestFetchForTrip_HistoricalOnly(t *testing.T) {
	src := &fakeSource{}
	today := day(2026, 5, 10)

	got := newFetcher(src).FetchForTrip(context.Background(), 1, 2, today.AddDate(0, 0, 15), today.AddDate(0, 0, 17))

	assert.True(t, got.HasHistoricalDays)
	assert.Len(t, got.Days, 3)
	require.Len(t, src.calls, 1)
	assert.Equal(t, "historical", src.calls[0].kind)
}

func TestFetchForTrip_HistoricalOnlyFailureStillFlagged(t *testing.T) {
	src := &fakeSource{failHistorical: true}
	today := day(2026, 5, 10)

	got := newFetcher(src).FetchForTrip(context.Background(), 1, 2, today.AddDate(0, 1, 0), today.AddDate(0, 1, 3))

	assert.False(t, got.DataAvailable)
	assert.True(t, got.HasHistoricalDays)
}

func TestFetcher_TodayUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	f := weather.NewFetcher(&fakeSource{},
		weather.WithClock(func() time.Time { return time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC) }),
		weather.WithLocation(tokyo),
	)
	assert.Equal(t, day(2026, 5, 11), f.Today())
}
