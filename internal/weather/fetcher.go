package weather

import (
	"context"
	"time"
)

// DefaultHorizonDays is how far ahead the forecast API is trusted.
const DefaultHorizonDays = 14

// Source is the pair of raw fetches a Fetcher stitches together.
// *OpenMeteo implements it.
type Source interface {
	Forecast(ctx context.Context, lat, lon float64, start, end time.Time) TripWeather
	Historical(ctx context.Context, lat, lon float64, start, end time.Time) TripWeather
}

// Fetcher decides, relative to today, which parts of a date range come from
// the forecast and which from last year's archive.
type Fetcher struct {
	src     Source
	now     func() time.Time
	loc     *time.Location
	horizon int
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) { f.now = now }
}

// WithLocation sets the zone in which "today" is computed. Defaults to time.Local.
func WithLocation(loc *time.Location) FetcherOption {
	return func(f *Fetcher) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// WithHorizonDays overrides DefaultHorizonDays.
func WithHorizonDays(days int) FetcherOption {
	return func(f *Fetcher) {
		if days > 0 {
			f.horizon = days
		}
	}
}

// NewFetcher wraps src.
func NewFetcher(src Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{src: src, now: time.Now, loc: time.Local, horizon: DefaultHorizonDays}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Today returns the current civil date in the fetcher's location.
func (f *Fetcher) Today() time.Time {
	return DateOnly(f.now().In(f.loc))
}

// FetchForTrip returns weather for [start, end]:
//   - entirely past the horizon: archive only, every day historical;
//   - ending within the horizon: forecast only;
//   - straddling: forecast up to the horizon, archive from the day after,
//     concatenated in date order.
func (f *Fetcher) FetchForTrip(ctx context.Context, lat, lon float64, start, end time.Time) TripWeather {
	start, end = DateOnly(start), DateOnly(end)
	horizon := f.Today().AddDate(0, 0, f.horizon)

	if start.After(horizon) {
		return f.src.Historical(ctx, lat, lon, start, end)
	}
	if !end.After(horizon) {
		return f.src.Forecast(ctx, lat, lon, start, end)
	}

	forecast := f.src.Forecast(ctx, lat, lon, start, horizon)
	historical := f.src.Historical(ctx, lat, lon, horizon.AddDate(0, 0, 1), end)

	days := make([]Day, 0, len(forecast.Days)+len(historical.Days))
	days = append(days, forecast.Days...)
	days = append(days, historical.Days...)

	return TripWeather{
		Days:              days,
		HasHistoricalDays: len(historical.Days) > 0,
		DataAvailable:     len(days) > 0,
	}
}
