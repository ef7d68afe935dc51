package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/optional"
)

const (
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	DefaultArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"
)

var (
	errUnexpectedStatus = errors.New("unexpected status code")
	errMissingDaily     = errors.New("response has no daily data")
	errShapeMismatch    = errors.New("daily arrays have mismatched lengths")
)

// OpenMeteo fetches daily forecast and archive data. It is safe for
// concurrent use. A circuit breaker trips after repeated failures so an
// outage degrades to immediate "no data" answers.
type OpenMeteo struct {
	forecastURL string
	archiveURL  string
	client      *http.Client
	circuit     *gobreaker.CircuitBreaker
	log         *slog.Logger
}

// NewOpenMeteo builds a client. Empty URLs fall back to the public endpoints.
func NewOpenMeteo(forecastURL, archiveURL string, client *http.Client, log *slog.Logger) *OpenMeteo {
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	if archiveURL == "" {
		archiveURL = DefaultArchiveURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &OpenMeteo{
		forecastURL: forecastURL,
		archiveURL:  archiveURL,
		client:      client,
		circuit:     cb,
		log:         log,
	}
}

// dailyResponse is the subset of the Open-Meteo payload we read. Missing
// temperatures decode as 0; precipitation stays optional per day.
type dailyResponse struct {
	Daily *struct {
		Time        []string   `json:"time"`
		TempMax     []float64  `json:"temperature_2m_max"`
		TempMin     []float64  `json:"temperature_2m_min"`
		PrecipProb  []*float64 `json:"precipitation_probability_max"`
		PrecipSum   []*float64 `json:"precipitation_sum"`
		WeatherCode []int      `json:"weather_code"`
	} `json:"daily"`
}

// Forecast returns daily forecast data for [start, end], labelled with the
// dates the API returns.
func (c *OpenMeteo) Forecast(ctx context.Context, lat, lon float64, start, end time.Time) TripWeather {
	q := c.baseQuery(lat, lon, start, end)
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max,weather_code")

	payload, err := c.get(ctx, c.forecastURL, q)
	if err != nil {
		c.log.WarnContext(ctx, "forecast fetch failed", "error", err)
		return Unavailable(false)
	}

	days, err := payload.days(nil, false)
	if err != nil {
		c.log.WarnContext(ctx, "forecast payload rejected", "error", err)
		return Unavailable(false)
	}
	return TripWeather{Days: days, DataAvailable: len(days) > 0}
}

// Historical returns last year's observations for [start, end] shifted back
// one calendar year, relabelled day by day onto the requested dates and
// flagged historical. HasHistoricalDays is set even when nothing came back.
func (c *OpenMeteo) Historical(ctx context.Context, lat, lon float64, start, end time.Time) TripWeather {
	start, end = DateOnly(start), DateOnly(end)
	q := c.baseQuery(lat, lon, start.AddDate(-1, 0, 0), end.AddDate(-1, 0, 0))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,weather_code")

	payload, err := c.get(ctx, c.archiveURL, q)
	if err != nil {
		c.log.WarnContext(ctx, "historical fetch failed", "error", err)
		return Unavailable(true)
	}

	days, err := payload.days(&start, true)
	if err != nil {
		c.log.WarnContext(ctx, "historical payload rejected", "error", err)
		return Unavailable(true)
	}
	return TripWeather{Days: days, HasHistoricalDays: true, DataAvailable: len(days) > 0}
}

func (c *OpenMeteo) baseQuery(lat, lon float64, start, end time.Time) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("timezone", "auto")
	q.Set("start_date", start.Format(domain.DateLayout))
	q.Set("end_date", end.Format(domain.DateLayout))
	return q
}

// get performs one request through the circuit breaker. No retries.
func (c *OpenMeteo) get(ctx context.Context, base string, q url.Values) (*dailyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	body, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}

	var payload dailyResponse
	if err := json.Unmarshal(body.([]byte), &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &payload, nil
}

// days maps the parallel daily arrays into Day records. When relabelFrom is
// set, day i is dated relabelFrom+i instead of the API's date.
func (p *dailyResponse) days(relabelFrom *time.Time, historical bool) ([]Day, error) {
	if p.Daily == nil || len(p.Daily.Time) == 0 {
		return nil, errMissingDaily
	}
	d := p.Daily
	n := len(d.Time)
	if len(d.TempMax) != n || len(d.TempMin) != n || len(d.WeatherCode) != n {
		return nil, errShapeMismatch
	}

	out := make([]Day, n)
	for i := range n {
		var date time.Time
		if relabelFrom != nil {
			date = relabelFrom.AddDate(0, 0, i)
		} else {
			parsed, err := time.Parse(domain.DateLayout, d.Time[i])
			if err != nil {
				return nil, fmt.Errorf("day %d: %w", i, err)
			}
			date = parsed
		}

		out[i] = Day{
			Date:                     date,
			TempMax:                  d.TempMax[i],
			TempMin:                  d.TempMin[i],
			PrecipitationProbability: at(d.PrecipProb, i),
			PrecipitationSum:         at(d.PrecipSum, i),
			WeatherCode:              d.WeatherCode[i],
			IsHistorical:             historical,
		}
	}
	return out, nil
}

// at reads an optional entry of a nullable array that may be shorter than
// the time axis or missing entirely.
func at(values []*float64, i int) optional.Value[float64] {
	if i >= len(values) {
		return optional.None[float64]()
	}
	return optional.FromPtr(values[i])
}
