package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

	// MinQueryLength is the shortest query worth sending.
	MinQueryLength = 2
	maxResults     = 5
)

// City is one geocoding candidate.
type City struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1,omitempty"`
}

// Label formats "name, admin1, country", leaving out an empty region.
func (c City) Label() string {
	parts := []string{c.Name}
	if c.Admin1 != "" {
		parts = append(parts, c.Admin1)
	}
	if c.Country != "" {
		parts = append(parts, c.Country)
	}
	return strings.Join(parts, ", ")
}

// Geocoder searches cities by free text. Outbound requests are paced by a
// token bucket so keystroke-driven callers cannot flood the API.
type Geocoder struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewGeocoder builds a Geocoder allowing rps requests per second with a small burst.
func NewGeocoder(baseURL string, client *http.Client, rps float64, log *slog.Logger) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if rps <= 0 {
		rps = 5
	}
	if log == nil {
		log = slog.Default()
	}
	return &Geocoder{
		baseURL: baseURL,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 3),
		log:     log,
	}
}

// Search returns up to five candidates. Queries shorter than MinQueryLength
// and any failure yield an empty list.
func (g *Geocoder) Search(ctx context.Context, query string) []City {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []City{}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		g.log.DebugContext(ctx, "geocode wait aborted", "error", err)
		return []City{}
	}

	cities, err := g.search(ctx, query)
	if err != nil {
		g.log.WarnContext(ctx, "geocode failed", "query", query, "error", err)
		return []City{}
	}
	return cities
}

func (g *Geocoder) search(ctx context.Context, query string) ([]City, error) {
	q := url.Values{}
	q.Set("name", query)
	q.Set("count", fmt.Sprint(maxResults))
	q.Set("language", "en")
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	var payload struct {
		Results []City `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if payload.Results == nil {
		return []City{}, nil
	}
	if len(payload.Results) > maxResults {
		payload.Results = payload.Results[:maxResults]
	}
	return payload.Results, nil
}
