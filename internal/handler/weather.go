package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/weather"
)

// WeatherDay is one day of a weather response, with display fields filled in.
type WeatherDay struct {
	Date                     string                  `json:"date"`
	TempMax                  float64                 `json:"temp_max"`
	TempMin                  float64                 `json:"temp_min"`
	PrecipitationProbability optional.Value[float64] `json:"precipitation_probability,omitzero"`
	PrecipitationSum         optional.Value[float64] `json:"precipitation_sum,omitzero"`
	WeatherCode              int                     `json:"weather_code"`
	Icon                     string                  `json:"icon"`
	Description              string                  `json:"description"`
	IsHistorical             bool                    `json:"is_historical"`
	IsRainy                  bool                    `json:"is_rainy"`
}

// WeatherResponse is the body of the trip weather and preview endpoints.
// Condition is omitted when no data is available.
type WeatherResponse struct {
	DataAvailable     bool               `json:"data_available"`
	HasHistoricalDays bool               `json:"has_historical_days"`
	Days              []WeatherDay       `json:"days"`
	Condition         *weather.Condition `json:"condition,omitempty"`
}

// PreviewQuery is the query string of GET /weather/preview.
type PreviewQuery struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lon" validate:"longitude"`
	Start     string  `json:"start" validate:"required,isodate"`
	End       string  `json:"end" validate:"required,isodate"`
}

// GetTripWeather handles GET /trips/{id}/weather. A trip without a location
// or dates answers 204.
func (s *Server) GetTripWeather(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	tw, err := s.svc.Weather.ForTrip(r.Context(), tripID)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusOK, weatherToResponse(tw))
}

// RefreshTripWeather handles POST /trips/{id}/weather/refresh.
func (s *Server) RefreshTripWeather(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	tw, err := s.svc.Weather.Refresh(r.Context(), tripID)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusOK, weatherToResponse(tw))
}

// ClearTripWeather handles DELETE /trips/{id}/weather.
func (s *Server) ClearTripWeather(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	if err := s.svc.Weather.Clear(r.Context(), tripID); err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PreviewWeather handles GET /weather/preview?lat=&lon=&start=&end=.
func (s *Server) PreviewWeather(w http.ResponseWriter, r *http.Request) {
	q, err := s.previewQuery(r)
	if err != nil {
		s.fail(w, r, "weather", err)
		return
	}
	// Both dates passed isodate validation.
	start, _ := domain.ParseDate(q.Start)
	end, _ := domain.ParseDate(q.End)

	tw, err := s.svc.Weather.Preview(r.Context(), q.Latitude, q.Longitude, start, end)
	if err != nil {
		s.fail(w, r, "weather", err)
		return
	}
	writeJSON(w, http.StatusOK, weatherToResponse(tw))
}

// Geocode handles GET /geocode?q=. Short queries and lookup failures both
// yield an empty list.
func (s *Server) Geocode(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(q)) < weather.MinQueryLength || s.svc.Geocoder == nil {
		writeJSON(w, http.StatusOK, []GeocodeResult{})
		return
	}
	cities := s.svc.Geocoder.Search(r.Context(), q)
	out := make([]GeocodeResult, len(cities))
	for i, c := range cities {
		out[i] = GeocodeResult{City: c, Label: c.Label()}
	}
	writeJSON(w, http.StatusOK, out)
}

// GeocodeResult is a city candidate with its display label.
type GeocodeResult struct {
	weather.City
	Label string `json:"label"`
}

func (s *Server) previewQuery(r *http.Request) (PreviewQuery, error) {
	v := r.URL.Query()
	q := PreviewQuery{Start: v.Get("start"), End: v.Get("end")}
	var err error
	if q.Latitude, err = floatQuery(v.Get("lat"), "lat"); err != nil {
		return PreviewQuery{}, err
	}
	if q.Longitude, err = floatQuery(v.Get("lon"), "lon"); err != nil {
		return PreviewQuery{}, err
	}
	if err := s.validate.Validate(q); err != nil {
		return PreviewQuery{}, err
	}
	return q, nil
}

func floatQuery(s, name string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrValidation, name)
	}
	return f, nil
}

func weatherToResponse(tw weather.TripWeather) WeatherResponse {
	out := WeatherResponse{
		DataAvailable:     tw.DataAvailable,
		HasHistoricalDays: tw.HasHistoricalDays,
		Days:              make([]WeatherDay, len(tw.Days)),
	}
	for i, d := range tw.Days {
		out.Days[i] = WeatherDay{
			Date:                     d.Date.Format(domain.DateLayout),
			TempMax:                  d.TempMax,
			TempMin:                  d.TempMin,
			PrecipitationProbability: d.PrecipitationProbability,
			PrecipitationSum:         d.PrecipitationSum,
			WeatherCode:              d.WeatherCode,
			Icon:                     weather.Icon(d.WeatherCode),
			Description:              weather.Description(d.WeatherCode),
			IsHistorical:             d.IsHistorical,
			IsRainy:                  weather.IsRainyDay(d),
		}
	}
	if c, ok := weather.DeriveCondition(tw); ok {
		out.Condition = &c
	}
	return out
}
