package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/service"
	"github.com/pkordes/packlist/backend/internal/suggest"
	"github.com/pkordes/packlist/backend/internal/weather"
)

// SuggestRequest is the body of POST /suggestions.
type SuggestRequest struct {
	Condition         string      `json:"condition" validate:"omitempty,oneof=Hot Warm Mild Cold"`
	IsRainy           bool        `json:"is_rainy"`
	Activities        []string    `json:"activities" validate:"max=50,dive,max=100"`
	CustomActivityIDs []uuid.UUID `json:"custom_activity_ids" validate:"max=50"`
}

// SuggestionsResponse carries the merged list and the same list grouped by
// category. Condition is set only for trip suggestions with weather data.
type SuggestionsResponse struct {
	Condition   *weather.Condition   `json:"condition,omitempty"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
	Groups      []suggest.Group      `json:"groups"`
}

// TripSuggestions handles GET /trips/{id}/suggestions.
func (s *Server) TripSuggestions(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	ts, err := s.svc.Suggestions.ForTrip(r.Context(), tripID)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionsToResponse(ts.Condition, ts.Suggestions))
}

// Suggest handles POST /suggestions, used while a trip is still being planned.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	list, err := s.svc.Suggestions.Suggest(r.Context(), service.SuggestRequest{
		Condition:         domain.TemperatureCategory(req.Condition),
		IsRainy:           req.IsRainy,
		Activities:        req.Activities,
		CustomActivityIDs: req.CustomActivityIDs,
	})
	if err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionsToResponse(nil, list))
}

func suggestionsToResponse(c *weather.Condition, list []suggest.Suggestion) SuggestionsResponse {
	if list == nil {
		list = []suggest.Suggestion{}
	}
	return SuggestionsResponse{Condition: c, Suggestions: list, Groups: suggest.GroupByCategory(list)}
}
