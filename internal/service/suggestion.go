package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/repo"
	"github.com/pkordes/packlist/backend/internal/suggest"
	"github.com/pkordes/packlist/backend/internal/weather"
)

// tripWeather is the slice of WeatherService suggestions need.
type tripWeather interface {
	ForTrip(ctx context.Context, tripID uuid.UUID) (weather.TripWeather, error)
}

// SuggestionService builds packing suggestions from weather and activities.
type SuggestionService struct {
	trips      repo.TripRepo
	activities repo.ActivityRepo
	weather    tripWeather
}

// NewSuggestionService constructs a SuggestionService.
func NewSuggestionService(trips repo.TripRepo, activities repo.ActivityRepo, w tripWeather) *SuggestionService {
	return &SuggestionService{trips: trips, activities: activities, weather: w}
}

// SuggestRequest selects the inputs of an ad-hoc suggestion list.
type SuggestRequest struct {
	Condition         domain.TemperatureCategory
	IsRainy           bool
	Activities        []string
	CustomActivityIDs []uuid.UUID
}

// TripSuggestions is the suggestion list for a trip plus the weather it was
// derived from. Condition is nil when no weather was available.
type TripSuggestions struct {
	Condition   *weather.Condition
	Suggestions []suggest.Suggestion
}

// Suggest merges weather, built-in activity and custom activity suggestions.
// Unknown predefined names and custom ids contribute nothing.
func (s *SuggestionService) Suggest(ctx context.Context, req SuggestRequest) ([]suggest.Suggestion, error) {
	user, err := owner(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.SuggestionService.Suggest: %w", err)
	}
	var custom []domain.CustomActivity
	if len(req.CustomActivityIDs) > 0 {
		custom, err = s.activities.ListByIDs(ctx, user, req.CustomActivityIDs)
		if err != nil {
			return nil, fmt.Errorf("service.SuggestionService.Suggest: %w", err)
		}
	}
	return suggest.Build(suggest.Request{
		Condition:  req.Condition,
		IsRainy:    req.IsRainy,
		Activities: req.Activities,
		Custom:     custom,
	}), nil
}

// ForTrip derives suggestions from a trip's weather and activities. Missing
// weather only drops the weather suggestions.
func (s *SuggestionService) ForTrip(ctx context.Context, tripID uuid.UUID) (TripSuggestions, error) {
	user, err := owner(ctx)
	if err != nil {
		return TripSuggestions{}, fmt.Errorf("service.SuggestionService.ForTrip: %w", err)
	}
	trip, err := s.trips.GetByID(ctx, user, tripID)
	if err != nil {
		return TripSuggestions{}, fmt.Errorf("service.SuggestionService.ForTrip: %w", err)
	}
	custom, err := s.activities.List(ctx, user)
	if err != nil {
		return TripSuggestions{}, fmt.Errorf("service.SuggestionService.ForTrip: %w", err)
	}
	predefined, matched := domain.SplitActivities(trip.Activities, custom)

	req := suggest.Request{Activities: predefined, Custom: matched}
	var out TripSuggestions

	w, err := s.weather.ForTrip(ctx, tripID)
	switch {
	case err == nil:
		if c, ok := weather.DeriveCondition(w); ok {
			req.Condition, req.IsRainy = c.Category, c.IsRainy
			out.Condition = &c
		}
	case isNotEnabled(err):
	default:
		return TripSuggestions{}, fmt.Errorf("service.SuggestionService.ForTrip: %w", err)
	}

	out.Suggestions = suggest.Build(req)
	return out, nil
}
