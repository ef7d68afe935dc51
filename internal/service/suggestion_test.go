package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/service"
	"github.com/pkordes/packlist/backend/internal/suggest"
	"github.com/pkordes/packlist/backend/internal/weather"
)

type stubTripWeather struct {
	w   weather.TripWeather
	err error
}

func (s stubTripWeather) ForTrip(context.Context, uuid.UUID) (weather.TripWeather, error) {
	return s.w, s.err
}

func keys(list []suggest.Suggestion) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Key()
	}
	return out
}

func TestSuggestionService_ForTrip_HotAndCustom(t *testing.T) {
	trip := validTrip()
	trip.Activities = []string{"Beach", "Skiing", "Deleted"}
	ski := domain.CustomActivity{ID: uuid.New(), Name: "Skiing", SuggestedItems: []domain.SuggestedItem{{Name: "Goggles", Category: "Accessories", Quantity: 1}}}
	activities := &mockActivityRepo{list: func(context.Context, string) ([]domain.CustomActivity, error) {
		return []domain.CustomActivity{ski}, nil
	}}
	hot := availableWeather(trip.StartDate, 2)
	for i := range hot.Days {
		hot.Days[i].TempMax, hot.Days[i].TempMin = 35, 27
	}
	svc := service.NewSuggestionService(ownedTrips(trip), activities, stubTripWeather{w: hot})

	got, err := svc.ForTrip(userCtx(), trip.ID)

	require.NoError(t, err)
	require.NotNil(t, got.Condition)
	assert.Equal(t, domain.Hot, got.Condition.Category)

	want := suggest.Build(suggest.Request{
		Condition:  domain.Hot,
		Activities: []string{"Beach"},
		Custom:     []domain.CustomActivity{ski},
	})
	assert.Equal(t, keys(want), keys(got.Suggestions))
	assert.Contains(t, keys(got.Suggestions), suggest.Key("Goggles", "Accessories"))
}

func TestSuggestionService_ForTrip_WithoutWeather(t *testing.T) {
	trip := validTrip()
	activities := &mockActivityRepo{list: func(context.Context, string) ([]domain.CustomActivity, error) { return nil, nil }}
	svc := service.NewSuggestionService(ownedTrips(trip), activities, stubTripWeather{err: domain.ErrNotEnabled})

	got, err := svc.ForTrip(userCtx(), trip.ID)

	require.NoError(t, err)
	assert.Nil(t, got.Condition)
	for _, s := range got.Suggestions {
		assert.Equal(t, suggest.SourceActivity, s.Source)
	}
}

func TestSuggestionService_Suggest_SkipsLookupWithoutCustomIDs(t *testing.T) {
	svc := service.NewSuggestionService(&mockTripRepo{}, &mockActivityRepo{}, stubTripWeather{})

	got, err := svc.Suggest(userCtx(), service.SuggestRequest{Activities: []string{"Beach", "Beach"}})

	require.NoError(t, err)
	assert.Equal(t, keys(suggest.Build(suggest.Request{Activities: []string{"Beach"}})), keys(got))
}
