package suggest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/suggest"
)

func names(items []domain.SuggestedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestWeatherSuggestions(t *testing.T) {
	got := suggest.WeatherSuggestions(domain.Warm, false)
	assert.Equal(t, []string{"T-shirts", "Light pants", "Sunglasses", "Light jacket"}, names(got))

	got = suggest.WeatherSuggestions(domain.Warm, true)
	require.Len(t, got, 6)
	assert.Equal(t, "Umbrella", got[4].Name)
	assert.Equal(t, "Rain jacket", got[5].Name)
}

func TestWeatherSuggestions_NoCondition(t *testing.T) {
	assert.Empty(t, suggest.WeatherSuggestions("", false))
	assert.Equal(t, []string{"Umbrella", "Rain jacket"}, names(suggest.WeatherSuggestions("", true)))
}

func TestWeatherSuggestions_DoesNotAliasCatalog(t *testing.T) {
	got := suggest.WeatherSuggestions(domain.Cold, false)
	got[0].Name = "changed"
	assert.Equal(t, "Warm layers", suggest.WeatherSuggestions(domain.Cold, false)[0].Name)
}

func TestActivitySuggestions_RepeatedActivityIsIdempotent(t *testing.T) {
	once := suggest.ActivitySuggestions([]string{"Beach"})
	twice := suggest.ActivitySuggestions([]string{"Beach", "Beach"})
	assert.Equal(t, once, twice)
}

func TestActivitySuggestions_DedupKeepsFirstPosition(t *testing.T) {
	// Water bottle|Accessories appears in both Hiking and Sports.
	got := suggest.ActivitySuggestions([]string{"Hiking", "Sports"})
	assert.Equal(t, []string{
		"Hiking boots", "Backpack", "Water bottle",
		"Athletic shoes", "Workout clothes",
	}, names(got))
	assert.Equal(t, 2, got[4].Quantity)
}

func TestActivitySuggestions_UnknownActivityIgnored(t *testing.T) {
	assert.Empty(t, suggest.ActivitySuggestions([]string{"Knitting"}))
}

func TestMerge_OrderAndSource(t *testing.T) {
	weather := suggest.WeatherSuggestions(domain.Hot, false)
	activity := suggest.ActivitySuggestions([]string{"Beach"})
	custom := []domain.SuggestedItem{
		{Name: "Snorkel", Category: "Other", Quantity: 1},
		{Name: "Hat", Category: "Accessories", Quantity: 2},
	}

	got := suggest.Merge(weather, activity, custom)

	keys := map[string]suggest.Suggestion{}
	for _, s := range got {
		_, dup := keys[s.Key()]
		require.False(t, dup, "duplicate key %s", s.Key())
		keys[s.Key()] = s
	}

	// Sunscreen|Toiletries is in both Hot and Beach: weather wins.
	assert.Equal(t, suggest.SourceWeather, keys["Sunscreen|Toiletries"].Source)
	assert.Equal(t, suggest.SourceActivity, keys["Swimsuit|Clothing"].Source)
	assert.Equal(t, suggest.SourceActivity, keys["Snorkel|Other"].Source)
	// Hat from weather keeps quantity 1 over the custom duplicate.
	assert.Equal(t, 1, keys["Hat|Accessories"].Quantity)

	assert.Equal(t, "T-shirts", got[0].Name)
	assert.Equal(t, "Snorkel", got[len(got)-1].Name)
}

func TestMerge_SameNameDifferentCategoryKept(t *testing.T) {
	got := suggest.Merge(
		[]domain.SuggestedItem{{Name: "Towel", Category: "Accessories", Quantity: 1}},
		[]domain.SuggestedItem{{Name: "Towel", Category: "Toiletries", Quantity: 1}},
		nil,
	)
	assert.Len(t, got, 2)
}

func TestBuild(t *testing.T) {
	got := suggest.Build(suggest.Request{
		Condition:  domain.Cold,
		IsRainy:    true,
		Activities: []string{"Camping"},
		Custom: []domain.CustomActivity{
			{Name: "Skiing", SuggestedItems: []domain.SuggestedItem{{Name: "Goggles", Category: "Accessories", Quantity: 1}}},
		},
	})

	require.Len(t, got, 6+2+3+1)
	assert.Equal(t, "Goggles", got[len(got)-1].Name)
}

func TestGroupByCategory(t *testing.T) {
	groups := suggest.GroupByCategory([]suggest.Suggestion{
		{Name: "Tent", Category: "Other"},
		{Name: "Camera", Category: "Electronics"},
		{Name: "Mystery", Category: " "},
		{Name: "Flashlight", Category: "Electronics"},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "Electronics", groups[0].Category)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "Other", groups[1].Category)
	assert.Equal(t, "Tent", groups[1].Items[0].Name)
	assert.Equal(t, "Mystery", groups[1].Items[1].Name)
}
