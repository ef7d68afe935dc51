package suggest

import (
	"sort"
	"strings"

	"github.com/pkordes/packlist/backend/internal/domain"
)

// Source attributes a suggestion to the rule that produced it.
type Source string

const (
	SourceWeather  Source = "weather"
	SourceActivity Source = "activity"
)

// Suggestion is a SuggestedItem tagged with its source.
type Suggestion struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Source   Source `json:"source"`
}

// Key is the dedup key shared by every suggestion list.
func (s Suggestion) Key() string {
	return Key(s.Name, s.Category)
}

// Key builds the name|category dedup key.
func Key(name, category string) string {
	return name + "|" + category
}

// Item strips the source tag.
func (s Suggestion) Item() domain.SuggestedItem {
	return domain.SuggestedItem{Name: s.Name, Category: s.Category, Quantity: s.Quantity}
}

// WeatherSuggestions returns the catalog entry for condition followed by the rain
// list when isRainy. An empty condition yields only the rain list (if any).
func WeatherSuggestions(condition domain.TemperatureCategory, isRainy bool) []domain.SuggestedItem {
	out := append([]domain.SuggestedItem{}, weatherTable[condition]...)
	if isRainy {
		out = append(out, rainItems...)
	}
	return out
}

// ActivitySuggestions looks up each activity in order and accumulates its items,
// keeping only the first occurrence of every name|category key. Unknown
// activity names contribute nothing.
func ActivitySuggestions(activities []string) []domain.SuggestedItem {
	var d deduper
	out := []domain.SuggestedItem{}
	for _, a := range activities {
		for _, it := range activityTable[a] {
			if d.add(Key(it.Name, it.Category)) {
				out = append(out, it)
			}
		}
	}
	return out
}

// Merge combines weather, built-in activity and custom-activity items in that
// order, first occurrence of a key winning. Custom-activity items are tagged
// as activity suggestions.
func Merge(weather, activity, custom []domain.SuggestedItem) []Suggestion {
	var d deduper
	out := make([]Suggestion, 0, len(weather)+len(activity)+len(custom))
	push := func(items []domain.SuggestedItem, src Source) {
		for _, it := range items {
			if !d.add(Key(it.Name, it.Category)) {
				continue
			}
			out = append(out, Suggestion{Name: it.Name, Category: it.Category, Quantity: it.Quantity, Source: src})
		}
	}
	push(weather, SourceWeather)
	push(activity, SourceActivity)
	push(custom, SourceActivity)
	return out
}

// Request is the input to Build.
type Request struct {
	// Condition is empty when no weather could be derived.
	Condition domain.TemperatureCategory
	IsRainy   bool
	// Activities are predefined activity names.
	Activities []string
	// Custom are the selected custom activities, in selection order.
	Custom []domain.CustomActivity
}

// Build derives the full merged suggestion list for a request.
func Build(req Request) []Suggestion {
	var custom []domain.SuggestedItem
	for _, c := range req.Custom {
		custom = append(custom, c.SuggestedItems...)
	}
	return Merge(
		WeatherSuggestions(req.Condition, req.IsRainy),
		ActivitySuggestions(req.Activities),
		custom,
	)
}

// Group is one category bucket of suggestions.
type Group struct {
	Category string       `json:"category"`
	Items    []Suggestion `json:"items"`
}

// GroupByCategory buckets suggestions by category (blank counts as Other),
// with categories sorted by name and items kept in input order.
func GroupByCategory(suggestions []Suggestion) []Group {
	buckets := map[string][]Suggestion{}
	for _, s := range suggestions {
		cat := strings.TrimSpace(s.Category)
		if cat == "" {
			cat = domain.CategoryOther
		}
		buckets[cat] = append(buckets[cat], s)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Group{Category: k, Items: buckets[k]})
	}
	return groups
}

type deduper struct {
	seen map[string]struct{}
}

// add records key and reports whether it was new.
func (d *deduper) add(key string) bool {
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}
