package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PredefinedActivities is the built-in activity set, in display order.
var PredefinedActivities = []string{
	"Hiking",
	"Beach",
	"Business",
	"Sightseeing",
	"Camping",
	"Sports",
	"Shopping",
	"Dining",
}

// IsPredefinedActivity reports whether name is one of PredefinedActivities.
func IsPredefinedActivity(name string) bool {
	for _, a := range PredefinedActivities {
		if a == name {
			return true
		}
	}
	return false
}

// SuggestedItem is an item an activity proposes to pack.
type SuggestedItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

// CustomActivity is a user-defined activity with its own ordered suggestions.
type CustomActivity struct {
	ID             uuid.UUID
	Owner          string
	Name           string
	SuggestedItems []SuggestedItem
	CreatedAt      time.Time
}

// OrphanedActivities returns the names in activities that are neither
// predefined nor the name of a current custom activity, in input order and
// without duplicates. These are labels left behind by deleted custom
// activities; they are shown as removable and never resolved automatically.
func OrphanedActivities(activities []string, custom []CustomActivity) []string {
	known := make(map[string]struct{}, len(custom))
	for _, c := range custom {
		known[c.Name] = struct{}{}
	}

	seen := make(map[string]struct{})
	orphans := []string{}
	for _, name := range activities {
		if IsPredefinedActivity(name) {
			continue
		}
		if _, ok := known[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		orphans = append(orphans, name)
	}
	return orphans
}

// SplitActivities partitions a trip's activity names into predefined names
// and the custom activities they refer to. Orphans are dropped.
func SplitActivities(activities []string, custom []CustomActivity) ([]string, []CustomActivity) {
	byName := make(map[string]CustomActivity, len(custom))
	for _, c := range custom {
		byName[c.Name] = c
	}

	predefined := []string{}
	matched := []CustomActivity{}
	for _, name := range activities {
		if IsPredefinedActivity(name) {
			predefined = append(predefined, name)
			continue
		}
		if c, ok := byName[name]; ok {
			matched = append(matched, c)
		}
	}
	return predefined, matched
}

// NormalizeName trims surrounding whitespace from a user-supplied name.
func NormalizeName(s string) string {
	return strings.TrimSpace(s)
}
