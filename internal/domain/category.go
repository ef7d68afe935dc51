package domain

import (
	"time"

	"github.com/google/uuid"
)

// CategoryOther is the fallback category for uncategorized items.
const CategoryOther = "Other"

// DefaultCategories is the fixed category set available to every user.
var DefaultCategories = []string{
	"Clothing",
	"Toiletries",
	"Electronics",
	"Documents",
	"Accessories",
	CategoryOther,
}

var categoryIcons = map[string]string{
	"Clothing":    "👕",
	"Toiletries":  "🧴",
	"Electronics": "📱",
	"Documents":   "📄",
	"Accessories": "👜",
	CategoryOther: "📦",
}

// CategoryIcon returns the display icon for a category; custom and unknown
// categories share the "Other" icon.
func CategoryIcon(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return categoryIcons[CategoryOther]
}

// CustomCategory supplements DefaultCategories for one user.
type CustomCategory struct {
	ID        uuid.UUID
	Owner     string
	Name      string
	CreatedAt time.Time
}

// AllCategories returns the default categories followed by custom names not
// already among the defaults.
func AllCategories(custom []CustomCategory) []string {
	out := make([]string, 0, len(DefaultCategories)+len(custom))
	seen := make(map[string]struct{}, cap(out))
	for _, c := range DefaultCategories {
		out = append(out, c)
		seen[c] = struct{}{}
	}
	for _, c := range custom {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c.Name)
	}
	return out
}
