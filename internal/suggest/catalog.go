// Package suggest holds the static packing suggestion catalog and the rules
// for combining weather, activity and custom-activity suggestions.
package suggest

import "github.com/pkordes/packlist/backend/internal/domain"

func item(name, category string, quantity int) domain.SuggestedItem {
	return domain.SuggestedItem{Name: name, Category: category, Quantity: quantity}
}

var weatherTable = map[domain.TemperatureCategory][]domain.SuggestedItem{
	domain.Hot: {
		item("T-shirts", "Clothing", 3),
		item("Shorts", "Clothing", 2),
		item("Sunglasses", "Accessories", 1),
		item("Sunscreen", "Toiletries", 1),
		item("Hat", "Accessories", 1),
		item("Sandals", "Clothing", 1),
	},
	domain.Warm: {
		item("T-shirts", "Clothing", 3),
		item("Light pants", "Clothing", 2),
		item("Sunglasses", "Accessories", 1),
		item("Light jacket", "Clothing", 1),
	},
	domain.Mild: {
		item("Long sleeve shirts", "Clothing", 3),
		item("Pants", "Clothing", 2),
		item("Light jacket", "Clothing", 1),
		item("Sweater", "Clothing", 1),
	},
	domain.Cold: {
		item("Warm layers", "Clothing", 3),
		item("Pants", "Clothing", 2),
		item("Winter jacket", "Clothing", 1),
		item("Sweater", "Clothing", 2),
		item("Scarf", "Accessories", 1),
		item("Gloves", "Accessories", 1),
	},
}

var rainItems = []domain.SuggestedItem{
	item("Umbrella", "Accessories", 1),
	item("Rain jacket", "Clothing", 1),
}

var activityTable = map[string][]domain.SuggestedItem{
	"Hiking": {
		item("Hiking boots", "Clothing", 1),
		item("Backpack", "Accessories", 1),
		item("Water bottle", "Accessories", 1),
	},
	"Beach": {
		item("Swimsuit", "Clothing", 1),
		item("Beach towel", "Accessories", 1),
		item("Sunscreen", "Toiletries", 1),
		item("Flip flops", "Clothing", 1),
	},
	"Business": {
		item("Business suit", "Clothing", 1),
		item("Dress shoes", "Clothing", 1),
		item("Laptop", "Electronics", 1),
	},
	"Sightseeing": {
		item("Comfortable walking shoes", "Clothing", 1),
		item("Camera", "Electronics", 1),
		item("Day bag", "Accessories", 1),
	},
	"Camping": {
		item("Tent", "Other", 1),
		item("Sleeping bag", "Other", 1),
		item("Flashlight", "Electronics", 1),
	},
	"Sports": {
		item("Athletic shoes", "Clothing", 1),
		item("Workout clothes", "Clothing", 2),
		item("Water bottle", "Accessories", 1),
	},
	"Shopping": {
		item("Comfortable shoes", "Clothing", 1),
		item("Crossbody bag", "Accessories", 1),
	},
	"Dining": {
		item("Nice outfit", "Clothing", 1),
		item("Dress shoes", "Clothing", 1),
	},
}
