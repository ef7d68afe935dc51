package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/optional"
)

// Template is a named, reusable snapshot of a packing list.
// ItemCount and BagCount are aggregates computed by the store; Items and
// Bags are only populated when the full template is loaded.
type Template struct {
	ID          uuid.UUID
	Owner       string
	Name        string
	Description string
	Activities  []string
	ItemCount   int
	BagCount    int
	Items       []TemplateItem
	Bags        []TemplateBag
	CreatedAt   time.Time
}

// TemplateBag is a bag definition inside a template.
type TemplateBag struct {
	ID          uuid.UUID
	Name        string
	WeightLimit optional.Value[int64]
}

// TemplateItem is an item definition inside a template. BagID refers to a
// TemplateBag of the same template.
type TemplateItem struct {
	ID       uuid.UUID
	Name     string
	Category string
	Quantity int
	Weight   optional.Value[int64]
	BagID    optional.Value[uuid.UUID]
}
