package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/optional"
)

// PackingItem is one line on a trip's packing list.
// Weight is per unit, in grams. BagID is absent while the item is unassigned.
type PackingItem struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	Name      string
	Category  string
	Quantity  int
	Weight    optional.Value[int64]
	BagID     optional.Value[uuid.UUID]
	Packed    bool
	CreatedAt time.Time
}

// Validate checks quantity, weight and name. A blank category becomes
// CategoryOther rather than an error.
func (i *PackingItem) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	i.Category = strings.TrimSpace(i.Category)
	if i.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if i.Category == "" {
		i.Category = CategoryOther
	}
	if i.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if w, ok := i.Weight.Get(); ok && w <= 0 {
		return fmt.Errorf("%w: weight must be positive", ErrValidation)
	}
	return nil
}

// TotalWeight is the per-unit weight times quantity, 0 when weight is absent.
func (i PackingItem) TotalWeight() int64 {
	return i.Weight.OrElse(0) * int64(i.Quantity)
}

// InBag reports whether the item is assigned to bagID.
func (i PackingItem) InBag(bagID uuid.UUID) bool {
	id, ok := i.BagID.Get()
	return ok && id == bagID
}

// BagFilterKind selects which bag assignment an item listing returns.
type BagFilterKind int

const (
	// BagFilterAll matches every item.
	BagFilterAll BagFilterKind = iota
	// BagFilterUnassigned matches items without a bag.
	BagFilterUnassigned
	// BagFilterSpecific matches items in one bag.
	BagFilterSpecific
)

// BagFilter is the {all | unassigned | specific(bagId)} listing variant.
type BagFilter struct {
	Kind  BagFilterKind
	BagID uuid.UUID
}

// AllBags matches every item regardless of assignment.
func AllBags() BagFilter { return BagFilter{Kind: BagFilterAll} }

// Unassigned matches items with no bag.
func Unassigned() BagFilter { return BagFilter{Kind: BagFilterUnassigned} }

// InBag matches items assigned to id.
func InBag(id uuid.UUID) BagFilter { return BagFilter{Kind: BagFilterSpecific, BagID: id} }

// ParseBagFilter reads the query-string form: "" or "all", "unassigned", or a bag UUID.
func ParseBagFilter(s string) (BagFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllBags(), nil
	case "unassigned":
		return Unassigned(), nil
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return BagFilter{}, fmt.Errorf("%w: bag filter must be all, unassigned or a bag id", ErrValidation)
	}
	return InBag(id), nil
}

// String returns the query-string form accepted by ParseBagFilter.
func (f BagFilter) String() string {
	switch f.Kind {
	case BagFilterUnassigned:
		return "unassigned"
	case BagFilterSpecific:
		return f.BagID.String()
	default:
		return "all"
	}
}

// Matches applies the filter to a single item.
func (f BagFilter) Matches(item PackingItem) bool {
	switch f.Kind {
	case BagFilterUnassigned:
		return !item.BagID.IsPresent()
	case BagFilterSpecific:
		return item.InBag(f.BagID)
	default:
		return true
	}
}

// ItemFilter narrows an item listing. An absent Packed means both states.
type ItemFilter struct {
	Packed optional.Value[bool]
	Bag    BagFilter
}

// Matches reports whether item passes both filters.
func (f ItemFilter) Matches(item PackingItem) bool {
	if packed, ok := f.Packed.Get(); ok && item.Packed != packed {
		return false
	}
	return f.Bag.Matches(item)
}
