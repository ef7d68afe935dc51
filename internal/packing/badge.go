package packing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/weight"
)

// BadgeKind says what the item row shows next to an item.
type BadgeKind string

const (
	// BadgeNone: the trip has no bags.
	BadgeNone BadgeKind = "none"
	// BadgeAssign: the item is unassigned but bags exist.
	BadgeAssign BadgeKind = "assign"
	// BadgeBag: the item is in a bag.
	BadgeBag BadgeKind = "bag"
)

// Badge is the per-item bag badge.
type Badge struct {
	Kind    BadgeKind
	BagID   uuid.UUID
	BagName string
	Label   string
	Status  Status
}

// ItemBadge computes the badge for item against the live totals of its bag.
// Over-limit bags render "Name (x/y!)", near-limit "Name (x/y)", and
// anything else just the bag name. An assignment to a bag that is not in
// bags is treated like no assignment.
func ItemBadge(item domain.PackingItem, bags []domain.Bag, items []domain.PackingItem) Badge {
	if len(bags) == 0 {
		return Badge{Kind: BadgeNone}
	}

	bagID, ok := item.BagID.Get()
	if !ok {
		return Badge{Kind: BadgeAssign, Label: "Assign"}
	}

	var bag *domain.Bag
	for i := range bags {
		if bags[i].ID == bagID {
			bag = &bags[i]
			break
		}
	}
	if bag == nil {
		return Badge{Kind: BadgeAssign, Label: "Assign"}
	}

	s := SummarizeBag(*bag, items)
	b := Badge{Kind: BadgeBag, BagID: bag.ID, BagName: bag.Name, Label: bag.Name, Status: s.Status}

	limit, hasLimit := bag.WeightLimit.Get()
	if !hasLimit {
		return b
	}
	x, y := weight.Format(s.TotalGrams), weight.Format(limit)
	switch s.Status {
	case StatusOver:
		b.Label = fmt.Sprintf("%s (%s/%s!)", bag.Name, x, y)
	case StatusNear:
		b.Label = fmt.Sprintf("%s (%s/%s)", bag.Name, x, y)
	}
	return b
}
