package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/optional"
)

// Bag is a container on a trip's packing list. WeightLimit, when present,
// is a positive number of grams.
type Bag struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	Name        string
	WeightLimit optional.Value[int64]
	CreatedAt   time.Time
}

// Validate trims the name and checks the limit.
func (b *Bag) Validate() error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return fmt.Errorf("%w: bag name is required", ErrValidation)
	}
	if l, ok := b.WeightLimit.Get(); ok && l <= 0 {
		return fmt.Errorf("%w: weight limit must be positive", ErrValidation)
	}
	return nil
}
