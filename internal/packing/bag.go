// Package packing derives the read-side aggregates of a packing list: bag
// weight against its limit, per-item bag badges, overall progress and
// category grouping. Everything here is recomputed from the full item set
// on each call.
package packing

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/weight"
)

// Status is a bag's capacity state.
type Status string

const (
	StatusNone   Status = "none"
	StatusNormal Status = "normal"
	StatusNear   Status = "near"
	StatusOver   Status = "over"
)

// Color is the progress-bar color policy for a bag.
type Color string

const (
	ColorNeutral Color = "neutral"
	ColorDanger  Color = "danger"
	ColorWarning Color = "warning"
	ColorSuccess Color = "success"
)

// nearThresholdPct is where a bag starts warning.
const nearThresholdPct = 80.0

// BagSummary is a bag's aggregate over its assigned items.
type BagSummary struct {
	Bag         domain.Bag
	ItemCount   int
	TotalGrams  int64
	WeightLimit optional.Value[int64]
	// Percentage is capped at 100 and 0 without a limit.
	Percentage float64
	Status     Status
	Color      Color
}

// Label renders "x / y" with display weights, or just the total without a
// limit. An empty bag reads "0g".
func (s BagSummary) Label() string {
	total := weight.Format(s.TotalGrams)
	if total == "" {
		total = "0g"
	}
	limit, ok := s.WeightLimit.Get()
	if !ok {
		return total
	}
	return fmt.Sprintf("%s / %s", total, weight.Format(limit))
}

// BagTotals counts and weighs the items assigned to bagID.
func BagTotals(bagID uuid.UUID, items []domain.PackingItem) (count int, grams int64) {
	for _, it := range items {
		if it.InBag(bagID) {
			count++
			grams += it.TotalWeight()
		}
	}
	return count, grams
}

// Capacity classifies a total against an optional limit.
func Capacity(total int64, limit optional.Value[int64]) (pct float64, status Status, color Color) {
	l, ok := limit.Get()
	if !ok || l <= 0 {
		return 0, StatusNone, ColorNeutral
	}

	pct = math.Min(100, float64(total)/float64(l)*100)
	switch {
	case total > l:
		return pct, StatusOver, ColorDanger
	case pct >= nearThresholdPct:
		return pct, StatusNear, ColorWarning
	default:
		return pct, StatusNormal, ColorSuccess
	}
}

// SummarizeBag aggregates items into bag.
func SummarizeBag(bag domain.Bag, items []domain.PackingItem) BagSummary {
	count, total := BagTotals(bag.ID, items)
	pct, status, color := Capacity(total, bag.WeightLimit)
	return BagSummary{
		Bag:         bag,
		ItemCount:   count,
		TotalGrams:  total,
		WeightLimit: bag.WeightLimit,
		Percentage:  pct,
		Status:      status,
		Color:       color,
	}
}

// SummarizeBags summarizes every bag, in input order.
func SummarizeBags(bags []domain.Bag, items []domain.PackingItem) []BagSummary {
	out := make([]BagSummary, len(bags))
	for i, b := range bags {
		out[i] = SummarizeBag(b, items)
	}
	return out
}
