package packing

import (
	"sort"
	"strings"

	"github.com/pkordes/packlist/backend/internal/domain"
)

// Progress is the packed/total tally of a list.
type Progress struct {
	Packed   int     `json:"packed"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
	Complete bool    `json:"complete"`
}

// PackingProgress tallies packed items. An empty list is 0% and not complete.
func PackingProgress(items []domain.PackingItem) Progress {
	p := Progress{Total: len(items)}
	for _, it := range items {
		if it.Packed {
			p.Packed++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.Packed) / float64(p.Total) * 100
		p.Complete = p.Packed == p.Total
	}
	return p
}

// CategoryGroup is one category bucket of items.
type CategoryGroup struct {
	Category string
	Items    []domain.PackingItem
}

// GroupByCategory buckets items by category, blank counting as Other, with
// category names sorted and items in input order.
func GroupByCategory(items []domain.PackingItem) []CategoryGroup {
	buckets := map[string][]domain.PackingItem{}
	for _, it := range items {
		cat := strings.TrimSpace(it.Category)
		if cat == "" {
			cat = domain.CategoryOther
		}
		buckets[cat] = append(buckets[cat], it)
	}

	names := make([]string, 0, len(buckets))
	for k := range buckets {
		names = append(names, k)
	}
	sort.Strings(names)

	groups := make([]CategoryGroup, len(names))
	for i, n := range names {
		groups[i] = CategoryGroup{Category: n, Items: buckets[n]}
	}
	return groups
}

// Filter returns the items matching f, never nil.
func Filter(items []domain.PackingItem, f domain.ItemFilter) []domain.PackingItem {
	out := []domain.PackingItem{}
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}
