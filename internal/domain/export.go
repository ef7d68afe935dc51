package domain

// ExportRow is one row of a trip's packing list export: a flat view with the
// bag name resolved and weights rendered as grams.
type ExportRow struct {
	Item     string
	Category string
	Quantity int
	// WeightGrams is the per-unit weight; 0 when unknown.
	WeightGrams int64
	// Bag is the assigned bag's name; empty when unassigned.
	Bag    string
	Packed bool
}
