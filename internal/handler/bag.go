package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/packing"
	"github.com/pkordes/packlist/backend/internal/weight"
)

// BagRequest is the body of POST /trips/{id}/bags and PUT .../bags/{bagId}.
type BagRequest struct {
	Name          string                `json:"name" validate:"notblank,max=100"`
	WeightLimit   optional.Value[int64] `json:"weight_limit_grams"`
	WeightLimitKg string                `json:"weight_limit_kg" validate:"max=20"`
}

// Bag is the wire form of a bag.
type Bag struct {
	ID          openapi_types.UUID    `json:"id"`
	TripID      openapi_types.UUID    `json:"trip_id"`
	Name        string                `json:"name"`
	WeightLimit optional.Value[int64] `json:"weight_limit_grams"`
	CreatedAt   time.Time             `json:"created_at"`
}

// BagSummary is one entry of GET /trips/{id}/bags/summary.
type BagSummary struct {
	Bag         Bag                   `json:"bag"`
	ItemCount   int                   `json:"item_count"`
	TotalGrams  int64                 `json:"total_grams"`
	WeightLimit optional.Value[int64] `json:"weight_limit_grams"`
	Percentage  float64               `json:"percentage"`
	Status      packing.Status        `json:"status"`
	Color       packing.Color         `json:"color"`
	Label       string                `json:"label"`
}

// ListBags handles GET /trips/{id}/bags.
func (s *Server) ListBags(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	bags, err := s.svc.Bags.List(r.Context(), tripID)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	out := make([]Bag, len(bags))
	for i, b := range bags {
		out[i] = bagToResponse(b)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateBag handles POST /trips/{id}/bags.
func (s *Server) CreateBag(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	bag, err := s.decodeBag(r)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	bag.TripID = tripID

	created, err := s.svc.Bags.Create(r.Context(), bag)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusCreated, bagToResponse(created))
}

// BagSummaries handles GET /trips/{id}/bags/summary.
func (s *Server) BagSummaries(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	sums, err := s.svc.Bags.Summaries(r.Context(), tripID)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	out := make([]BagSummary, len(sums))
	for i, sum := range sums {
		out[i] = BagSummary{
			Bag:         bagToResponse(sum.Bag),
			ItemCount:   sum.ItemCount,
			TotalGrams:  sum.TotalGrams,
			WeightLimit: sum.WeightLimit,
			Percentage:  sum.Percentage,
			Status:      sum.Status,
			Color:       sum.Color,
			Label:       sum.Label(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateBag handles PUT /trips/{id}/bags/{bagId}.
func (s *Server) UpdateBag(w http.ResponseWriter, r *http.Request) {
	tripID, bagID, ok := s.bagPath(w, r)
	if !ok {
		return
	}
	bag, err := s.decodeBag(r)
	if err != nil {
		s.fail(w, r, "bag", err)
		return
	}
	bag.ID, bag.TripID = bagID, tripID

	updated, err := s.svc.Bags.Update(r.Context(), bag)
	if err != nil {
		s.fail(w, r, "bag", err)
		return
	}
	writeJSON(w, http.StatusOK, bagToResponse(updated))
}

// DeleteBag handles DELETE /trips/{id}/bags/{bagId}.
func (s *Server) DeleteBag(w http.ResponseWriter, r *http.Request) {
	tripID, bagID, ok := s.bagPath(w, r)
	if !ok {
		return
	}
	if err := s.svc.Bags.Delete(r.Context(), tripID, bagID); err != nil {
		s.fail(w, r, "bag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) bagPath(w http.ResponseWriter, r *http.Request) (tripID, bagID uuid.UUID, ok bool) {
	tripID, err := uuidParam(r, "id")
	if err == nil {
		bagID, err = uuidParam(r, "bagId")
	}
	if err != nil {
		s.fail(w, r, "bag", err)
		return uuid.Nil, uuid.Nil, false
	}
	return tripID, bagID, true
}

func (s *Server) decodeBag(r *http.Request) (domain.Bag, error) {
	var req BagRequest
	if err := s.decode(r, &req); err != nil {
		return domain.Bag{}, err
	}
	limit, err := weightField(req.WeightLimit, req.WeightLimitKg, "weight_limit_kg")
	if err != nil {
		return domain.Bag{}, err
	}
	return domain.Bag{Name: req.Name, WeightLimit: limit}, nil
}

// weightField prefers kilogram text over a gram count when both are sent.
func weightField(grams optional.Value[int64], kg, field string) (optional.Value[int64], error) {
	kg = strings.TrimSpace(kg)
	if kg == "" {
		return grams, nil
	}
	parsed := weight.ParseToGrams(kg)
	if !parsed.IsPresent() {
		return optional.None[int64](), fmt.Errorf("%w: %s must be a positive number", domain.ErrValidation, field)
	}
	return parsed, nil
}

func bagToResponse(b domain.Bag) Bag {
	return Bag{
		ID:          b.ID,
		TripID:      b.TripID,
		Name:        b.Name,
		WeightLimit: b.WeightLimit,
		CreatedAt:   b.CreatedAt,
	}
}
