package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/packing"
	"github.com/pkordes/packlist/backend/internal/weight"
)

// ItemRequest is the body of POST /trips/{id}/items and PUT .../items/{itemId}.
// Weight may be sent as whole grams or as kilogram text; kilograms win.
type ItemRequest struct {
	Name     string                    `json:"name" validate:"notblank,max=200"`
	Category string                    `json:"category" validate:"max=100"`
	Quantity *int                      `json:"quantity" validate:"omitempty,gte=1,lte=9999"`
	Weight   optional.Value[int64]     `json:"weight_grams"`
	WeightKg string                    `json:"weight_kg" validate:"max=20"`
	BagID    optional.Value[uuid.UUID] `json:"bag_id"`
}

// BulkItemsRequest is the body of POST /trips/{id}/items/bulk.
type BulkItemsRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

// AssignBagRequest is the body of PUT .../items/{itemId}/bag; a null or
// missing bag_id unassigns.
type AssignBagRequest struct {
	BagID optional.Value[uuid.UUID] `json:"bag_id"`
}

// ItemBadge is the bag badge shown next to an item.
type ItemBadge struct {
	Kind   packing.BadgeKind   `json:"kind"`
	BagID  *openapi_types.UUID `json:"bag_id,omitempty"`
	Label  string              `json:"label,omitempty"`
	Status packing.Status      `json:"status,omitempty"`
}

// Item is the wire form of a packing item.
type Item struct {
	ID          openapi_types.UUID        `json:"id"`
	TripID      openapi_types.UUID        `json:"trip_id"`
	Name        string                    `json:"name"`
	Category    string                    `json:"category"`
	Icon        string                    `json:"icon"`
	Quantity    int                       `json:"quantity"`
	Weight      optional.Value[int64]     `json:"weight_grams"`
	WeightLabel string                    `json:"weight_label,omitempty"`
	BagID       optional.Value[uuid.UUID] `json:"bag_id"`
	Packed      bool                      `json:"packed"`
	CreatedAt   time.Time                 `json:"created_at"`
	Badge       *ItemBadge                `json:"badge,omitempty"`
}

// CategoryItems is one category bucket of the progress view.
type CategoryItems struct {
	Category string `json:"category"`
	Icon     string `json:"icon"`
	Items    []Item `json:"items"`
}

// ProgressResponse is the body of GET /trips/{id}/progress.
type ProgressResponse struct {
	Packed     int             `json:"packed"`
	Total      int             `json:"total"`
	Percent    float64         `json:"percent"`
	Complete   bool            `json:"complete"`
	Categories []CategoryItems `json:"categories"`
}

// ListItems handles GET /trips/{id}/items.
// Supports ?packed=true|false and ?bag=all|unassigned|<bagId>. Each item
// carries its bag badge computed against the trip's current totals.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	filter, err := itemFilter(r)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}

	items, err := s.svc.Items.List(r.Context(), tripID, filter)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}

	var bags []domain.Bag
	all := items
	if s.svc.Bags != nil {
		if bags, err = s.svc.Bags.List(r.Context(), tripID); err != nil {
			s.fail(w, r, "trip", err)
			return
		}
		if filter != (domain.ItemFilter{}) {
			if all, err = s.svc.Items.List(r.Context(), tripID, domain.ItemFilter{}); err != nil {
				s.fail(w, r, "trip", err)
				return
			}
		}
	}

	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = itemToResponse(it)
		if s.svc.Bags != nil {
			out[i].Badge = badgeToResponse(packing.ItemBadge(it, bags, all))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateItem handles POST /trips/{id}/items.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	var req ItemRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	item, err := requestToItem(req)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	item.TripID = tripID

	created, err := s.svc.Items.Add(r.Context(), item)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusCreated, itemToResponse(created))
}

// BulkCreateItems handles POST /trips/{id}/items/bulk. Items are created
// unassigned; bag_id is ignored.
func (s *Server) BulkCreateItems(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	var req BulkItemsRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	items := make([]domain.PackingItem, len(req.Items))
	for i, ir := range req.Items {
		if items[i], err = requestToItem(ir); err != nil {
			s.fail(w, r, "trip", fmt.Errorf("items[%d]: %w", i, err))
			return
		}
	}

	created, err := s.svc.Items.BulkAdd(r.Context(), tripID, items)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	out := make([]Item, len(created))
	for i, it := range created {
		out[i] = itemToResponse(it)
	}
	writeJSON(w, http.StatusCreated, out)
}

// UpdateItem handles PUT /trips/{id}/items/{itemId}.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	tripID, itemID, ok := s.itemPath(w, r)
	if !ok {
		return
	}
	var req ItemRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "item", err)
		return
	}
	item, err := requestToItem(req)
	if err != nil {
		s.fail(w, r, "item", err)
		return
	}
	item.ID, item.TripID = itemID, tripID

	updated, err := s.svc.Items.Update(r.Context(), item)
	if err != nil {
		s.fail(w, r, "item", err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(updated))
}

// ToggleItem handles POST /trips/{id}/items/{itemId}/toggle.
func (s *Server) ToggleItem(w http.ResponseWriter, r *http.Request) {
	tripID, itemID, ok := s.itemPath(w, r)
	if !ok {
		return
	}
	packed, err := s.svc.Items.TogglePacked(r.Context(), tripID, itemID)
	if err != nil {
		s.fail(w, r, "item", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"packed": packed})
}

// AssignItemBag handles PUT /trips/{id}/items/{itemId}/bag.
func (s *Server) AssignItemBag(w http.ResponseWriter, r *http.Request) {
	tripID, itemID, ok := s.itemPath(w, r)
	if !ok {
		return
	}
	var req AssignBagRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "item", err)
		return
	}
	item, err := s.svc.Items.AssignToBag(r.Context(), tripID, itemID, req.BagID)
	if err != nil {
		s.fail(w, r, "item", err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(item))
}

// DeleteItem handles DELETE /trips/{id}/items/{itemId}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	tripID, itemID, ok := s.itemPath(w, r)
	if !ok {
		return
	}
	if err := s.svc.Items.Delete(r.Context(), tripID, itemID); err != nil {
		s.fail(w, r, "item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProgress handles GET /trips/{id}/progress.
func (s *Server) GetProgress(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	o, err := s.svc.Items.Progress(r.Context(), tripID)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}

	resp := ProgressResponse{
		Packed:     o.Progress.Packed,
		Total:      o.Progress.Total,
		Percent:    o.Progress.Percent,
		Complete:   o.Progress.Complete,
		Categories: make([]CategoryItems, len(o.Categories)),
	}
	for i, g := range o.Categories {
		items := make([]Item, len(g.Items))
		for j, it := range g.Items {
			items[j] = itemToResponse(it)
		}
		resp.Categories[i] = CategoryItems{Category: g.Category, Icon: domain.CategoryIcon(g.Category), Items: items}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) itemPath(w http.ResponseWriter, r *http.Request) (tripID, itemID uuid.UUID, ok bool) {
	tripID, err := uuidParam(r, "id")
	if err == nil {
		itemID, err = uuidParam(r, "itemId")
	}
	if err != nil {
		s.fail(w, r, "item", err)
		return uuid.Nil, uuid.Nil, false
	}
	return tripID, itemID, true
}

// --- mapping helpers --------------------------------------------------------

func requestToItem(req ItemRequest) (domain.PackingItem, error) {
	item := domain.PackingItem{
		Name:     req.Name,
		Category: req.Category,
		Quantity: 1,
		Weight:   req.Weight,
		BagID:    req.BagID,
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	w, err := weightField(req.Weight, req.WeightKg, "weight_kg")
	if err != nil {
		return domain.PackingItem{}, err
	}
	item.Weight = w
	return item, nil
}

func itemToResponse(it domain.PackingItem) Item {
	return Item{
		ID:          it.ID,
		TripID:      it.TripID,
		Name:        it.Name,
		Category:    it.Category,
		Icon:        domain.CategoryIcon(it.Category),
		Quantity:    it.Quantity,
		Weight:      it.Weight,
		WeightLabel: weight.FormatOptional(it.Weight),
		BagID:       it.BagID,
		Packed:      it.Packed,
		CreatedAt:   it.CreatedAt,
	}
}

func badgeToResponse(b packing.Badge) *ItemBadge {
	out := &ItemBadge{Kind: b.Kind, Label: b.Label, Status: b.Status}
	if b.Kind == packing.BadgeBag {
		id := b.BagID
		out.BagID = &id
	}
	return out
}

// itemFilter parses ?packed= and ?bag=.
func itemFilter(r *http.Request) (domain.ItemFilter, error) {
	q := r.URL.Query()
	var f domain.ItemFilter
	if v := q.Get("packed"); v != "" {
		packed, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("%w: packed must be true or false", domain.ErrValidation)
		}
		f.Packed = optional.Some(packed)
	}
	bag, err := domain.ParseBagFilter(q.Get("bag"))
	if err != nil {
		return f, err
	}
	f.Bag = bag
	return f, nil
}
