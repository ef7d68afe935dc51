package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/weight"
)

// TemplateBagRequest is a bag inside a template body. ID is a client-chosen
// reference that template items may point at; it is not stored.
type TemplateBagRequest struct {
	ID            optional.Value[uuid.UUID] `json:"id"`
	Name          string                    `json:"name" validate:"notblank,max=100"`
	WeightLimit   optional.Value[int64]     `json:"weight_limit_grams"`
	WeightLimitKg string                    `json:"weight_limit_kg" validate:"max=20"`
}

// TemplateItemRequest is an item inside a template body.
type TemplateItemRequest struct {
	Name     string                    `json:"name" validate:"notblank,max=200"`
	Category string                    `json:"category" validate:"max=100"`
	Quantity *int                      `json:"quantity" validate:"omitempty,gte=1,lte=9999"`
	Weight   optional.Value[int64]     `json:"weight_grams"`
	WeightKg string                    `json:"weight_kg" validate:"max=20"`
	BagID    optional.Value[uuid.UUID] `json:"bag_id"`
}

// TemplateRequest is the body of POST /templates.
type TemplateRequest struct {
	Name        string                `json:"name" validate:"notblank,max=100"`
	Description string                `json:"description" validate:"max=1000"`
	Activities  []string              `json:"activities" validate:"max=50,dive,max=100"`
	Bags        []TemplateBagRequest  `json:"bags" validate:"max=50,dive"`
	Items       []TemplateItemRequest `json:"items" validate:"max=500,dive"`
}

// TemplateHeaderRequest is the body of PUT /templates/{id} and of
// POST /trips/{id}/template.
type TemplateHeaderRequest struct {
	Name        string   `json:"name" validate:"notblank,max=100"`
	Description string   `json:"description" validate:"max=1000"`
	Activities  []string `json:"activities" validate:"max=50,dive,max=100"`
}

// ApplyTemplateRequest is the body of POST /trips/{id}/apply-template.
type ApplyTemplateRequest struct {
	TemplateID openapi_types.UUID `json:"template_id" validate:"required"`
}

// ApplyTemplateResponse reports what was added to the trip.
type ApplyTemplateResponse struct {
	BagsCreated  int `json:"bags_created"`
	ItemsCreated int `json:"items_created"`
}

// TemplateBag is the wire form of a template bag.
type TemplateBag struct {
	ID          openapi_types.UUID    `json:"id"`
	Name        string                `json:"name"`
	WeightLimit optional.Value[int64] `json:"weight_limit_grams"`
}

// TemplateItem is the wire form of a template item.
type TemplateItem struct {
	ID          openapi_types.UUID        `json:"id"`
	Name        string                    `json:"name"`
	Category    string                    `json:"category"`
	Quantity    int                       `json:"quantity"`
	Weight      optional.Value[int64]     `json:"weight_grams"`
	WeightLabel string                    `json:"weight_label,omitempty"`
	BagID       optional.Value[uuid.UUID] `json:"bag_id"`
}

// Template is the wire form of a template. Bags and Items are only sent by
// the single-template endpoints.
type Template struct {
	ID          openapi_types.UUID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Activities  []string           `json:"activities"`
	ItemCount   int                `json:"item_count"`
	BagCount    int                `json:"bag_count"`
	CreatedAt   time.Time          `json:"created_at"`
	Bags        []TemplateBag      `json:"bags,omitempty"`
	Items       []TemplateItem     `json:"items,omitempty"`
}

// ListTemplates handles GET /templates.
func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Templates.List(r.Context())
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	out := make([]Template, len(list))
	for i, t := range list {
		out[i] = templateToResponse(t, false)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateTemplate handles POST /templates.
func (s *Server) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "template", err)
		return
	}
	t, err := requestToTemplate(req)
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	created, err := s.svc.Templates.Create(r.Context(), t)
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	writeJSON(w, http.StatusCreated, templateToResponse(created, true))
}

// GetTemplate handles GET /templates/{id}.
func (s *Server) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	t, err := s.svc.Templates.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	writeJSON(w, http.StatusOK, templateToResponse(t, true))
}

// UpdateTemplate handles PUT /templates/{id}.
func (s *Server) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	var req TemplateHeaderRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "template", err)
		return
	}
	updated, err := s.svc.Templates.Update(r.Context(), domain.Template{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Activities:  req.Activities,
	})
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	writeJSON(w, http.StatusOK, templateToResponse(updated, true))
}

// DeleteTemplate handles DELETE /templates/{id}.
func (s *Server) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	if err := s.svc.Templates.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTemplateBag handles POST /templates/{id}/bags.
func (s *Server) AddTemplateBag(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	var req TemplateBagRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "template", err)
		return
	}
	bag, err := requestToTemplateBag(req)
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	stored, err := s.svc.Templates.AddBag(r.Context(), id, bag)
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	writeJSON(w, http.StatusCreated, templateBagToResponse(stored))
}

// DeleteTemplateBag handles DELETE /templates/{id}/bags/{bagId}.
func (s *Server) DeleteTemplateBag(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	bagID, err := uuidParam(r, "bagId")
	if err != nil {
		s.fail(w, r, "bag", err)
		return
	}
	if err := s.svc.Templates.DeleteBag(r.Context(), id, bagID); err != nil {
		s.fail(w, r, "template bag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTemplateItem handles POST /templates/{id}/items.
func (s *Server) AddTemplateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	var req TemplateItemRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "template", err)
		return
	}
	item, err := requestToTemplateItem(req)
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	stored, err := s.svc.Templates.AddItem(r.Context(), id, item)
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	writeJSON(w, http.StatusCreated, templateItemToResponse(stored))
}

// DeleteTemplateItem handles DELETE /templates/{id}/items/{itemId}.
func (s *Server) DeleteTemplateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "template", err)
		return
	}
	itemID, err := uuidParam(r, "itemId")
	if err != nil {
		s.fail(w, r, "item", err)
		return
	}
	if err := s.svc.Templates.DeleteItem(r.Context(), id, itemID); err != nil {
		s.fail(w, r, "template item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveTripAsTemplate handles POST /trips/{id}/template.
func (s *Server) SaveTripAsTemplate(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	var req TemplateHeaderRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	t, err := s.svc.Templates.SaveFromTrip(r.Context(), tripID, req.Name, req.Description)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusCreated, templateToResponse(t, true))
}

// ApplyTemplate handles POST /trips/{id}/apply-template.
func (s *Server) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	var req ApplyTemplateRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	res, err := s.svc.Templates.Apply(r.Context(), tripID, req.TemplateID)
	if err != nil {
		s.fail(w, r, "trip or template", err)
		return
	}
	writeJSON(w, http.StatusOK, ApplyTemplateResponse{BagsCreated: res.BagsCreated, ItemsCreated: res.ItemsCreated})
}

// --- mapping helpers --------------------------------------------------------

func requestToTemplate(req TemplateRequest) (domain.Template, error) {
	t := domain.Template{
		Name:        req.Name,
		Description: req.Description,
		Activities:  req.Activities,
		Bags:        make([]domain.TemplateBag, len(req.Bags)),
		Items:       make([]domain.TemplateItem, len(req.Items)),
	}
	for i, br := range req.Bags {
		b, err := requestToTemplateBag(br)
		if err != nil {
			return domain.Template{}, err
		}
		t.Bags[i] = b
	}
	for i, ir := range req.Items {
		it, err := requestToTemplateItem(ir)
		if err != nil {
			return domain.Template{}, err
		}
		t.Items[i] = it
	}
	return t, nil
}

func requestToTemplateBag(req TemplateBagRequest) (domain.TemplateBag, error) {
	limit, err := weightField(req.WeightLimit, req.WeightLimitKg, "weight_limit_kg")
	if err != nil {
		return domain.TemplateBag{}, err
	}
	id, ok := req.ID.Get()
	if !ok {
		id = uuid.New()
	}
	return domain.TemplateBag{ID: id, Name: req.Name, WeightLimit: limit}, nil
}

func requestToTemplateItem(req TemplateItemRequest) (domain.TemplateItem, error) {
	w, err := weightField(req.Weight, req.WeightKg, "weight_kg")
	if err != nil {
		return domain.TemplateItem{}, err
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	return domain.TemplateItem{Name: req.Name, Category: req.Category, Quantity: qty, Weight: w, BagID: req.BagID}, nil
}

func templateToResponse(t domain.Template, full bool) Template {
	activities := t.Activities
	if activities == nil {
		activities = []string{}
	}
	out := Template{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Activities:  activities,
		ItemCount:   t.ItemCount,
		BagCount:    t.BagCount,
		CreatedAt:   t.CreatedAt,
	}
	if !full {
		return out
	}
	out.Bags = make([]TemplateBag, len(t.Bags))
	for i, b := range t.Bags {
		out.Bags[i] = templateBagToResponse(b)
	}
	out.Items = make([]TemplateItem, len(t.Items))
	for i, it := range t.Items {
		out.Items[i] = templateItemToResponse(it)
	}
	return out
}

func templateBagToResponse(b domain.TemplateBag) TemplateBag {
	return TemplateBag{ID: b.ID, Name: b.Name, WeightLimit: b.WeightLimit}
}

func templateItemToResponse(it domain.TemplateItem) TemplateItem {
	return TemplateItem{
		ID:          it.ID,
		Name:        it.Name,
		Category:    it.Category,
		Quantity:    it.Quantity,
		Weight:      it.Weight,
		WeightLabel: weight.FormatOptional(it.Weight),
		BagID:       it.BagID,
	}
}
