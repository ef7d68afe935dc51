package handler

import (
	"net/http"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/packlist/backend/internal/domain"
)

// SuggestedItemRequest is one suggested item of a custom activity.
type SuggestedItemRequest struct {
	Name     string `json:"name" validate:"notblank,max=200"`
	Category string `json:"category" validate:"max=100"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=9999"`
}

// ActivityRequest is the body of POST /activities and PUT /activities/{id}.
type ActivityRequest struct {
	Name           string                 `json:"name" validate:"notblank,max=100"`
	SuggestedItems []SuggestedItemRequest `json:"suggested_items" validate:"max=100,dive"`
}

// Activity is the wire form of a custom activity.
type Activity struct {
	ID             openapi_types.UUID     `json:"id"`
	Name           string                 `json:"name"`
	SuggestedItems []domain.SuggestedItem `json:"suggested_items"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ActivityList is the body of GET /activities: the built-in names plus the
// caller's own activities.
type ActivityList struct {
	Predefined []string   `json:"predefined"`
	Custom     []Activity `json:"custom"`
}

// CategoryRequest is the body of POST /categories and PUT /categories/{id}.
type CategoryRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// Category is the wire form of a custom category.
type Category struct {
	ID        openapi_types.UUID `json:"id"`
	Name      string             `json:"name"`
	CreatedAt time.Time          `json:"created_at"`
}

// CategoryList is the body of GET /categories.
type CategoryList struct {
	// All is the default categories followed by custom names.
	All    []string   `json:"all"`
	Custom []Category `json:"custom"`
}

// ProfileRequest is the body of PUT /profile.
type ProfileRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// Profile is the wire form of the caller's profile.
type Profile struct {
	Name string `json:"name"`
}

// ListActivities handles GET /activities.
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Activities.List(r.Context())
	if err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	out := ActivityList{
		Predefined: domain.PredefinedActivities,
		Custom:     make([]Activity, len(list)),
	}
	for i, a := range list {
		out.Custom[i] = activityToResponse(a)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateActivity handles POST /activities.
func (s *Server) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req ActivityRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	created, err := s.svc.Activities.Create(r.Context(), requestToActivity(req))
	if err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	writeJSON(w, http.StatusCreated, activityToResponse(created))
}

// UpdateActivity handles PUT /activities/{id}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	var req ActivityRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	a := requestToActivity(req)
	a.ID = id
	updated, err := s.svc.Activities.Update(r.Context(), a)
	if err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(updated))
}

// DeleteActivity handles DELETE /activities/{id}. Trips keep the name as an
// orphaned label.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	if err := s.svc.Activities.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OrphanedActivities handles GET /activities/orphaned?name=a&name=b (or a
// comma separated ?names=a,b).
func (s *Server) OrphanedActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	names := append([]string{}, q["name"]...)
	if v := q.Get("names"); v != "" {
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	orphans, err := s.svc.Activities.Orphaned(r.Context(), names)
	if err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	writeJSON(w, http.StatusOK, orphans)
}

// ListCategories handles GET /categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	custom, err := s.svc.Categories.List(r.Context())
	if err != nil {
		s.fail(w, r, "category", err)
		return
	}
	out := CategoryList{
		All:    domain.AllCategories(custom),
		Custom: make([]Category, len(custom)),
	}
	for i, c := range custom {
		out.Custom[i] = categoryToResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateCategory handles POST /categories.
func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "category", err)
		return
	}
	created, err := s.svc.Categories.Create(r.Context(), domain.CustomCategory{Name: req.Name})
	if err != nil {
		s.fail(w, r, "category", err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryToResponse(created))
}

// UpdateCategory handles PUT /categories/{id}. Items keep their old
// category text.
func (s *Server) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "category", err)
		return
	}
	var req CategoryRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "category", err)
		return
	}
	updated, err := s.svc.Categories.Update(r.Context(), domain.CustomCategory{ID: id, Name: req.Name})
	if err != nil {
		s.fail(w, r, "category", err)
		return
	}
	writeJSON(w, http.StatusOK, categoryToResponse(updated))
}

// DeleteCategory handles DELETE /categories/{id}.
func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "category", err)
		return
	}
	if err := s.svc.Categories.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /profile.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile.Get(r.Context())
	if err != nil {
		s.fail(w, r, "profile", err)
		return
	}
	writeJSON(w, http.StatusOK, Profile{Name: p.Name})
}

// PutProfile handles PUT /profile.
func (s *Server) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "profile", err)
		return
	}
	p, err := s.svc.Profile.Set(r.Context(), req.Name)
	if err != nil {
		s.fail(w, r, "profile", err)
		return
	}
	writeJSON(w, http.StatusOK, Profile{Name: p.Name})
}

func requestToActivity(req ActivityRequest) domain.CustomActivity {
	items := make([]domain.SuggestedItem, len(req.SuggestedItems))
	for i, it := range req.SuggestedItems {
		items[i] = domain.SuggestedItem{Name: it.Name, Category: it.Category, Quantity: it.Quantity}
	}
	return domain.CustomActivity{Name: req.Name, SuggestedItems: items}
}

func activityToResponse(a domain.CustomActivity) Activity {
	items := a.SuggestedItems
	if items == nil {
		items = []domain.SuggestedItem{}
	}
	return Activity{ID: a.ID, Name: a.Name, SuggestedItems: items, CreatedAt: a.CreatedAt}
}

func categoryToResponse(c domain.CustomCategory) Category {
	return Category{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}
