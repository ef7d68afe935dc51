package handler

import (
	"net/http"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/packlist/backend/internal/domain"
)

// TripRequest is the body of POST /trips and PUT /trips/{id}.
type TripRequest struct {
	Destination string             `json:"destination" validate:"notblank,max=200"`
	Latitude    float64            `json:"latitude" validate:"latitude"`
	Longitude   float64            `json:"longitude" validate:"longitude"`
	StartDate   openapi_types.Date `json:"start_date" validate:"required"`
	EndDate     openapi_types.Date `json:"end_date" validate:"required"`
	Activities  []string           `json:"activities" validate:"max=50,dive,max=100"`
}

// Trip is the wire form of a trip.
type Trip struct {
	ID          openapi_types.UUID `json:"id"`
	Destination string             `json:"destination"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Activities  []string           `json:"activities"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req TripRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "trip", err)
		return
	}

	created, err := s.svc.Trips.Create(r.Context(), requestToTrip(req))
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(intQuery(r, "page"), intQuery(r, "limit"))
	trips, total, err := s.svc.Trips.ListPaged(r.Context(), params)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, TripList{
		Data: data,
		Pagination: Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      int(total),
			TotalPages: params.TotalPages(total),
		},
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	trip, err := s.svc.Trips.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	var req TripRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, "trip", err)
		return
	}

	trip := requestToTrip(req)
	trip.ID = id
	updated, err := s.svc.Trips.Update(r.Context(), trip)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	if err := s.svc.Trips.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func requestToTrip(req TripRequest) domain.Trip {
	return domain.Trip{
		Destination: req.Destination,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		StartDate:   req.StartDate.Time,
		EndDate:     req.EndDate.Time,
		Activities:  req.Activities,
	}
}

func tripToResponse(t domain.Trip) Trip {
	activities := t.Activities
	if activities == nil {
		activities = []string{}
	}
	return Trip{
		ID:          t.ID,
		Destination: t.Destination,
		Latitude:    t.Latitude,
		Longitude:   t.Longitude,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		Activities:  activities,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// intQuery returns nil when the parameter is absent or not an integer.
func intQuery(r *http.Request, name string) *int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return nil
	}
	return &v
}
