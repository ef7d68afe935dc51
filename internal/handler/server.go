// Package handler implements the HTTP handlers for the packing list API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, item.go, etc.) but share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/packing"
	"github.com/pkordes/packlist/backend/internal/querycache"
	"github.com/pkordes/packlist/backend/internal/service"
	"github.com/pkordes/packlist/backend/internal/suggest"
	"github.com/pkordes/packlist/backend/internal/validation"
	"github.com/pkordes/packlist/backend/internal/weather"
)

// The servicer interfaces below are defined here, in the consumer package,
// so handler tests can inject function-field mocks without a database.

// TripServicer is the trip business logic the handlers need. *service.TripService satisfies it.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemServicer manages a trip's packing items. *service.ItemService satisfies it.
type ItemServicer interface {
	Add(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error)
	BulkAdd(ctx context.Context, tripID uuid.UUID, items []domain.PackingItem) ([]domain.PackingItem, error)
	List(ctx context.Context, tripID uuid.UUID, f domain.ItemFilter) ([]domain.PackingItem, error)
	Update(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error)
	TogglePacked(ctx context.Context, tripID, itemID uuid.UUID) (bool, error)
	AssignToBag(ctx context.Context, tripID, itemID uuid.UUID, bagID optional.Value[uuid.UUID]) (domain.PackingItem, error)
	Delete(ctx context.Context, tripID, itemID uuid.UUID) error
	Progress(ctx context.Context, tripID uuid.UUID) (service.Overview, error)
}

// BagServicer manages a trip's bags. *service.BagService satisfies it.
type BagServicer interface {
	Create(ctx context.Context, bag domain.Bag) (domain.Bag, error)
	List(ctx context.Context, tripID uuid.UUID) ([]domain.Bag, error)
	Update(ctx context.Context, bag domain.Bag) (domain.Bag, error)
	Delete(ctx context.Context, tripID, bagID uuid.UUID) error
	Summaries(ctx context.Context, tripID uuid.UUID) ([]packing.BagSummary, error)
}

// TemplateServicer manages reusable packing templates. *service.TemplateService satisfies it.
type TemplateServicer interface {
	Create(ctx context.Context, t domain.Template) (domain.Template, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Template, error)
	List(ctx context.Context) ([]domain.Template, error)
	Update(ctx context.Context, t domain.Template) (domain.Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddBag(ctx context.Context, templateID uuid.UUID, bag domain.TemplateBag) (domain.TemplateBag, error)
	DeleteBag(ctx context.Context, templateID, bagID uuid.UUID) error
	AddItem(ctx context.Context, templateID uuid.UUID, item domain.TemplateItem) (domain.TemplateItem, error)
	DeleteItem(ctx context.Context, templateID, itemID uuid.UUID) error
	SaveFromTrip(ctx context.Context, tripID uuid.UUID, name, description string) (domain.Template, error)
	Apply(ctx context.Context, tripID, templateID uuid.UUID) (service.ApplyResult, error)
}

// ActivityServicer manages the caller's custom activities. *service.ActivityService satisfies it.
type ActivityServicer interface {
	Create(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error)
	List(ctx context.Context) ([]domain.CustomActivity, error)
	Update(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Orphaned(ctx context.Context, names []string) ([]string, error)
}

// CategoryServicer manages the caller's custom categories. *service.CategoryService satisfies it.
type CategoryServicer interface {
	Create(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error)
	List(ctx context.Context) ([]domain.CustomCategory, error)
	All(ctx context.Context) ([]string, error)
	Update(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileServicer reads and sets the caller's profile. *service.ProfileService satisfies it.
type ProfileServicer interface {
	Get(ctx context.Context) (domain.Profile, error)
	Set(ctx context.Context, name string) (domain.Profile, error)
}

// WeatherServicer serves trip weather and previews. *service.WeatherService satisfies it.
type WeatherServicer interface {
	ForTrip(ctx context.Context, tripID uuid.UUID) (weather.TripWeather, error)
	Refresh(ctx context.Context, tripID uuid.UUID) (weather.TripWeather, error)
	Clear(ctx context.Context, tripID uuid.UUID) error
	Preview(ctx context.Context, lat, lon float64, start, end time.Time) (weather.TripWeather, error)
}

// SuggestionServicer builds packing suggestions. *service.SuggestionService satisfies it.
type SuggestionServicer interface {
	Suggest(ctx context.Context, req service.SuggestRequest) ([]suggest.Suggestion, error)
	ForTrip(ctx context.Context, tripID uuid.UUID) (service.TripSuggestions, error)
}

// ExportServicer flattens a trip's items for export. *service.ExportService satisfies it.
type ExportServicer interface {
	Export(ctx context.Context, tripID uuid.UUID) (domain.Trip, []domain.ExportRow, error)
}

// Geocoder looks up cities by name. *weather.Geocoder satisfies it.
type Geocoder interface {
	Search(ctx context.Context, query string) []weather.City
}

// EventSource publishes query cache invalidations. *querycache.Cache satisfies it.
type EventSource interface {
	Subscribe(filter func(querycache.Key) bool, buffer int) (<-chan querycache.Key, func())
}

// Services bundles every dependency of Server. Nil members disable their
// routes' behaviour; tests set only what they exercise.
type Services struct {
	Trips       TripServicer
	Items       ItemServicer
	Bags        BagServicer
	Templates   TemplateServicer
	Activities  ActivityServicer
	Categories  CategoryServicer
	Profile     ProfileServicer
	Weather     WeatherServicer
	Suggestions SuggestionServicer
	Export      ExportServicer
	Geocoder    Geocoder
	Events      EventSource
	// OpenAPI is served verbatim at /openapi.yaml.
	OpenAPI []byte
}

// Server holds the handler dependencies.
type Server struct {
	svc      Services
	validate *validation.Validator
	log      *slog.Logger

	// heartbeat is the idle interval between SSE keep-alive comments.
	heartbeat time.Duration

	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc:       svc,
		validate:  validation.New(),
		log:       log,
		heartbeat: 25 * time.Second,
		closing:   make(chan struct{}),
	}
}

// CloseStreams ends every open event stream. Register it with
// http.Server.RegisterOnShutdown so graceful shutdown can drain.
func (s *Server) CloseStreams() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// Routes builds the API router. requireAuth guards everything except the
// health check and the OpenAPI document.
func (s *Server) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/events", s.StreamEvents)

		r.Get("/profile", s.GetProfile)
		r.Put("/profile", s.PutProfile)

		r.Get("/trips", s.ListTrips)
		r.Post("/trips", s.CreateTrip)
		r.Route("/trips/{id}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)

			r.Get("/items", s.ListItems)
			r.Post("/items", s.CreateItem)
			r.Post("/items/bulk", s.BulkCreateItems)
			r.Put("/items/{itemId}", s.UpdateItem)
			r.Delete("/items/{itemId}", s.DeleteItem)
			r.Post("/items/{itemId}/toggle", s.ToggleItem)
			r.Put("/items/{itemId}/bag", s.AssignItemBag)

			r.Get("/bags", s.ListBags)
			r.Post("/bags", s.CreateBag)
			r.Get("/bags/summary", s.BagSummaries)
			r.Put("/bags/{bagId}", s.UpdateBag)
			r.Delete("/bags/{bagId}", s.DeleteBag)

			r.Get("/progress", s.GetProgress)

			r.Get("/weather", s.GetTripWeather)
			r.Post("/weather/refresh", s.RefreshTripWeather)
			r.Delete("/weather", s.ClearTripWeather)

			r.Get("/suggestions", s.TripSuggestions)
			r.Get("/export", s.ExportTrip)

			r.Post("/template", s.SaveTripAsTemplate)
			r.Post("/apply-template", s.ApplyTemplate)
		})

		r.Get("/templates", s.ListTemplates)
		r.Post("/templates", s.CreateTemplate)
		r.Route("/templates/{id}", func(r chi.Router) {
			r.Get("/", s.GetTemplate)
			r.Put("/", s.UpdateTemplate)
			r.Delete("/", s.DeleteTemplate)
			r.Post("/bags", s.AddTemplateBag)
			r.Delete("/bags/{bagId}", s.DeleteTemplateBag)
			r.Post("/items", s.AddTemplateItem)
			r.Delete("/items/{itemId}", s.DeleteTemplateItem)
		})

		r.Get("/activities", s.ListActivities)
		r.Post("/activities", s.CreateActivity)
		r.Get("/activities/orphaned", s.OrphanedActivities)
		r.Put("/activities/{id}", s.UpdateActivity)
		r.Delete("/activities/{id}", s.DeleteActivity)

		r.Get("/categories", s.ListCategories)
		r.Post("/categories", s.CreateCategory)
		r.Put("/categories/{id}", s.UpdateCategory)
		r.Delete("/categories/{id}", s.DeleteCategory)

		r.Get("/weather/preview", s.PreviewWeather)
		r.Get("/geocode", s.Geocode)
		r.Post("/suggestions", s.Suggest)
	})

	return r
}
