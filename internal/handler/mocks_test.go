package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/packlist/backend/internal/auth"
	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/handler"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/packing"
	"github.com/pkordes/packlist/backend/internal/querycache"
	"github.com/pkordes/packlist/backend/internal/service"
	"github.com/pkordes/packlist/backend/internal/suggest"
	"github.com/pkordes/packlist/backend/internal/weather"
)

// Test doubles for the servicer interfaces. Set only the method fields your
// test needs; calling an unset one panics, which fails the test loudly.

type mockTripServicer struct {
	create    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockTripServicer) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.update(ctx, t)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockItemServicer struct {
	add          func(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error)
	bulkAdd      func(ctx context.Context, tripID uuid.UUID, items []domain.PackingItem) ([]domain.PackingItem, error)
	list         func(ctx context.Context, tripID uuid.UUID, f domain.ItemFilter) ([]domain.PackingItem, error)
	update       func(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error)
	togglePacked func(ctx context.Context, tripID, itemID uuid.UUID) (bool, error)
	assignToBag  func(ctx context.Context, tripID, itemID uuid.UUID, bagID optional.Value[uuid.UUID]) (domain.PackingItem, error)
	delete       func(ctx context.Context, tripID, itemID uuid.UUID) error
	progress     func(ctx context.Context, tripID uuid.UUID) (service.Overview, error)
}

func (m *mockItemServicer) Add(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error) {
	return m.add(ctx, item)
}
func (m *mockItemServicer) BulkAdd(ctx context.Context, tripID uuid.UUID, items []domain.PackingItem) ([]domain.PackingItem, error) {
	return m.bulkAdd(ctx, tripID, items)
}
func (m *mockItemServicer) List(ctx context.Context, tripID uuid.UUID, f domain.ItemFilter) ([]domain.PackingItem, error) {
	return m.list(ctx, tripID, f)
}
func (m *mockItemServicer) Update(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error) {
	return m.update(ctx, item)
}
func (m *mockItemServicer) TogglePacked(ctx context.Context, tripID, itemID uuid.UUID) (bool, error) {
	return m.togglePacked(ctx, tripID, itemID)
}
func (m *mockItemServicer) AssignToBag(ctx context.Context, tripID, itemID uuid.UUID, bagID optional.Value[uuid.UUID]) (domain.PackingItem, error) {
	return m.assignToBag(ctx, tripID, itemID, bagID)
}
func (m *mockItemServicer) Delete(ctx context.Context, tripID, itemID uuid.UUID) error {
	return m.delete(ctx, tripID, itemID)
}
func (m *mockItemServicer) Progress(ctx context.Context, tripID uuid.UUID) (service.Overview, error) {
	return m.progress(ctx, tripID)
}

var _ handler.ItemServicer = (*mockItemServicer)(nil)

type mockBagServicer struct {
	create    func(ctx context.Context, bag domain.Bag) (domain.Bag, error)
	list      func(ctx context.Context, tripID uuid.UUID) ([]domain.Bag, error)
	update    func(ctx context.Context, bag domain.Bag) (domain.Bag, error)
	delete    func(ctx context.Context, tripID, bagID uuid.UUID) error
	summaries func(ctx context.Context, tripID uuid.UUID) ([]packing.BagSummary, error)
}

func (m *mockBagServicer) Create(ctx context.Context, bag domain.Bag) (domain.Bag, error) {
	return m.create(ctx, bag)
}
func (m *mockBagServicer) List(ctx context.Context, tripID uuid.UUID) ([]domain.Bag, error) {
	return m.list(ctx, tripID)
}
func (m *mockBagServicer) Update(ctx context.Context, bag domain.Bag) (domain.Bag, error) {
	return m.update(ctx, bag)
}
func (m *mockBagServicer) Delete(ctx context.Context, tripID, bagID uuid.UUID) error {
	return m.delete(ctx, tripID, bagID)
}
func (m *mockBagServicer) Summaries(ctx context.Context, tripID uuid.UUID) ([]packing.BagSummary, error) {
	return m.summaries(ctx, tripID)
}

var _ handler.BagServicer = (*mockBagServicer)(nil)

type mockTemplateServicer struct {
	create       func(ctx context.Context, t domain.Template) (domain.Template, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Template, error)
	list         func(ctx context.Context) ([]domain.Template, error)
	update       func(ctx context.Context, t domain.Template) (domain.Template, error)
	delete       func(ctx context.Context, id uuid.UUID) error
	addBag       func(ctx context.Context, templateID uuid.UUID, bag domain.TemplateBag) (domain.TemplateBag, error)
	deleteBag    func(ctx context.Context, templateID, bagID uuid.UUID) error
	addItem      func(ctx context.Context, templateID uuid.UUID, item domain.TemplateItem) (domain.TemplateItem, error)
	deleteItem   func(ctx context.Context, templateID, itemID uuid.UUID) error
	saveFromTrip func(ctx context.Context, tripID uuid.UUID, name, description string) (domain.Template, error)
	apply        func(ctx context.Context, tripID, templateID uuid.UUID) (service.ApplyResult, error)
}

func (m *mockTemplateServicer) Create(ctx context.Context, t domain.Template) (domain.Template, error) {
	return m.create(ctx, t)
}
func (m *mockTemplateServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Template, error) {
	return m.getByID(ctx, id)
}
func (m *mockTemplateServicer) List(ctx context.Context) ([]domain.Template, error) {
	return m.list(ctx)
}
func (m *mockTemplateServicer) Update(ctx context.Context, t domain.Template) (domain.Template, error) {
	return m.update(ctx, t)
}
func (m *mockTemplateServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTemplateServicer) AddBag(ctx context.Context, templateID uuid.UUID, bag domain.TemplateBag) (domain.TemplateBag, error) {
	return m.addBag(ctx, templateID, bag)
}
func (m *mockTemplateServicer) DeleteBag(ctx context.Context, templateID, bagID uuid.UUID) error {
	return m.deleteBag(ctx, templateID, bagID)
}
func (m *mockTemplateServicer) AddItem(ctx context.Context, templateID uuid.UUID, item domain.TemplateItem) (domain.TemplateItem, error) {
	return m.addItem(ctx, templateID, item)
}
func (m *mockTemplateServicer) DeleteItem(ctx context.Context, templateID, itemID uuid.UUID) error {
	return m.deleteItem(ctx, templateID, itemID)
}
func (m *mockTemplateServicer) SaveFromTrip(ctx context.Context, tripID uuid.UUID, name, description string) (domain.Template, error) {
	return m.saveFromTrip(ctx, tripID, name, description)
}
func (m *mockTemplateServicer) Apply(ctx context.Context, tripID, templateID uuid.UUID) (service.ApplyResult, error) {
	return m.apply(ctx, tripID, templateID)
}

var _ handler.TemplateServicer = (*mockTemplateServicer)(nil)

type mockActivityServicer struct {
	create   func(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error)
	list     func(ctx context.Context) ([]domain.CustomActivity, error)
	update   func(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error)
	delete   func(ctx context.Context, id uuid.UUID) error
	orphaned func(ctx context.Context, names []string) ([]string, error)
}

func (m *mockActivityServicer) Create(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error) {
	return m.create(ctx, a)
}
func (m *mockActivityServicer) List(ctx context.Context) ([]domain.CustomActivity, error) {
	return m.list(ctx)
}
func (m *mockActivityServicer) Update(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error) {
	return m.update(ctx, a)
}
func (m *mockActivityServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockActivityServicer) Orphaned(ctx context.Context, names []string) ([]string, error) {
	return m.orphaned(ctx, names)
}

var _ handler.ActivityServicer = (*mockActivityServicer)(nil)

type mockCategoryServicer struct {
	create func(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error)
	list   func(ctx context.Context) ([]domain.CustomCategory, error)
	all    func(ctx context.Context) ([]string, error)
	update func(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error)
	delete func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCategoryServicer) Create(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error) {
	return m.create(ctx, c)
}
func (m *mockCategoryServicer) List(ctx context.Context) ([]domain.CustomCategory, error) {
	return m.list(ctx)
}
func (m *mockCategoryServicer) All(ctx context.Context) ([]string, error) {
	return m.all(ctx)
}
func (m *mockCategoryServicer) Update(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error) {
	return m.update(ctx, c)
}
func (m *mockCategoryServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.CategoryServicer = (*mockCategoryServicer)(nil)

type mockProfileServicer struct {
	get func(ctx context.Context) (domain.Profile, error)
	set func(ctx context.Context, name string) (domain.Profile, error)
}

func (m *mockProfileServicer) Get(ctx context.Context) (domain.Profile, error) { return m.get(ctx) }
func (m *mockProfileServicer) Set(ctx context.Context, name string) (domain.Profile, error) {
	return m.set(ctx, name)
}

var _ handler.ProfileServicer = (*mockProfileServicer)(nil)

type mockWeatherServicer struct {
	forTrip func(ctx context.Context, tripID uuid.UUID) (weather.TripWeather, error)
	refresh func(ctx context.Context, tripID uuid.UUID) (weather.TripWeather, error)
	clear   func(ctx context.Context, tripID uuid.UUID) error
	preview func(ctx context.Context, lat, lon float64, start, end time.Time) (weather.TripWeather, error)
}

func (m *mockWeatherServicer) ForTrip(ctx context.Context, tripID uuid.UUID) (weather.TripWeather, error) {
	return m.forTrip(ctx, tripID)
}
func (m *mockWeatherServicer) Refresh(ctx context.Context, tripID uuid.UUID) (weather.TripWeather, error) {
	return m.refresh(ctx, tripID)
}
func (m *mockWeatherServicer) Clear(ctx context.Context, tripID uuid.UUID) error {
	return m.clear(ctx, tripID)
}
func (m *mockWeatherServicer) Preview(ctx context.Context, lat, lon float64, start, end time.Time) (weather.TripWeather, error) {
	return m.preview(ctx, lat, lon, start, end)
}

var _ handler.WeatherServicer = (*mockWeatherServicer)(nil)

type mockSuggestionServicer struct {
	suggest func(ctx context.Context, req service.SuggestRequest) ([]suggest.Suggestion, error)
	forTrip func(ctx context.Context, tripID uuid.UUID) (service.TripSuggestions, error)
}

func (m *mockSuggestionServicer) Suggest(ctx context.Context, req service.SuggestRequest) ([]suggest.Suggestion, error) {
	return m.suggest(ctx, req)
}
func (m *mockSuggestionServicer) ForTrip(ctx context.Context, tripID uuid.UUID) (service.TripSuggestions, error) {
	return m.forTrip(ctx, tripID)
}

var _ handler.SuggestionServicer = (*mockSuggestionServicer)(nil)

type mockExportServicer struct {
	export func(ctx context.Context, tripID uuid.UUID) (domain.Trip, []domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, tripID uuid.UUID) (domain.Trip, []domain.ExportRow, error) {
	return m.export(ctx, tripID)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

type mockGeocoder struct {
	search func(ctx context.Context, q string) []weather.City
}

func (m *mockGeocoder) Search(ctx context.Context, q string) []weather.City { return m.search(ctx, q) }

var (
	_ handler.Geocoder    = (*mockGeocoder)(nil)
	_ handler.EventSource = (*querycache.Cache)(nil)
)

// ---- helpers ---------------------------------------------------------------

const testUser = "user-1"

// asUser stands in for the bearer-token middleware.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), testUser)))
	})
}

// newHTTPHandler wires a Server the same way main.go does, minus real auth.
func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.NewServer(svc, nil).Routes(asUser)
}

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:          uuid.New(),
		Owner:       testUser,
		Destination: "Lisbon, Portugal",
		Latitude:    38.72,
		Longitude:   -9.14,
		StartDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
		Activities:  []string{"Beach"},
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
