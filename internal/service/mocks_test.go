package service_test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/packlist/backend/internal/auth"
	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/repo"
	"github.com/pkordes/packlist/backend/internal/weather"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. Calling an unset one panics, which flags an unexpected
// repo call.

const testUser = "user-1"

func userCtx() context.Context {
	return auth.WithUser(context.Background(), testUser)
}

type mockTripRepo struct {
	create    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID   func(ctx context.Context, owner string, id uuid.UUID) (domain.Trip, error)
	listPaged func(ctx context.Context, owner string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete    func(ctx context.Context, owner string, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, owner, id)
}
func (m *mockTripRepo) ListPaged(ctx context.Context, owner string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, owner, p)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	return m.delete(ctx, owner, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

// ownedTrips answers GetByID with trip for testUser and ErrNotFound otherwise.
func ownedTrips(trip domain.Trip) *mockTripRepo {
	return &mockTripRepo{
		getByID: func(_ context.Context, owner string, id uuid.UUID) (domain.Trip, error) {
			if owner != testUser || id != trip.ID {
				return domain.Trip{}, domain.ErrNotFound
			}
			return trip, nil
		},
	}
}

type mockItemRepo struct {
	create       func(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error)
	createMany   func(ctx context.Context, items []domain.PackingItem) ([]domain.PackingItem, error)
	getByID      func(ctx context.Context, tripID, itemID uuid.UUID) (domain.PackingItem, error)
	list         func(ctx context.Context, tripID uuid.UUID, f domain.ItemFilter) ([]domain.PackingItem, error)
	update       func(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error)
	togglePacked func(ctx context.Context, tripID, itemID uuid.UUID) (domain.PackingItem, error)
	assignBag    func(ctx context.Context, tripID, itemID uuid.UUID, bagID optional.Value[uuid.UUID]) (domain.PackingItem, error)
	delete       func(ctx context.Context, tripID, itemID uuid.UUID) error
}

func (m *mockItemRepo) Create(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error) {
	return m.create(ctx, item)
}
func (m *mockItemRepo) CreateMany(ctx context.Context, items []domain.PackingItem) ([]domain.PackingItem, error) {
	return m.createMany(ctx, items)
}
func (m *mockItemRepo) GetByID(ctx context.Context, tripID, itemID uuid.UUID) (domain.PackingItem, error) {
	return m.getByID(ctx, tripID, itemID)
}
func (m *mockItemRepo) List(ctx context.Context, tripID uuid.UUID, f domain.ItemFilter) ([]domain.PackingItem, error) {
	return m.list(ctx, tripID, f)
}
func (m *mockItemRepo) Update(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error) {
	return m.update(ctx, item)
}
func (m *mockItemRepo) TogglePacked(ctx context.Context, tripID, itemID uuid.UUID) (domain.PackingItem, error) {
	return m.togglePacked(ctx, tripID, itemID)
}
func (m *mockItemRepo) AssignBag(ctx context.Context, tripID, itemID uuid.UUID, bagID optional.Value[uuid.UUID]) (domain.PackingItem, error) {
	return m.assignBag(ctx, tripID, itemID, bagID)
}
func (m *mockItemRepo) Delete(ctx context.Context, tripID, itemID uuid.UUID) error {
	return m.delete(ctx, tripID, itemID)
}

var _ repo.ItemRepo = (*mockItemRepo)(nil)

type mockBagRepo struct {
	create  func(ctx context.Context, bag domain.Bag) (domain.Bag, error)
	getByID func(ctx context.Context, tripID, bagID uuid.UUID) (domain.Bag, error)
	list    func(ctx context.Context, tripID uuid.UUID) ([]domain.Bag, error)
	update  func(ctx context.Context, bag domain.Bag) (domain.Bag, error)
	delete  func(ctx context.Context, tripID, bagID uuid.UUID) error
}

func (m *mockBagRepo) Create(ctx context.Context, bag domain.Bag) (domain.Bag, error) {
	return m.create(ctx, bag)
}
func (m *mockBagRepo) GetByID(ctx context.Context, tripID, bagID uuid.UUID) (domain.Bag, error) {
	return m.getByID(ctx, tripID, bagID)
}
func (m *mockBagRepo) List(ctx context.Context, tripID uuid.UUID) ([]domain.Bag, error) {
	return m.list(ctx, tripID)
}
func (m *mockBagRepo) Update(ctx context.Context, bag domain.Bag) (domain.Bag, error) {
	return m.update(ctx, bag)
}
func (m *mockBagRepo) Delete(ctx context.Context, tripID, bagID uuid.UUID) error {
	return m.delete(ctx, tripID, bagID)
}

var _ repo.BagRepo = (*mockBagRepo)(nil)

type mockTemplateRepo struct {
	create     func(ctx context.Context, t domain.Template) (domain.Template, error)
	getByID    func(ctx context.Context, owner string, id uuid.UUID) (domain.Template, error)
	list       func(ctx context.Context, owner string) ([]domain.Template, error)
	update     func(ctx context.Context, t domain.Template) (domain.Template, error)
	delete     func(ctx context.Context, owner string, id uuid.UUID) error
	addBag     func(ctx context.Context, templateID uuid.UUID, bag domain.TemplateBag) (domain.TemplateBag, error)
	deleteBag  func(ctx context.Context, templateID, bagID uuid.UUID) error
	addItem    func(ctx context.Context, templateID uuid.UUID, item domain.TemplateItem) (domain.TemplateItem, error)
	deleteItem func(ctx context.Context, templateID, itemID uuid.UUID) error
}

func (m *mockTemplateRepo) Create(ctx context.Context, t domain.Template) (domain.Template, error) {
	return m.create(ctx, t)
}
func (m *mockTemplateRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (domain.Template, error) {
	return m.getByID(ctx, owner, id)
}
func (m *mockTemplateRepo) List(ctx context.Context, owner string) ([]domain.Template, error) {
	return m.list(ctx, owner)
}
func (m *mockTemplateRepo) Update(ctx context.Context, t domain.Template) (domain.Template, error) {
	return m.update(ctx, t)
}
func (m *mockTemplateRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	return m.delete(ctx, owner, id)
}
func (m *mockTemplateRepo) AddBag(ctx context.Context, templateID uuid.UUID, bag domain.TemplateBag) (domain.TemplateBag, error) {
	return m.addBag(ctx, templateID, bag)
}
func (m *mockTemplateRepo) DeleteBag(ctx context.Context, templateID, bagID uuid.UUID) error {
	return m.deleteBag(ctx, templateID, bagID)
}
func (m *mockTemplateRepo) AddItem(ctx context.Context, templateID uuid.UUID, item domain.TemplateItem) (domain.TemplateItem, error) {
	return m.addItem(ctx, templateID, item)
}
func (m *mockTemplateRepo) DeleteItem(ctx context.Context, templateID, itemID uuid.UUID) error {
	return m.deleteItem(ctx, templateID, itemID)
}

var _ repo.TemplateRepo = (*mockTemplateRepo)(nil)

type mockActivityRepo struct {
	create    func(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error)
	getByID   func(ctx context.Context, owner string, id uuid.UUID) (domain.CustomActivity, error)
	list      func(ctx context.Context, owner string) ([]domain.CustomActivity, error)
	listByIDs func(ctx context.Context, owner string, ids []uuid.UUID) ([]domain.CustomActivity, error)
	update    func(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error)
	delete    func(ctx context.Context, owner string, id uuid.UUID) error
}

func (m *mockActivityRepo) Create(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error) {
	return m.create(ctx, a)
}
func (m *mockActivityRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (domain.CustomActivity, error) {
	return m.getByID(ctx, owner, id)
}
func (m *mockActivityRepo) List(ctx context.Context, owner string) ([]domain.CustomActivity, error) {
	return m.list(ctx, owner)
}
func (m *mockActivityRepo) ListByIDs(ctx context.Context, owner string, ids []uuid.UUID) ([]domain.CustomActivity, error) {
	return m.listByIDs(ctx, owner, ids)
}
func (m *mockActivityRepo) Update(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error) {
	return m.update(ctx, a)
}
func (m *mockActivityRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	return m.delete(ctx, owner, id)
}

var _ repo.ActivityRepo = (*mockActivityRepo)(nil)

type mockCategoryRepo struct {
	create func(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error)
	list   func(ctx context.Context, owner string) ([]domain.CustomCategory, error)
	update func(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error)
	delete func(ctx context.Context, owner string, id uuid.UUID) error
}

func (m *mockCategoryRepo) Create(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error) {
	return m.create(ctx, c)
}
func (m *mockCategoryRepo) List(ctx context.Context, owner string) ([]domain.CustomCategory, error) {
	return m.list(ctx, owner)
}
func (m *mockCategoryRepo) Update(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error) {
	return m.update(ctx, c)
}
func (m *mockCategoryRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	return m.delete(ctx, owner, id)
}

var _ repo.CategoryRepo = (*mockCategoryRepo)(nil)

type mockProfileRepo struct {
	get    func(ctx context.Context, owner string) (domain.Profile, error)
	upsert func(ctx context.Context, p domain.Profile) (domain.Profile, error)
}

func (m *mockProfileRepo) Get(ctx context.Context, owner string) (domain.Profile, error) {
	return m.get(ctx, owner)
}
func (m *mockProfileRepo) Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	return m.upsert(ctx, p)
}

var _ repo.ProfileRepo = (*mockProfileRepo)(nil)

type mockWeatherCacheRepo struct {
	get   func(ctx context.Context, tripID uuid.UUID) (domain.CachedTripWeather, error)
	set   func(ctx context.Context, c domain.CachedTripWeather) (domain.CachedTripWeather, error)
	clear func(ctx context.Context, tripID uuid.UUID) error
}

func (m *mockWeatherCacheRepo) Get(ctx context.Context, tripID uuid.UUID) (domain.CachedTripWeather, error) {
	return m.get(ctx, tripID)
}
func (m *mockWeatherCacheRepo) Set(ctx context.Context, c domain.CachedTripWeather) (domain.CachedTripWeather, error) {
	return m.set(ctx, c)
}
func (m *mockWeatherCacheRepo) Clear(ctx context.Context, tripID uuid.UUID) error {
	return m.clear(ctx, tripID)
}

var _ repo.WeatherCacheRepo = (*mockWeatherCacheRepo)(nil)

// mockTransactor runs fn against fixed repos. When fn fails it reports the
// error like a rollback would; state kept by the mocks is the test's concern.
type mockTransactor struct {
	repos repo.Repos
	calls int
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(context.Context, repo.Repos) error) error {
	m.calls++
	return fn(ctx, m.repos)
}

var _ repo.Transactor = (*mockTransactor)(nil)

// txFunc adapts a function to repo.Transactor.
type txFunc func(ctx context.Context, fn func(context.Context, repo.Repos) error) error

func (f txFunc) WithinTx(ctx context.Context, fn func(context.Context, repo.Repos) error) error {
	return f(ctx, fn)
}

var _ repo.Transactor = txFunc(nil)

type guardRecorder struct {
	calls []uuid.UUID
}

func (g *guardRecorder) Exclusive(tripID uuid.UUID, fn func() error) error {
	g.calls = append(g.calls, tripID)
	return fn()
}

type mockFetcher struct {
	fetch func(ctx context.Context, lat, lon float64, start, end time.Time) weather.TripWeather
	calls atomic.Int32
}

func (m *mockFetcher) FetchForTrip(ctx context.Context, lat, lon float64, start, end time.Time) weather.TripWeather {
	m.calls.Add(1)
	return m.fetch(ctx, lat, lon, start, end)
}
