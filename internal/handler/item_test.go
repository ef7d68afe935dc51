package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/handler"
	"github.com/pkordes/packlist/backend/internal/optional"
	"github.com/pkordes/packlist/backend/internal/packing"
	"github.com/pkordes/packlist/backend/internal/service"
)

func itemsPath(tripID uuid.UUID) string { return "/trips/" + tripID.String() + "/items" }

func TestCreateItem_201_KilogramsAndDefaultQuantity(t *testing.T) {
	tripID := uuid.New()
	var got domain.PackingItem
	svc := &mockItemServicer{
		add: func(_ context.Context, item domain.PackingItem) (domain.PackingItem, error) {
			got = item
			item.ID = uuid.New()
			return item, nil
		},
	}

	body := jsonBody(t, map[string]any{"name": "Sunscreen", "category": "Toiletries", "weight_kg": "0.25"})
	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, itemsPath(tripID), body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, tripID, got.TripID)
	assert.Equal(t, 1, got.Quantity)
	assert.Equal(t, optional.Some[int64](250), got.Weight)

	var resp handler.Item
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "🧴", resp.Icon)
	assert.Equal(t, "0.3kg", resp.WeightLabel)
	assert.False(t, resp.BagID.IsPresent())
}

func TestCreateItem_422_BadKilograms(t *testing.T) {
	body := jsonBody(t, map[string]any{"name": "Boots", "weight_kg": "heavy"})
	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: &mockItemServicer{}}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, itemsPath(uuid.New()), body))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec.Body).Error.Message, "weight_kg")
}

func TestCreateItem_422_ZeroQuantity(t *testing.T) {
	body := jsonBody(t, map[string]any{"name": "Socks", "quantity": 0})
	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: &mockItemServicer{}}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, itemsPath(uuid.New()), body))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec.Body).Error.Fields, "quantity")
}

func TestBulkCreateItems_201(t *testing.T) {
	tripID := uuid.New()
	var got []domain.PackingItem
	svc := &mockItemServicer{
		bulkAdd: func(_ context.Context, id uuid.UUID, items []domain.PackingItem) ([]domain.PackingItem, error) {
			assert.Equal(t, tripID, id)
			got = items
			return items, nil
		},
	}

	body := jsonBody(t, map[string]any{"items": []map[string]any{
		{"name": "T-shirt", "category": "Clothing", "quantity": 3},
		{"name": "Charger", "category": "Electronics"},
	}})
	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: svc}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, itemsPath(tripID)+"/bulk", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Quantity)
	assert.Equal(t, 1, got[1].Quantity)
}

func TestBulkCreateItems_422_Empty(t *testing.T) {
	body := jsonBody(t, map[string]any{"items": []map[string]any{}})
	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: &mockItemServicer{}}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, itemsPath(uuid.New())+"/bulk", body))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListItems_200_WithBadges(t *testing.T) {
	tripID := uuid.New()
	bag := domain.Bag{ID: uuid.New(), TripID: tripID, Name: "Carry-on", WeightLimit: optional.Some[int64](7000)}
	inBag := domain.PackingItem{ID: uuid.New(), TripID: tripID, Name: "Laptop", Quantity: 1, Weight: optional.Some[int64](7500), BagID: optional.Some(bag.ID)}
	loose := domain.PackingItem{ID: uuid.New(), TripID: tripID, Name: "Hat", Quantity: 1}

	var filters []domain.ItemFilter
	items := &mockItemServicer{
		list: func(_ context.Context, _ uuid.UUID, f domain.ItemFilter) ([]domain.PackingItem, error) {
			filters = append(filters, f)
			return []domain.PackingItem{inBag, loose}, nil
		},
	}
	bags := &mockBagServicer{
		list: func(_ context.Context, _ uuid.UUID) ([]domain.Bag, error) { return []domain.Bag{bag}, nil },
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: items, Bags: bags}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, itemsPath(tripID), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, filters, 1, "unfiltered list is reused for badge totals")

	var resp []handler.Item
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	require.NotNil(t, resp[0].Badge)
	assert.Equal(t, packing.BadgeBag, resp[0].Badge.Kind)
	assert.Equal(t, packing.StatusOver, resp[0].Badge.Status)
	assert.Equal(t, "Carry-on (7.5kg/7.0kg!)", resp[0].Badge.Label)
	assert.Equal(t, packing.BadgeAssign, resp[1].Badge.Kind)
}

func TestListItems_Filters(t *testing.T) {
	tripID := uuid.New()
	var got domain.ItemFilter
	items := &mockItemServicer{
		list: func(_ context.Context, _ uuid.UUID, f domain.ItemFilter) ([]domain.PackingItem, error) {
			got = f
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: items}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, itemsPath(tripID)+"?packed=false&bag=unassigned", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, optional.Some(false), got.Packed)
	assert.Equal(t, domain.Unassigned(), got.Bag)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListItems_422_BadBagFilter(t *testing.T) {
	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: &mockItemServicer{}}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, itemsPath(uuid.New())+"?bag=nope", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestToggleItem_200(t *testing.T) {
	tripID, itemID := uuid.New(), uuid.New()
	svc := &mockItemServicer{
		togglePacked: func(_ context.Context, gotTrip, gotItem uuid.UUID) (bool, error) {
			assert.Equal(t, tripID, gotTrip)
			assert.Equal(t, itemID, gotItem)
			return true, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: svc}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, itemsPath(tripID)+"/"+itemID.String()+"/toggle", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"packed":true}`, rec.Body.String())
}

func TestAssignItemBag_NullUnassigns(t *testing.T) {
	tripID, itemID := uuid.New(), uuid.New()
	var got optional.Value[uuid.UUID]
	svc := &mockItemServicer{
		assignToBag: func(_ context.Context, _, _ uuid.UUID, bagID optional.Value[uuid.UUID]) (domain.PackingItem, error) {
			got = bagID
			return domain.PackingItem{ID: itemID, TripID: tripID, Name: "Hat", Quantity: 1}, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: svc}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPut, itemsPath(tripID)+"/"+itemID.String()+"/bag", jsonBody(t, map[string]any{"bag_id": nil})))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, got.IsPresent())
}

func TestAssignItemBag_422_ForeignBag(t *testing.T) {
	svc := &mockItemServicer{
		assignToBag: func(_ context.Context, _, _ uuid.UUID, _ optional.Value[uuid.UUID]) (domain.PackingItem, error) {
			return domain.PackingItem{}, fmt.Errorf("service.ItemService.AssignToBag: %w: bag does not belong to this trip", domain.ErrValidation)
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: svc}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPut, itemsPath(uuid.New())+"/"+uuid.NewString()+"/bag", jsonBody(t, map[string]any{"bag_id": uuid.NewString()})))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "bag does not belong to this trip", decodeError(t, rec.Body).Error.Message)
}

func TestDeleteItem_404(t *testing.T) {
	svc := &mockItemServicer{
		delete: func(_ context.Context, _, _ uuid.UUID) error { return domain.ErrNotFound },
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: svc}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodDelete, itemsPath(uuid.New())+"/"+uuid.NewString(), nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "item not found", decodeError(t, rec.Body).Error.Message)
}

func TestGetProgress_200(t *testing.T) {
	tripID := uuid.New()
	shirt := domain.PackingItem{ID: uuid.New(), Name: "Shirt", Category: "Clothing", Quantity: 2, Packed: true}
	cable := domain.PackingItem{ID: uuid.New(), Name: "Cable", Category: "Electronics", Quantity: 1}
	svc := &mockItemServicer{
		progress: func(_ context.Context, _ uuid.UUID) (service.Overview, error) {
			return service.Overview{
				Progress: packing.Progress{Packed: 1, Total: 2, Percent: 50},
				Categories: []packing.CategoryGroup{
					{Category: "Clothing", Items: []domain.PackingItem{shirt}},
					{Category: "Electronics", Items: []domain.PackingItem{cable}},
				},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Items: svc}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/trips/"+tripID.String()+"/progress", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ProgressResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 50.0, resp.Percent)
	assert.False(t, resp.Complete)
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "👕", resp.Categories[0].Icon)
	assert.Equal(t, "Shirt", resp.Categories[0].Items[0].Name)
}
