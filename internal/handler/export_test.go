package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/handler"
)

func exportServicer(trip domain.Trip) *mockExportServicer {
	return &mockExportServicer{
		export: func(_ context.Context, _ uuid.UUID) (domain.Trip, []domain.ExportRow, error) {
			return trip, []domain.ExportRow{
				{Item: "Laptop", Category: "Electronics", Quantity: 1, WeightGrams: 1800, Bag: "Carry-on", Packed: true},
				{Item: "Socks", Category: "Clothing", Quantity: 4},
			}, nil
		},
	}
}

func TestExportTrip_JSON(t *testing.T) {
	trip := tripFixture()
	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Export: exportServicer(trip)}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/trips/"+trip.ID.String()+"/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ExportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, trip.ID, resp.TripID)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, handler.ExportRow{Item: "Socks", Category: "Clothing", Quantity: 4}, resp.Rows[1])
}

func TestExportTrip_CSV(t *testing.T) {
	trip := tripFixture()
	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Export: exportServicer(trip)}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/trips/"+trip.ID.String()+"/export?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="packlist-lisbon-portugal-2025-06-01.csv"`, rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"item", "category", "quantity", "weight_grams", "weight", "bag", "packed"}, records[0])
	assert.Equal(t, []string{"Laptop", "Electronics", "1", "1800", "1.8kg", "Carry-on", "true"}, records[1])
	assert.Equal(t, []string{"Socks", "Clothing", "4", "0", "", "", "false"}, records[2])
}

func TestExportTrip_422_UnknownFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Export: &mockExportServicer{}}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/trips/"+uuid.NewString()+"/export?format=xml", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExportTrip_404(t *testing.T) {
	svc := &mockExportServicer{
		export: func(_ context.Context, _ uuid.UUID) (domain.Trip, []domain.ExportRow, error) {
			return domain.Trip{}, nil, domain.ErrNotFound
		},
	}
	rec := httptest.NewRecorder()
	newHTTPHandler(handler.Services{Export: svc}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/trips/"+uuid.NewString()+"/export?format=csv", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
