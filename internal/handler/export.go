package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/weight"
)

// csvHeaders is the first row of every CSV export.
var csvHeaders = []string{"item", "category", "quantity", "weight_grams", "weight", "bag", "packed"}

// ExportRow is the JSON form of one exported item.
type ExportRow struct {
	Item        string `json:"item"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
	WeightGrams int64  `json:"weight_grams"`
	Bag         string `json:"bag"`
	Packed      bool   `json:"packed"`
}

// ExportResponse is the JSON body of GET /trips/{id}/export.
type ExportResponse struct {
	TripID      openapi_types.UUID `json:"trip_id"`
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Rows        []ExportRow        `json:"rows"`
}

// ExportTrip handles GET /trips/{id}/export.
// Use ?format=csv to receive CSV as an attachment; default is JSON.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "id")
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		s.fail(w, r, "trip", fmt.Errorf("%w: format must be csv or json", domain.ErrValidation))
		return
	}

	trip, rows, err := s.svc.Export.Export(r.Context(), tripID)
	if err != nil {
		s.fail(w, r, "trip", err)
		return
	}

	if format == "csv" {
		body := buildCSV(rows)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(trip)))
		w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = body.WriteTo(w)
		return
	}

	out := ExportResponse{
		TripID:      trip.ID,
		Destination: trip.Destination,
		StartDate:   openapi_types.Date{Time: trip.StartDate},
		EndDate:     openapi_types.Date{Time: trip.EndDate},
		Rows:        make([]ExportRow, len(rows)),
	}
	for i, row := range rows {
		out.Rows[i] = ExportRow(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// buildCSV encodes rows after the header line. Weights are written twice:
// raw grams for spreadsheets and the display label for people.
func buildCSV(rows []domain.ExportRow) *bytes.Buffer {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	// bytes.Buffer writes never fail.
	_ = cw.Write(csvHeaders)
	for _, r := range rows {
		label := ""
		if r.WeightGrams > 0 {
			label = weight.Format(r.WeightGrams)
		}
		_ = cw.Write([]string{
			r.Item,
			r.Category,
			strconv.Itoa(r.Quantity),
			strconv.FormatInt(r.WeightGrams, 10),
			label,
			r.Bag,
			strconv.FormatBool(r.Packed),
		})
	}
	cw.Flush()
	return &buf
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

// exportFilename builds "packlist-<destination>-<start>.csv".
func exportFilename(t domain.Trip) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(t.Destination), "-"), "-")
	if slug == "" {
		slug = "trip"
	}
	return fmt.Sprintf("packlist-%s-%s.csv", slug, t.StartDate.Format(domain.DateLayout))
}
