package handler

// Export handler for GET /trips/overview/export.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/tripboard/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"title",
	"tenure_start",
	"tenure_end",
	"expense_amount",
	"expense_currency",
	"rating",
}

// GetOverviewExport handles GET /trips/overview/export.
// Only the trips of the view model are exported; flags are not.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetOverviewExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid format"))
		return
	}
	asCSV := format != nil && *format == "csv"
	if format != nil && *format != "json" && !asCSV {
		writeJSON(w, http.StatusBadRequest, requestBody("format must be json or csv"))
		return
	}
	refresh, ok := bindRefresh(w, r)
	if !ok {
		return
	}
	vm, _ := s.overviewVM(r, refresh)

	if !asCSV {
		writeJSON(w, http.StatusOK, vm.Trips)
		return
	}

	body, err := buildCSV(vm.Trips)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func buildCSV(trips []domain.TripOverview) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeaders); err != nil {
		return nil, err
	}
	for _, t := range trips {
		if err := w.Write(tripToCSVRecord(t)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func tripToCSVRecord(t domain.TripOverview) []string {
	return []string{
		t.Title,
		t.Tenure.Start.UTC().Format(time.RFC3339Nano),
		t.Tenure.End.UTC().Format(time.RFC3339Nano),
		strconv.FormatFloat(t.Expense.Amount, 'f', -1, 64),
		string(t.Expense.Currency),
		strconv.FormatFloat(t.Rating, 'f', -1, 64),
	}
}
