package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripboard/internal/domain"
)

// TripDocumentResponse is the wire shape of a stored trip document.
// Data is returned exactly as it was submitted.
type TripDocumentResponse struct {
	ID        uuid.UUID            `json:"id"`
	Data      domain.RawTripRecord `json:"data"`
	CreatedAt time.Time            `json:"created_at"`
}

// Pagination describes the slice of the collection a list response covers.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TripListResponse is the body of GET /trips.
type TripListResponse struct {
	Data       []TripDocumentResponse `json:"data"`
	Pagination Pagination             `json:"pagination"`
}

// CreateTrip handles POST /trips.
// The body is a raw trip record; it is only stored if it normalizes cleanly.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw domain.RawTripRecord
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, tooLargeBody())
			return
		}
		writeJSON(w, http.StatusBadRequest, requestBody("request body must be a JSON object"))
		return
	}
	if raw == nil {
		writeJSON(w, http.StatusBadRequest, requestBody("request body is required"))
		return
	}

	doc, err := s.trips.Create(r.Context(), raw)
	if err != nil {
		writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, docToResponse(doc))
}

// ListTrips handles GET /trips?page=&limit=.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("page must be an integer"))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("limit must be an integer"))
		return
	}

	params := domain.NewPaginationParams(page, limit)
	docs, total, err := s.trips.ListPaged(r.Context(), params)
	if err != nil {
		writeError(w, r, err, "trips not found")
		return
	}

	resp := TripListResponse{
		Data:       make([]TripDocumentResponse, len(docs)),
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	}
	for i, d := range docs {
		resp.Data[i] = docToResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := bindTripID(w, r)
	if !ok {
		return
	}
	doc, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, docToResponse(doc))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := bindTripID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bindTripID parses the {id} path segment. On failure it writes a 400 and
// returns false.
func bindTripID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func docToResponse(d domain.TripDocument) TripDocumentResponse {
	return TripDocumentResponse{ID: d.ID, Data: d.Data, CreatedAt: d.CreatedAt}
}
