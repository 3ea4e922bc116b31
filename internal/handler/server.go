// Package handler implements the HTTP handlers for the Tripboard API.
// All handlers are methods on Server. Methods are split into resource files
// (health.go, trip.go, overview.go, export.go) but share the same Server struct.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/overview"
	"github.com/pkordes/tripboard/spec"
)

// TripServicer defines the document operations the trip handlers depend on.
// Defined here, in the consumer package, so tests can inject a mock.
type TripServicer interface {
	Create(ctx context.Context, raw domain.RawTripRecord) (domain.TripDocument, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.TripDocument, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.TripDocument, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OverviewServicer defines the view-model operations the overview handlers use.
type OverviewServicer interface {
	Refresh(ctx context.Context) (domain.TripOverviewListVM, overview.Report)
	Current(ctx context.Context) domain.TripOverviewListVM
	LastReport() overview.Report
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips    TripServicer
	overview OverviewServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, ov OverviewServicer) *Server {
	return &Server{trips: trips, overview: ov}
}

// Routes returns a chi router with every endpoint mounted.
// Global middleware (request id, logging, CORS) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Get("/overview", s.GetOverview)
		r.Get("/overview/export", s.GetOverviewExport)
		r.Get("/{id}", s.GetTrip)
		r.Delete("/{id}", s.DeleteTrip)
	})

	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
