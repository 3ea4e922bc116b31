package handler

import (
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/overview"
)

// DroppedHeader carries the number of records skipped by the fetch that
// produced the response body. The count is not part of the view model itself.
const DroppedHeader = "X-Trips-Dropped"

// GetOverview handles GET /trips/overview.
// With ?refresh=true a new fetch session runs before the response is built;
// otherwise the most recent view model is returned as is.
func (s *Server) GetOverview(w http.ResponseWriter, r *http.Request) {
	refresh, ok := bindRefresh(w, r)
	if !ok {
		return
	}
	vm, rep := s.overviewVM(r, refresh)
	w.Header().Set(DroppedHeader, strconv.Itoa(rep.Dropped))
	writeJSON(w, http.StatusOK, vm)
}

// bindRefresh parses ?refresh. It writes a 400 and returns false when the
// parameter is not a boolean.
func bindRefresh(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var refresh *bool
	if err := runtime.BindQueryParameter("form", true, false, "refresh", r.URL.Query(), &refresh); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("refresh must be a boolean"))
		return false, false
	}
	return refresh != nil && *refresh, true
}

// overviewVM returns the view model together with the report that describes
// it. A fresh session reports on itself. A cached Loaded view model uses the
// last successful report; any other state dropped nothing.
func (s *Server) overviewVM(r *http.Request, refresh bool) (domain.TripOverviewListVM, overview.Report) {
	if refresh {
		return s.overview.Refresh(r.Context())
	}
	vm := s.overview.Current(r.Context())
	if !vm.Flags.Trips.Loaded() {
		return vm, overview.Report{}
	}
	return vm, s.overview.LastReport()
}
