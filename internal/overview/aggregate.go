package overview

import (
	"errors"

	"github.com/pkordes/tripboard/internal/domain"
)

// FetchState is the outcome of a fetch as reported by the data source.
type FetchState int

const (
	FetchPending FetchState = iota
	FetchSuccess
	FetchFailure
)

func (s FetchState) String() string {
	switch s {
	case FetchPending:
		return "pending"
	case FetchSuccess:
		return "success"
	case FetchFailure:
		return "failure"
	}
	return "unknown"
}

// Report describes what Aggregate did with its input. It travels beside the
// view-model, never inside it, so equal inputs still give equal view-models.
type Report struct {
	Total   int
	Kept    int
	Dropped int
	Errors  []domain.NormalizationError
}

// Stub returns the "not yet requested" view-model: no trips, idle flags.
func Stub() domain.TripOverviewListVM {
	return domain.TripOverviewListVM{
		Trips: []domain.TripOverview{},
		Flags: domain.ListFlags{Trips: domain.TripFlag{Status: domain.StatusIdle}},
	}
}

// Aggregate builds the view-model for one fetch outcome.
//
// Pending yields the stub in the loading state whatever records are passed.
// Failure yields no trips and the error flag; earlier data is never carried
// over. Success normalizes every record in order and drops the ones that fail,
// counting them in the Report; the list is still marked loaded.
func Aggregate(records []domain.RawTripRecord, state FetchState) (domain.TripOverviewListVM, Report) {
	vm := Stub()

	switch state {
	case FetchPending:
		vm.Flags.Trips.Status = domain.StatusLoading
		return vm, Report{}
	case FetchSuccess:
	default:
		vm.Flags.Trips.Status = domain.StatusFailed
		return vm, Report{}
	}

	rep := Report{Total: len(records)}
	vm.Trips = make([]domain.TripOverview, 0, len(records))
	for _, raw := range records {
		trip, err := Normalize(raw)
		if err != nil {
			rep.Dropped++
			var ne *domain.NormalizationError
			if errors.As(err, &ne) {
				rep.Errors = append(rep.Errors, *ne)
			}
			continue
		}
		vm.Trips = append(vm.Trips, trip)
	}
	rep.Kept = len(vm.Trips)
	vm.Flags.Trips.Status = domain.StatusLoaded
	return vm, rep
}
