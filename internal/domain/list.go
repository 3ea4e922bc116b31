package domain

// TripOverviewListVM is the trip list view-model: the only value a renderer sees.
// Trips is never nil so it encodes as [] rather than null.
type TripOverviewListVM struct {
	Trips []TripOverview `json:"trips"`
	Flags ListFlags      `json:"flags"`
}

// ListFlags groups the status flags of each collection shown on the list page.
type ListFlags struct {
	Trips TripFlag `json:"trips"`
}

// Clone returns a copy whose Trips slice does not alias vm's.
func (vm TripOverviewListVM) Clone() TripOverviewListVM {
	out := vm
	out.Trips = make([]TripOverview, len(vm.Trips))
	copy(out.Trips, vm.Trips)
	return out
}
