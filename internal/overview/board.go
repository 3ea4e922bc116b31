package overview

import (
	"sync"

	"github.com/pkordes/tripboard/internal/domain"
)

// Board holds the view-model currently shown for one trip list.
// Fetch sessions may finish out of order; Board keeps the newest one.
type Board struct {
	mu      sync.RWMutex
	next    uint64
	applied uint64
	vm      domain.TripOverviewListVM
}

// NewBoard returns a Board showing the stub view-model.
func NewBoard() *Board {
	return &Board{vm: Stub()}
}

// Begin starts a fetch session and returns its id. Ids increase monotonically.
func (b *Board) Begin() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	return b.next
}

// Apply installs vm as the result of session id. Results from a session older
// than the last applied one are discarded and Apply returns false.
// A session may apply more than once (loading, then its outcome).
func (b *Board) Apply(id uint64, vm domain.TripOverviewListVM) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id < b.applied {
		return false
	}
	b.applied = id
	b.vm = vm.Clone()
	return true
}

// Snapshot returns a copy of the displayed view-model.
func (b *Board) Snapshot() domain.TripOverviewListVM {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.vm.Clone()
}

// Touched reports whether any session has been applied yet.
func (b *Board) Touched() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.applied > 0
}
