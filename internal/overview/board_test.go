package overview_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/overview"
)

func TestBoard_StartsWithStub(t *testing.T) {
	b := overview.NewBoard()

	assert.Equal(t, overview.Stub(), b.Snapshot())
	assert.False(t, b.Touched())
}

func TestBoard_BeginIsMonotonic(t *testing.T) {
	b := overview.NewBoard()

	first := b.Begin()
	second := b.Begin()

	assert.Greater(t, second, first)
}

func TestBoard_DiscardsStaleSession(t *testing.T) {
	b := overview.NewBoard()
	older := b.Begin()
	newer := b.Begin()

	newVM, _ := overview.Aggregate([]domain.RawTripRecord{titled("Leh")}, overview.FetchSuccess)
	oldVM, _ := overview.Aggregate([]domain.RawTripRecord{titled("Goa")}, overview.FetchSuccess)

	require.True(t, b.Apply(newer, newVM))
	assert.False(t, b.Apply(older, oldVM), "older session must not overwrite a newer one")
	assert.Equal(t, []string{"Leh"}, titles(b.Snapshot()))
	assert.True(t, b.Touched())
}

func TestBoard_SameSessionAppliesTwice(t *testing.T) {
	b := overview.NewBoard()
	id := b.Begin()

	pending, _ := overview.Aggregate(nil, overview.FetchPending)
	loaded, _ := overview.Aggregate([]domain.RawTripRecord{titled("Goa")}, overview.FetchSuccess)

	require.True(t, b.Apply(id, pending))
	assert.True(t, b.Snapshot().Flags.Trips.Loading())
	require.True(t, b.Apply(id, loaded))
	assert.True(t, b.Snapshot().Flags.Trips.Loaded())
}

func TestBoard_SnapshotIsACopy(t *testing.T) {
	b := overview.NewBoard()
	vm, _ := overview.Aggregate([]domain.RawTripRecord{titled("Goa")}, overview.FetchSuccess)
	b.Apply(b.Begin(), vm)

	snap := b.Snapshot()
	snap.Trips[0].Title = "edited"
	vm.Trips[0].Title = "edited too"

	assert.Equal(t, []string{"Goa"}, titles(b.Snapshot()))
}

func TestBoard_ConcurrentUse(t *testing.T) {
	b := overview.NewBoard()
	vm, _ := overview.Aggregate([]domain.RawTripRecord{titled("Goa")}, overview.FetchSuccess)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Apply(b.Begin(), vm)
			_ = b.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"Goa"}, titles(b.Snapshot()))
}
