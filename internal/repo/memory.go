package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripboard/internal/domain"
)

// memTripDocRepo keeps documents in process memory, for DATA_BACKEND=memory
// and for running the API without Postgres.
type memTripDocRepo struct {
	mu   sync.RWMutex
	docs []domain.TripDocument
	now  func() time.Time
}

// NewMemoryTripDocRepo returns an empty in-memory TripDocRepo.
func NewMemoryTripDocRepo() TripDocRepo {
	return &memTripDocRepo{now: time.Now}
}

// Create stores a JSON round-tripped copy of data, so callers see the same
// shapes (float64 numbers, plain maps) the Postgres store hands back.
func (r *memTripDocRepo) Create(_ context.Context, data domain.RawTripRecord) (domain.TripDocument, error) {
	stored, err := roundTrip(data)
	if err != nil {
		return domain.TripDocument{}, fmt.Errorf("repo.TripDocRepo.Create: %w", err)
	}
	doc := domain.TripDocument{ID: uuid.New(), Data: stored, CreatedAt: r.now().UTC()}

	r.mu.Lock()
	r.docs = append(r.docs, doc)
	r.mu.Unlock()

	return copyDoc(doc), nil
}

func (r *memTripDocRepo) GetByID(_ context.Context, id uuid.UUID) (domain.TripDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.docs {
		if d.ID == id {
			return copyDoc(d), nil
		}
	}
	return domain.TripDocument{}, fmt.Errorf("repo.TripDocRepo.GetByID: %w", domain.ErrNotFound)
}

func (r *memTripDocRepo) List(_ context.Context) ([]domain.TripDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TripDocument, len(r.docs))
	for i, d := range r.docs {
		out[i] = copyDoc(d)
	}
	return out, nil
}

func (r *memTripDocRepo) ListPaged(_ context.Context, p domain.PaginationParams) ([]domain.TripDocument, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := int64(len(r.docs))
	start := min(p.Offset(), len(r.docs))
	end := min(start+p.Limit, len(r.docs))
	out := make([]domain.TripDocument, 0, end-start)
	for _, d := range r.docs[start:end] {
		out = append(out, copyDoc(d))
	}
	return out, total, nil
}

func (r *memTripDocRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.docs {
		if d.ID == id {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("repo.TripDocRepo.Delete: %w", domain.ErrNotFound)
}

// copyDoc deep-copies Data so callers cannot mutate stored documents.
func copyDoc(d domain.TripDocument) domain.TripDocument {
	data, err := roundTrip(d.Data)
	if err == nil {
		d.Data = data
	}
	return d
}

func roundTrip(data domain.RawTripRecord) (domain.RawTripRecord, error) {
	if data == nil {
		return domain.RawTripRecord{}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out domain.RawTripRecord
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
