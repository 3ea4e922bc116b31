// Package service contains the business logic for the Tripboard API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/overview"
	"github.com/pkordes/tripboard/internal/repo"
)

// TripService manages the raw trip documents behind the overview list.
type TripService struct {
	repo repo.TripDocRepo
}

// NewTripService constructs a TripService backed by the provided TripDocRepo.
func NewTripService(r repo.TripDocRepo) *TripService {
	return &TripService{repo: r}
}

// Create stores a raw trip record. Records that would be dropped from the
// overview list are refused up front: the returned error wraps the
// *domain.NormalizationError and therefore domain.ErrValidation.
// Documents written to the store by other means are not checked here.
func (s *TripService) Create(ctx context.Context, raw domain.RawTripRecord) (domain.TripDocument, error) {
	if _, err := overview.Normalize(raw); err != nil {
		return domain.TripDocument{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	doc, err := s.repo.Create(ctx, raw)
	if err != nil {
		return domain.TripDocument{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return doc, nil
}

// GetByID returns a single document by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.TripDocument, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.TripDocument{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return doc, nil
}

// ListPaged returns one page of documents in arrival order and the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.TripDocument, int64, error) {
	docs, total, err := s.repo.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if docs == nil {
		docs = []domain.TripDocument{}
	}
	return docs, total, nil
}

// Delete removes a document by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}
