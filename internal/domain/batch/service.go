package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrBadTransition is returned when a batch status change would skip a state
// or move backward.
var ErrBadTransition = errors.New("invalid batch status transition")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateBatch(ctx context.Context, facilityID uuid.UUID, serviceDate time.Time, createdBy uuid.UUID) (*Batch, error) {
	if facilityID == uuid.Nil {
		return nil, fmt.Errorf("facility_id is required")
	}
	if serviceDate.IsZero() {
		return nil, fmt.Errorf("service_date is required")
	}

	b := &Batch{
		FacilityID:  facilityID,
		ServiceDate: serviceDate,
		CreatedBy:   createdBy,
		Status:      StatusPending,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListBatches(ctx context.Context, limit, offset int) ([]*Batch, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListBatchesByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Batch, int, error) {
	return s.repo.ListByFacility(ctx, facilityID, limit, offset)
}

// Transition moves b to next, enforcing the forward-only state machine, and
// persists the new status.
func (s *Service) Transition(ctx context.Context, b *Batch, next Status) error {
	if !b.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, b.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, b.ID, next); err != nil {
		return err
	}
	b.Status = next
	return nil
}

// MarkImported records that the batch's rows have been persisted to staging.
func (s *Service) MarkImported(ctx context.Context, b *Batch) error {
	return s.Transition(ctx, b, StatusImported)
}

// MarkResolved records that the resolver pipeline has completed for the batch.
// The engine never advances a batch beyond Resolved; promotion owns Processed.
func (s *Service) MarkResolved(ctx context.Context, b *Batch) error {
	return s.Transition(ctx, b, StatusResolved)
}
