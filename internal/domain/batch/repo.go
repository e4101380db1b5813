package batch

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	List(ctx context.Context, limit, offset int) ([]*Batch, int, error)
	ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Batch, int, error)
}
