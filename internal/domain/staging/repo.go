package staging

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// InsertRows persists freshly imported rows. Each row carries its BatchID.
	InsertRows(ctx context.Context, rows []*StagingAssignmentRow) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*StagingAssignmentRow, error)
	// BulkUpdateResolved writes the resolved foreign keys of every row back
	// to staging in a single transaction. On failure nothing is persisted
	// and the batch is safe to re-resolve.
	BulkUpdateResolved(ctx context.Context, batchID uuid.UUID, rows []*StagingAssignmentRow) error
}
