package batch

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const batchCols = `id, facility_id, service_date, created_by, status, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, b *Batch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO census_batch (id, facility_id, service_date, created_by, status)
		VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.FacilityID, b.ServiceDate, b.CreatedBy, b.Status,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return scanBatch(r.pool.QueryRow(ctx, `SELECT `+batchCols+` FROM census_batch WHERE id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE census_batch SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Batch, int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+batchCols+` FROM census_batch
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	batches, err := scanBatches(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM census_batch`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

func (r *repoPG) ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Batch, int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+batchCols+` FROM census_batch
		WHERE facility_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, facilityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	batches, err := scanBatches(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM census_batch WHERE facility_id = $1`, facilityID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

func scanBatch(row pgx.Row) (*Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.FacilityID, &b.ServiceDate, &b.CreatedBy, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBatches(rows pgx.Rows) ([]*Batch, error) {
	var result []*Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.FacilityID, &b.ServiceDate, &b.CreatedBy, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &b)
	}
	return result, rows.Err()
}
