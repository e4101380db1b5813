package staging

import (
	"context"
	"encoding/json"
	"fmt"

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

const rowCols = `id, batch_id, row_number,
	patient_name, hospital_number, mrn, age, admitted_at, birth_date,
	location, insurance_text, attending_text, nurse_practitioner_text, clinical_flags,
	patient_last_name, patient_first_name, physician_last_name, np_last_name, room, bed,
	physician_id, nurse_practitioner_id, patient_id,
	hospitalization_id, hospitalization_status_id, visit_id,
	patient_created, physician_created, np_created, hospitalization_created, visit_created,
	should_import, imported, errors, created_at, updated_at`

func (r *repoPG) InsertRows(ctx context.Context, rows []*StagingAssignmentRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	b := &pgx.Batch{}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		errsJSON, err := json.Marshal(row.Errors)
		if err != nil {
			return fmt.Errorf("marshal errors for row %d: %w", row.RowNumber, err)
		}
		b.Queue(`
			INSERT INTO census_staging_row (
				id, batch_id, row_number,
				patient_name, hospital_number, mrn, age, admitted_at, birth_date,
				location, insurance_text, attending_text, nurse_practitioner_text, clinical_flags,
				patient_last_name, patient_first_name, physician_last_name, np_last_name, room, bed,
				should_import, errors
			) VALUES (
				$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
				$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22
			)`,
			row.ID, row.BatchID, row.RowNumber,
			row.PatientName, row.HospitalNumber, row.MRN, row.Age, row.AdmittedAt, row.BirthDate,
			row.Location, row.InsuranceText, row.AttendingText, row.NursePractitionerText, row.ClinicalFlags,
			row.PatientLastName, row.PatientFirstName, row.PhysicianLastName, row.NPLastName, row.Room, row.Bed,
			row.ShouldImport, errsJSON,
		)
	}

	br := tx.SendBatch(ctx, b)
	for range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert staging rows: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *repoPG) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*StagingAssignmentRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+rowCols+` FROM census_staging_row
		WHERE batch_id = $1 ORDER BY row_number`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*StagingAssignmentRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *repoPG) BulkUpdateResolved(ctx context.Context, batchID uuid.UUID, rows []*StagingAssignmentRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	b := &pgx.Batch{}
	for _, row := range rows {
		b.Queue(`
			UPDATE census_staging_row SET
				physician_id = $3,
				nurse_practitioner_id = $4,
				patient_id = $5,
				hospitalization_id = $6,
				hospitalization_status_id = $7,
				visit_id = $8,
				updated_at = NOW()
			WHERE id = $1 AND batch_id = $2`,
			row.ID, batchID,
			row.PhysicianID, row.NursePractitionerID, row.PatientID,
			row.HospitalizationID, row.HospitalizationStatusID, row.VisitID,
		)
	}

	br := tx.SendBatch(ctx, b)
	for range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("update resolved fields: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return tx.Commit(ctx)
}

func scanRow(rows pgx.Rows) (*StagingAssignmentRow, error) {
	var r StagingAssignmentRow
	var errsJSON []byte
	err := rows.Scan(
		&r.ID, &r.BatchID, &r.RowNumber,
		&r.PatientName, &r.HospitalNumber, &r.MRN, &r.Age, &r.AdmittedAt, &r.BirthDate,
		&r.Location, &r.InsuranceText, &r.AttendingText, &r.NursePractitionerText, &r.ClinicalFlags,
		&r.PatientLastName, &r.PatientFirstName, &r.PhysicianLastName, &r.NPLastName, &r.Room, &r.Bed,
		&r.PhysicianID, &r.NursePractitionerID, &r.PatientID,
		&r.HospitalizationID, &r.HospitalizationStatusID, &r.VisitID,
		&r.PatientCreated, &r.PhysicianCreated, &r.NPCreated, &r.HospitalizationCreated, &r.VisitCreated,
		&r.ShouldImport, &r.Imported, &errsJSON, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(errsJSON) > 0 {
		if err := json.Unmarshal(errsJSON, &r.Errors); err != nil {
			return nil, fmt.Errorf("unmarshal errors for row %d: %w", r.RowNumber, err)
		}
	}
	return &r, nil
}
