package clinical

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) CandidateRepository {
	return &repoPG{pool: pool}
}

func (r *repoPG) ActiveProviders(ctx context.Context, facilityID uuid.UUID, providerType ProviderType) ([]*Provider, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, last_name, first_name, facility_id, active
		FROM provider
		WHERE facility_id = $1 AND type = $2 AND active`, facilityID, providerType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, func(rows pgx.Rows) (*Provider, error) {
		var p Provider
		err := rows.Scan(&p.ID, &p.Type, &p.LastName, &p.FirstName, &p.FacilityID, &p.Active)
		return &p, err
	})
}

func (r *repoPG) PatientRecords(ctx context.Context, facilityID uuid.UUID) ([]*PatientRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, facility_id, mrn
		FROM patient_facility
		WHERE facility_id = $1`, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, func(rows pgx.Rows) (*PatientRecord, error) {
		var p PatientRecord
		err := rows.Scan(&p.ID, &p.PatientID, &p.FacilityID, &p.MRN)
		return &p, err
	})
}

func (r *repoPG) OpenHospitalizations(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]*Hospitalization, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, facility_id, case_number, admitted_at, discharged_at
		FROM hospitalization
		WHERE facility_id = $1
		  AND admitted_at <= $2
		  AND (discharged_at IS NULL OR discharged_at >= $2)`, facilityID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, func(rows pgx.Rows) (*Hospitalization, error) {
		var h Hospitalization
		err := rows.Scan(&h.ID, &h.PatientID, &h.FacilityID, &h.CaseNumber, &h.AdmittedAt, &h.DischargedAt)
		return &h, err
	})
}

func (r *repoPG) CurrentStatuses(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]*HospitalizationStatus, error) {
	// Latest status per open hospitalization as of the service date.
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (s.hospitalization_id)
			s.id, s.hospitalization_id, s.code, s.effective_at
		FROM hospitalization_status s
		JOIN hospitalization h ON h.id = s.hospitalization_id
		WHERE h.facility_id = $1 AND s.effective_at <= $2
		ORDER BY s.hospitalization_id, s.effective_at DESC`, facilityID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, func(rows pgx.Rows) (*HospitalizationStatus, error) {
		var s HospitalizationStatus
		err := rows.Scan(&s.ID, &s.HospitalizationID, &s.Code, &s.EffectiveAt)
		return &s, err
	})
}

func (r *repoPG) VisitsOn(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]*Visit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT v.id, v.hospitalization_id, v.visit_date
		FROM visit v
		JOIN hospitalization h ON h.id = v.hospitalization_id
		WHERE h.facility_id = $1 AND v.visit_date = $2::date`, facilityID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, func(rows pgx.Rows) (*Visit, error) {
		var v Visit
		err := rows.Scan(&v.ID, &v.HospitalizationID, &v.VisitDate)
		return &v, err
	})
}

func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (*T, error)) ([]*T, error) {
	var result []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
