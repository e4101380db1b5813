package resolve

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/census/internal/domain/clinical"
	"github.com/carelink/census/internal/domain/staging"
)

// hospitalizationResolver matches rows to open hospitalizations by
// (case/hospital number, resolved patient, facility). A row whose patient
// did not resolve cannot resolve a hospitalization.
type hospitalizationResolver struct {
	repo clinical.CandidateRepository
}

func NewHospitalizationResolver(repo clinical.CandidateRepository) Resolver {
	return &hospitalizationResolver{repo: repo}
}

func (h *hospitalizationResolver) Kind() ResolverKind { return KindHospitalization }

type hospKey struct {
	caseNumber string
	patientID  uuid.UUID
}

func (h *hospitalizationResolver) Resolve(ctx context.Context, cache *Cache, facilityID uuid.UUID, date time.Time, rows []*staging.StagingAssignmentRow) (Stats, error) {
	hospitalizations, err := Fill(ctx, cache, KindHospitalization, func(ctx context.Context) ([]*clinical.Hospitalization, error) {
		return h.repo.OpenHospitalizations(ctx, facilityID, date)
	})
	if err != nil {
		return Stats{}, err
	}

	byKey := make(map[hospKey]*clinical.Hospitalization, len(hospitalizations))
	for _, hosp := range hospitalizations {
		byKey[hospKey{caseNumber: hosp.CaseNumber, patientID: hosp.PatientID}] = hosp
	}

	return forEachRow(ctx, rows, func(r *staging.StagingAssignmentRow) outcome {
		if r.PatientID == nil {
			r.HospitalizationID = nil
			return matchMiss
		}
		hosp, ok := byKey[hospKey{caseNumber: r.HospitalNumber, patientID: *r.PatientID}]
		if !ok {
			r.HospitalizationID = nil
			return matchMiss
		}
		id := hosp.ID
		r.HospitalizationID = &id
		return matchHit
	})
}

// statusResolver looks up the current status of the resolved
// hospitalization. It depends on the hospitalization stage having run.
type statusResolver struct {
	repo clinical.CandidateRepository
}

func NewStatusResolver(repo clinical.CandidateRepository) Resolver {
	return &statusResolver{repo: repo}
}

func (s *statusResolver) Kind() ResolverKind { return KindHospitalizationStatus }

func (s *statusResolver) Resolve(ctx context.Context, cache *Cache, facilityID uuid.UUID, date time.Time, rows []*staging.StagingAssignmentRow) (Stats, error) {
	statuses, err := Fill(ctx, cache, KindHospitalizationStatus, func(ctx context.Context) ([]*clinical.HospitalizationStatus, error) {
		return s.repo.CurrentStatuses(ctx, facilityID, date)
	})
	if err != nil {
		return Stats{}, err
	}

	byHospitalization := make(map[uuid.UUID]*clinical.HospitalizationStatus, len(statuses))
	for _, st := range statuses {
		byHospitalization[st.HospitalizationID] = st
	}

	return forEachRow(ctx, rows, func(r *staging.StagingAssignmentRow) outcome {
		if r.HospitalizationID == nil {
			r.HospitalizationStatusID = nil
			return matchMiss
		}
		st, ok := byHospitalization[*r.HospitalizationID]
		if !ok {
			r.HospitalizationStatusID = nil
			return matchMiss
		}
		id := st.ID
		r.HospitalizationStatusID = &id
		return matchHit
	})
}
