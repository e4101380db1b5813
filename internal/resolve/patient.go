package resolve

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/census/internal/domain/clinical"
	"github.com/carelink/census/internal/domain/staging"
)

// patientResolver matches rows to existing patients by (facility, MRN).
type patientResolver struct {
	repo clinical.CandidateRepository
}

func NewPatientResolver(repo clinical.CandidateRepository) Resolver {
	return &patientResolver{repo: repo}
}

func (p *patientResolver) Kind() ResolverKind { return KindPatient }

func (p *patientResolver) Resolve(ctx context.Context, cache *Cache, facilityID uuid.UUID, _ time.Time, rows []*staging.StagingAssignmentRow) (Stats, error) {
	records, err := Fill(ctx, cache, KindPatient, func(ctx context.Context) ([]*clinical.PatientRecord, error) {
		return p.repo.PatientRecords(ctx, facilityID)
	})
	if err != nil {
		return Stats{}, err
	}

	byMRN := make(map[string]*clinical.PatientRecord, len(records))
	for _, rec := range records {
		byMRN[rec.MRN] = rec
	}

	return forEachRow(ctx, rows, func(r *staging.StagingAssignmentRow) outcome {
		rec, ok := byMRN[r.MRN]
		if !ok {
			r.PatientID = nil
			return matchMiss
		}
		id := rec.PatientID
		r.PatientID = &id
		return matchHit
	})
}
