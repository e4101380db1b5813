package resolve

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/census/internal/domain/clinical"
	"github.com/carelink/census/internal/domain/staging"
)

// visitResolver matches rows to existing visits by (resolved
// hospitalization, service date).
type visitResolver struct {
	repo clinical.CandidateRepository
}

func NewVisitResolver(repo clinical.CandidateRepository) Resolver {
	return &visitResolver{repo: repo}
}

func (v *visitResolver) Kind() ResolverKind { return KindVisit }

func (v *visitResolver) Resolve(ctx context.Context, cache *Cache, facilityID uuid.UUID, date time.Time, rows []*staging.StagingAssignmentRow) (Stats, error) {
	visits, err := Fill(ctx, cache, KindVisit, func(ctx context.Context) ([]*clinical.Visit, error) {
		return v.repo.VisitsOn(ctx, facilityID, date)
	})
	if err != nil {
		return Stats{}, err
	}

	serviceDay := date.Truncate(24 * time.Hour)
	byHospitalization := make(map[uuid.UUID]*clinical.Visit, len(visits))
	for _, visit := range visits {
		if visit.VisitDate.Truncate(24 * time.Hour).Equal(serviceDay) {
			byHospitalization[visit.HospitalizationID] = visit
		}
	}

	return forEachRow(ctx, rows, func(r *staging.StagingAssignmentRow) outcome {
		if r.HospitalizationID == nil {
			r.VisitID = nil
			return matchMiss
		}
		visit, ok := byHospitalization[*r.HospitalizationID]
		if !ok {
			r.VisitID = nil
			return matchMiss
		}
		id := visit.ID
		r.VisitID = &id
		return matchHit
	})
}
