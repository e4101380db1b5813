package resolve

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/census/internal/domain/clinical"
	"github.com/carelink/census/internal/domain/staging"
)

// providerResolver matches rows to providers by normalized last name. The
// same implementation serves both the physician and nurse-practitioner
// stages; they differ only in kind, provider type, and which row fields they
// read and write. A last name shared by several providers at the facility is
// ambiguous and stays unresolved rather than guessed.
type providerResolver struct {
	kind         ResolverKind
	providerType clinical.ProviderType
	repo         clinical.CandidateRepository
	lastName     func(r *staging.StagingAssignmentRow) *string
	assign       func(r *staging.StagingAssignmentRow, id *uuid.UUID)
}

// NewPhysicianResolver matches the attending-physician last name against
// active physicians at the facility.
func NewPhysicianResolver(repo clinical.CandidateRepository) Resolver {
	return &providerResolver{
		kind:         KindPhysician,
		providerType: clinical.ProviderPhysician,
		repo:         repo,
		lastName:     func(r *staging.StagingAssignmentRow) *string { return r.PhysicianLastName },
		assign:       func(r *staging.StagingAssignmentRow, id *uuid.UUID) { r.PhysicianID = id },
	}
}

// NewNursePractitionerResolver matches the NP last name against active nurse
// practitioners at the facility.
func NewNursePractitionerResolver(repo clinical.CandidateRepository) Resolver {
	return &providerResolver{
		kind:         KindNursePractitioner,
		providerType: clinical.ProviderNursePractitioner,
		repo:         repo,
		lastName:     func(r *staging.StagingAssignmentRow) *string { return r.NPLastName },
		assign:       func(r *staging.StagingAssignmentRow, id *uuid.UUID) { r.NursePractitionerID = id },
	}
}

func (p *providerResolver) Kind() ResolverKind { return p.kind }

func (p *providerResolver) Resolve(ctx context.Context, cache *Cache, facilityID uuid.UUID, _ time.Time, rows []*staging.StagingAssignmentRow) (Stats, error) {
	providers, err := Fill(ctx, cache, p.kind, func(ctx context.Context) ([]*clinical.Provider, error) {
		return p.repo.ActiveProviders(ctx, facilityID, p.providerType)
	})
	if err != nil {
		return Stats{}, err
	}

	byLastName := make(map[string][]*clinical.Provider, len(providers))
	for _, prov := range providers {
		key := strings.ToLower(prov.LastName)
		byLastName[key] = append(byLastName[key], prov)
	}

	return forEachRow(ctx, rows, func(r *staging.StagingAssignmentRow) outcome {
		name := p.lastName(r)
		if name == nil || *name == "" {
			p.assign(r, nil)
			return matchMiss
		}
		candidates := byLastName[strings.ToLower(*name)]
		switch len(candidates) {
		case 1:
			id := candidates[0].ID
			p.assign(r, &id)
			return matchHit
		case 0:
			p.assign(r, nil)
			return matchMiss
		default:
			p.assign(r, nil)
			return matchAmbiguous
		}
	})
}
