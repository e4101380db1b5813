package clinical

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CandidateRepository loads the per-type candidate collections one
// resolution cycle matches against. Each method returns every candidate for
// the facility (and date window where relevant); the resolution cache
// guarantees each is called at most once per cycle.
type CandidateRepository interface {
	ActiveProviders(ctx context.Context, facilityID uuid.UUID, providerType ProviderType) ([]*Provider, error)
	PatientRecords(ctx context.Context, facilityID uuid.UUID) ([]*PatientRecord, error)
	OpenHospitalizations(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]*Hospitalization, error)
	CurrentStatuses(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]*HospitalizationStatus, error)
	VisitsOn(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]*Visit, error)
}
