// Package clinical exposes the existing clinical entities the resolver
// pipeline matches staging rows against. The engine only reads these
// collections, always through the resolution cache's fill-once path.
package clinical

import (
	"time"

	"github.com/google/uuid"
)

// ProviderType distinguishes the two provider populations matched by name.
type ProviderType string

const (
	ProviderPhysician         ProviderType = "physician"
	ProviderNursePractitioner ProviderType = "nurse_practitioner"
)

// Provider is a credentialed provider active at a facility.
type Provider struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	Type       ProviderType `db:"type" json:"type"`
	LastName   string       `db:"last_name" json:"last_name"`
	FirstName  string       `db:"first_name" json:"first_name"`
	FacilityID uuid.UUID    `db:"facility_id" json:"facility_id"`
	Active     bool         `db:"active" json:"active"`
}

// PatientRecord is one patient's membership at a facility, keyed by the
// facility-local MRN.
type PatientRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	FacilityID uuid.UUID `db:"facility_id" json:"facility_id"`
	MRN        string    `db:"mrn" json:"mrn"`
}

// Hospitalization is an inpatient stay, open while DischargedAt is nil.
type Hospitalization struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	FacilityID   uuid.UUID  `db:"facility_id" json:"facility_id"`
	CaseNumber   string     `db:"case_number" json:"case_number"`
	AdmittedAt   time.Time  `db:"admitted_at" json:"admitted_at"`
	DischargedAt *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
}

// HospitalizationStatus is the current status record of a hospitalization.
type HospitalizationStatus struct {
	ID                uuid.UUID `db:"id" json:"id"`
	HospitalizationID uuid.UUID `db:"hospitalization_id" json:"hospitalization_id"`
	Code              string    `db:"code" json:"code"`
	EffectiveAt       time.Time `db:"effective_at" json:"effective_at"`
}

// Visit is one provider visit within a hospitalization on a given date.
type Visit struct {
	ID                uuid.UUID `db:"id" json:"id"`
	HospitalizationID uuid.UUID `db:"hospitalization_id" json:"hospitalization_id"`
	VisitDate         time.Time `db:"visit_date" json:"visit_date"`
}
