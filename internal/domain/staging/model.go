package staging

import (
	"time"

	"github.com/google/uuid"
)

// StagingAssignmentRow is one imported patient-provider assignment awaiting
// validation and resolution. Raw fields hold the spreadsheet text as
// received; derived fields are filled by the transformers; resolved
// identifiers are written by the resolver pipeline and stay nil on no-match.
// The *Created flags belong to the downstream promotion step and are never
// touched by this engine.
type StagingAssignmentRow struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BatchID   uuid.UUID `db:"batch_id" json:"batch_id"`
	RowNumber int       `db:"row_number" json:"row_number"`

	// Raw fields as received.
	PatientName           string     `db:"patient_name" json:"patient_name"`
	HospitalNumber        string     `db:"hospital_number" json:"hospital_number"`
	MRN                   string     `db:"mrn" json:"mrn"`
	Age                   *int       `db:"age" json:"age,omitempty"`
	AdmittedAt            *time.Time `db:"admitted_at" json:"admitted_at,omitempty"`
	BirthDate             *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Location              *string    `db:"location" json:"location,omitempty"`
	InsuranceText         *string    `db:"insurance_text" json:"insurance_text,omitempty"`
	AttendingText         *string    `db:"attending_text" json:"attending_text,omitempty"`
	NursePractitionerText *string    `db:"nurse_practitioner_text" json:"nurse_practitioner_text,omitempty"`
	ClinicalFlags         *string    `db:"clinical_flags" json:"clinical_flags,omitempty"`

	// Derived by the transformers.
	PatientLastName   string  `db:"patient_last_name" json:"patient_last_name"`
	PatientFirstName  string  `db:"patient_first_name" json:"patient_first_name"`
	PhysicianLastName *string `db:"physician_last_name" json:"physician_last_name,omitempty"`
	NPLastName        *string `db:"np_last_name" json:"np_last_name,omitempty"`
	Room              *string `db:"room" json:"room,omitempty"`
	Bed               *string `db:"bed" json:"bed,omitempty"`

	// Resolved by the resolver pipeline; nil until a match is found.
	PhysicianID             *uuid.UUID `db:"physician_id" json:"physician_id,omitempty"`
	NursePractitionerID     *uuid.UUID `db:"nurse_practitioner_id" json:"nurse_practitioner_id,omitempty"`
	PatientID               *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	HospitalizationID       *uuid.UUID `db:"hospitalization_id" json:"hospitalization_id,omitempty"`
	HospitalizationStatusID *uuid.UUID `db:"hospitalization_status_id" json:"hospitalization_status_id,omitempty"`
	VisitID                 *uuid.UUID `db:"visit_id" json:"visit_id,omitempty"`

	// Set only by the promotion step when it creates a record instead of
	// linking an existing one.
	PatientCreated         bool `db:"patient_created" json:"patient_created"`
	PhysicianCreated       bool `db:"physician_created" json:"physician_created"`
	NPCreated              bool `db:"np_created" json:"np_created"`
	HospitalizationCreated bool `db:"hospitalization_created" json:"hospitalization_created"`
	VisitCreated           bool `db:"visit_created" json:"visit_created"`

	ShouldImport bool `db:"should_import" json:"should_import"`
	Imported     bool `db:"imported" json:"imported"`

	Errors []FieldError `db:"errors" json:"errors,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FieldError is one validation failure, keyed so an operator can find and fix
// the offending cell in the source spreadsheet.
type FieldError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HasErrors reports whether the row failed validation. Rows with errors are
// excluded from every resolver stage.
func (r *StagingAssignmentRow) HasErrors() bool {
	return len(r.Errors) > 0
}
