package staging

import "time"

// Verdict is the outcome of validating one row. Errors carries every rule
// violation found; rules are not short-circuited.
type Verdict struct {
	Valid  bool
	Errors []FieldError
}

const (
	minAge = 0
	maxAge = 150
)

// Validator checks business rules on staging rows. It never mutates a row
// and never touches persistence. The clock is injectable so the
// not-in-the-future rules are testable.
type Validator struct {
	now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorAt uses a fixed evaluation clock.
func NewValidatorAt(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// Validate applies every rule and returns all violations, keyed by row
// number and field so the operator can correct the source spreadsheet.
func (v *Validator) Validate(r *StagingAssignmentRow, rowNumber int) Verdict {
	var errs []FieldError
	add := func(field, message string) {
		errs = append(errs, FieldError{Row: rowNumber, Field: field, Message: message})
	}

	if r.PatientName == "" {
		add("patient_name", "is required")
	}
	if r.HospitalNumber == "" {
		add("hospital_number", "is required")
	}
	if r.MRN == "" {
		add("mrn", "is required")
	}
	if r.Age != nil && (*r.Age < minAge || *r.Age > maxAge) {
		add("age", "must be between 0 and 150")
	}

	now := v.now()
	if r.AdmittedAt != nil && r.AdmittedAt.After(now) {
		add("admitted_at", "must not be in the future")
	}
	if r.BirthDate != nil && r.BirthDate.After(now) {
		add("birth_date", "must not be in the future")
	}

	return Verdict{Valid: len(errs) == 0, Errors: errs}
}
