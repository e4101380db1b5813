package staging

import (
	"strings"

	"github.com/carelink/census/internal/names"
)

// Transformer is a pure, idempotent in-place rewrite of one staging row.
// Transformers run in the order given to Chain; running the chain twice
// leaves rows unchanged.
type Transformer func(r *StagingAssignmentRow)

// Chain applies transformers in order.
func Chain(transformers ...Transformer) Transformer {
	return func(r *StagingAssignmentRow) {
		for _, t := range transformers {
			t(r)
		}
	}
}

// DefaultTransformers is the fixed chain run on every imported row.
func DefaultTransformers() Transformer {
	return Chain(TrimStrings, DeriveNames)
}

// TrimStrings trims every raw text field. A value that is entirely
// whitespace becomes the empty string; nil optional fields stay nil.
func TrimStrings(r *StagingAssignmentRow) {
	r.PatientName = strings.TrimSpace(r.PatientName)
	r.HospitalNumber = strings.TrimSpace(r.HospitalNumber)
	r.MRN = strings.TrimSpace(r.MRN)
	trimPtr(r.Location)
	trimPtr(r.InsuranceText)
	trimPtr(r.AttendingText)
	trimPtr(r.NursePractitionerText)
	trimPtr(r.ClinicalFlags)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// DeriveNames fills the normalized name and location fields from the raw
// text. It recomputes from the raw fields every time, so re-running it is a
// no-op.
func DeriveNames(r *StagingAssignmentRow) {
	last, first := names.SplitPatientName(r.PatientName)
	r.PatientLastName = names.NormalizeCase(last)
	r.PatientFirstName = names.NormalizeCase(first)

	r.PhysicianLastName = names.ExtractProviderLastName(r.AttendingText)
	r.NPLastName = names.ExtractProviderLastName(r.NursePractitionerText)

	var location string
	if r.Location != nil {
		location = *r.Location
	}
	r.Room, r.Bed = names.ParseLocation(location)
}
