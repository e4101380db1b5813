package staging

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carelink/census/internal/platform/spreadsheet"
)

// Mapping errors. Both fail only the row they occur on.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrBadValue      = errors.New("invalid value")
)

// DateFormat is the fixed date layout census exports use. Admit timestamps
// may carry a time component on top of it.
const (
	DateFormat      = "01/02/2006"
	TimestampFormat = "01/02/2006 15:04"
)

// ColumnMapping associates one spreadsheet column with a row field. The
// mapping table is declared once at startup instead of being discovered per
// row through reflection.
type ColumnMapping struct {
	Column   string
	Field    string
	Required bool
	Assign   func(r *StagingAssignmentRow, value string) error
}

// Mapper converts raw header-keyed rows into typed staging rows using a
// declared column mapping.
type Mapper struct {
	mappings []ColumnMapping
}

// NewMapper validates the mapping table once and returns a Mapper. Duplicate
// column names are rejected at load time.
func NewMapper(mappings []ColumnMapping) (*Mapper, error) {
	seen := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if m.Column == "" || m.Field == "" || m.Assign == nil {
			return nil, fmt.Errorf("mapping for field %q is incomplete", m.Field)
		}
		if seen[m.Column] {
			return nil, fmt.Errorf("duplicate column mapping %q", m.Column)
		}
		seen[m.Column] = true
	}
	return &Mapper{mappings: mappings}, nil
}

// MapRow produces a typed staging row, or an error naming the first missing
// required column or failed conversion. Columns not present in the mapping
// are ignored.
func (m *Mapper) MapRow(row spreadsheet.Row, rowNumber int) (*StagingAssignmentRow, error) {
	r := &StagingAssignmentRow{RowNumber: rowNumber, ShouldImport: true}
	for _, cm := range m.mappings {
		value, ok := row[cm.Column]
		if !ok {
			if cm.Required {
				return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cm.Column)
			}
			continue
		}
		if err := cm.Assign(r, value); err != nil {
			return nil, fmt.Errorf("field %s: %w", cm.Field, err)
		}
	}
	return r, nil
}

// DefaultMappings is the column layout of the scheduling system's census
// export.
func DefaultMappings() []ColumnMapping {
	return []ColumnMapping{
		{Column: "Patient Name", Field: "patient_name", Required: true,
			Assign: func(r *StagingAssignmentRow, v string) error { r.PatientName = v; return nil }},
		{Column: "Hosp #", Field: "hospital_number", Required: true,
			Assign: func(r *StagingAssignmentRow, v string) error { r.HospitalNumber = v; return nil }},
		{Column: "MRN", Field: "mrn", Required: true,
			Assign: func(r *StagingAssignmentRow, v string) error { r.MRN = v; return nil }},
		{Column: "Age", Field: "age",
			Assign: func(r *StagingAssignmentRow, v string) error { return assignInt(&r.Age, v) }},
		{Column: "Admit Date", Field: "admitted_at",
			Assign: func(r *StagingAssignmentRow, v string) error { return assignTimestamp(&r.AdmittedAt, v) }},
		{Column: "DOB", Field: "birth_date",
			Assign: func(r *StagingAssignmentRow, v string) error { return assignDate(&r.BirthDate, v) }},
		{Column: "Location", Field: "location",
			Assign: func(r *StagingAssignmentRow, v string) error { assignString(&r.Location, v); return nil }},
		{Column: "Insurance", Field: "insurance_text",
			Assign: func(r *StagingAssignmentRow, v string) error { assignString(&r.InsuranceText, v); return nil }},
		{Column: "Attending Physician", Field: "attending_text",
			Assign: func(r *StagingAssignmentRow, v string) error { assignString(&r.AttendingText, v); return nil }},
		{Column: "Nurse Practitioner", Field: "nurse_practitioner_text",
			Assign: func(r *StagingAssignmentRow, v string) error { assignString(&r.NursePractitionerText, v); return nil }},
		{Column: "Flags", Field: "clinical_flags",
			Assign: func(r *StagingAssignmentRow, v string) error { assignString(&r.ClinicalFlags, v); return nil }},
	}
}

// assignString stores v, mapping an empty or whitespace-only cell to nil.
func assignString(dst **string, v string) {
	if strings.TrimSpace(v) == "" {
		*dst = nil
		return
	}
	*dst = &v
}

func assignInt(dst **int, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		*dst = nil
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrBadValue, v)
	}
	*dst = &n
	return nil
}

func assignDate(dst **time.Time, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		*dst = nil
		return nil
	}
	t, err := time.Parse(DateFormat, v)
	if err != nil {
		return fmt.Errorf("%w: %q is not a %s date", ErrBadValue, v, DateFormat)
	}
	*dst = &t
	return nil
}

// assignTimestamp accepts either the timestamp layout or a bare date.
func assignTimestamp(dst **time.Time, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		*dst = nil
		return nil
	}
	if t, err := time.Parse(TimestampFormat, v); err == nil {
		*dst = &t
		return nil
	}
	t, err := time.Parse(DateFormat, v)
	if err != nil {
		return fmt.Errorf("%w: %q is not a %s timestamp", ErrBadValue, v, TimestampFormat)
	}
	*dst = &t
	return nil
}
