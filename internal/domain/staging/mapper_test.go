package staging

import (
	"errors"
	"strings"
	"testing"

	"github.com/carelink/census/internal/platform/spreadsheet"
)

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := NewMapper(DefaultMappings())
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	return m
}

func fullRow() spreadsheet.Row {
	return spreadsheet.Row{
		"Patient Name":        "SMITH, JOHN",
		"Hosp #":              "H-100",
		"MRN":                 "12345",
		"Age":                 "67",
		"Admit Date":          "03/14/2026 08:30",
		"DOB":                 "01/02/1959",
		"Location":            "205AB",
		"Insurance":           "Medicare",
		"Attending Physician": "Dr. Jane McDonald",
		"Nurse Practitioner":  "Pat Jones NP",
		"Flags":               "DNR",
	}
}

func TestMapRow(t *testing.T) {
	m := newTestMapper(t)

	row, err := m.MapRow(fullRow(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if row.PatientName != "SMITH, JOHN" {
		t.Errorf("unexpected patient name %q", row.PatientName)
	}
	if row.HospitalNumber != "H-100" || row.MRN != "12345" {
		t.Errorf("unexpected identifiers: %q %q", row.HospitalNumber, row.MRN)
	}
	if row.Age == nil || *row.Age != 67 {
		t.Errorf("unexpected age: %v", row.Age)
	}
	if row.AdmittedAt == nil || row.AdmittedAt.Hour() != 8 || row.AdmittedAt.Minute() != 30 {
		t.Errorf("unexpected admit timestamp: %v", row.AdmittedAt)
	}
	if row.BirthDate == nil || row.BirthDate.Year() != 1959 {
		t.Errorf("unexpected birth date: %v", row.BirthDate)
	}
	if row.RowNumber != 2 {
		t.Errorf("unexpected row number %d", row.RowNumber)
	}
	if !row.ShouldImport {
		t.Error("expected should_import to default true")
	}
}

func TestMapRowDateOnlyAdmit(t *testing.T) {
	m := newTestMapper(t)
	raw := fullRow()
	raw["Admit Date"] = "03/14/2026"

	row, err := m.MapRow(raw, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.AdmittedAt == nil || row.AdmittedAt.Day() != 14 {
		t.Errorf("unexpected admit timestamp: %v", row.AdmittedAt)
	}
}

func TestMapRowEmptyOptionalFields(t *testing.T) {
	m := newTestMapper(t)
	raw := fullRow()
	raw["Age"] = ""
	raw["DOB"] = "  "
	raw["Insurance"] = ""
	raw["Location"] = "   "

	row, err := m.MapRow(raw, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Age != nil || row.BirthDate != nil || row.InsuranceText != nil || row.Location != nil {
		t.Error("expected empty cells to map to nil")
	}
}

func TestMapRowMissingRequiredColumn(t *testing.T) {
	m := newTestMapper(t)
	raw := fullRow()
	delete(raw, "MRN")

	_, err := m.MapRow(raw, 2)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "MRN") {
		t.Errorf("error should name the missing column: %v", err)
	}
}

func TestMapRowMissingOptionalColumn(t *testing.T) {
	m := newTestMapper(t)
	raw := fullRow()
	delete(raw, "Flags")
	delete(raw, "Nurse Practitioner")

	row, err := m.MapRow(raw, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.ClinicalFlags != nil || row.NursePractitionerText != nil {
		t.Error("expected absent optional columns to stay nil")
	}
}

func TestMapRowConversionFailures(t *testing.T) {
	m := newTestMapper(t)

	tests := []struct {
		column string
		value  string
		field  string
	}{
		{"Age", "sixty", "age"},
		{"Admit Date", "2026-03-14", "admitted_at"},
		{"DOB", "Jan 2 1959", "birth_date"},
	}

	for _, tt := range tests {
		raw := fullRow()
		raw[tt.column] = tt.value
		_, err := m.MapRow(raw, 2)
		if !errors.Is(err, ErrBadValue) {
			t.Errorf("%s=%q: expected ErrBadValue, got %v", tt.column, tt.value, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.field) {
			t.Errorf("%s=%q: error should name destination field %s: %v", tt.column, tt.value, tt.field, err)
		}
	}
}

func TestMapRowIgnoresUnmappedColumns(t *testing.T) {
	m := newTestMapper(t)
	raw := fullRow()
	raw["Unit Secretary"] = "whoever"

	if _, err := m.MapRow(raw, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewMapperRejectsDuplicates(t *testing.T) {
	mappings := DefaultMappings()
	mappings = append(mappings, mappings[0])
	if _, err := NewMapper(mappings); err == nil {
		t.Fatal("expected duplicate column error")
	}
}
