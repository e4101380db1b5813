package staging

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestTrimStrings(t *testing.T) {
	row := &StagingAssignmentRow{
		PatientName:    "  SMITH, JOHN  ",
		HospitalNumber: "\tH-100 ",
		MRN:            "   ",
		Location:       strPtr(" 205A "),
		InsuranceText:  strPtr("  \t "),
		AttendingText:  nil,
	}

	TrimStrings(row)

	if row.PatientName != "SMITH, JOHN" {
		t.Errorf("unexpected patient name %q", row.PatientName)
	}
	if row.HospitalNumber != "H-100" {
		t.Errorf("unexpected hospital number %q", row.HospitalNumber)
	}
	if row.MRN != "" {
		t.Errorf("whitespace-only MRN should become empty, got %q", row.MRN)
	}
	if row.Location == nil || *row.Location != "205A" {
		t.Errorf("unexpected location %v", row.Location)
	}
	if row.InsuranceText == nil || *row.InsuranceText != "" {
		t.Errorf("whitespace-only insurance should become empty string, got %v", row.InsuranceText)
	}
	if row.AttendingText != nil {
		t.Error("nil field should stay nil")
	}
}

func TestDeriveNames(t *testing.T) {
	row := &StagingAssignmentRow{
		PatientName:           "MCDONALD, MARY JO",
		AttendingText:         strPtr("Dr. John Smith MD"),
		NursePractitionerText: nil,
		Location:              strPtr("205AB"),
	}

	DeriveNames(row)

	if row.PatientLastName != "McDonald" || row.PatientFirstName != "Mary Jo" {
		t.Errorf("unexpected names: %q %q", row.PatientLastName, row.PatientFirstName)
	}
	if row.PhysicianLastName == nil || *row.PhysicianLastName != "Smith" {
		t.Errorf("unexpected physician last name: %v", row.PhysicianLastName)
	}
	if row.NPLastName != nil {
		t.Error("expected nil NP last name for absent NP text")
	}
	if row.Room == nil || *row.Room != "205" || row.Bed == nil || *row.Bed != "AB" {
		t.Errorf("unexpected room/bed: %v %v", row.Room, row.Bed)
	}
}

func TestDefaultTransformersIdempotent(t *testing.T) {
	transform := DefaultTransformers()

	row := &StagingAssignmentRow{
		PatientName:    "  smith-jones, anne ",
		HospitalNumber: " H-9 ",
		MRN:            "42",
		AttendingText:  strPtr("  dr. o'brien "),
		Location:       strPtr(" 12B "),
	}

	transform(row)
	first := *row
	transform(row)

	if !reflect.DeepEqual(first, *row) {
		t.Errorf("transform chain not idempotent:\nfirst:  %+v\nsecond: %+v", first, *row)
	}
	if row.PatientLastName != "Smith-Jones" || row.PatientFirstName != "Anne" {
		t.Errorf("unexpected names: %q %q", row.PatientLastName, row.PatientFirstName)
	}
	if row.PhysicianLastName == nil || *row.PhysicianLastName != "O'Brien" {
		t.Errorf("unexpected physician last name: %v", row.PhysicianLastName)
	}
}
