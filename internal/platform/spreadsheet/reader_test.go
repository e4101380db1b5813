package spreadsheet

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestCSVReader(t *testing.T) {
	src := strings.NewReader(
		"Name,MRN,Room\n" +
			"Smith,12345,205A\n" +
			",,\n" +
			"Jones,67890\n")

	var rows []Row
	var numbers []int
	err := NewCSVReader(src).Read(context.Background(), func(n int, row Row) error {
		numbers = append(numbers, n)
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (blank skipped), got %d", len(rows))
	}
	if rows[0]["Name"] != "Smith" || rows[0]["MRN"] != "12345" || rows[0]["Room"] != "205A" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if numbers[0] != 2 || numbers[1] != 4 {
		t.Errorf("expected file row numbers 2 and 4, got %v", numbers)
	}
	// Ragged row: missing trailing cell is an absent key, not an empty value.
	if _, ok := rows[1]["Room"]; ok {
		t.Error("expected Room to be absent on ragged row")
	}
}

func TestCSVReaderCancellation(t *testing.T) {
	src := strings.NewReader("Name\nSmith\nJones\nBrown\n")
	ctx, cancel := context.WithCancel(context.Background())

	var seen []Row
	err := NewCSVReader(src).Read(ctx, func(_ int, row Row) error {
		seen = append(seen, row)
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(seen) != 1 {
		t.Errorf("expected 1 row before cancellation, got %d", len(seen))
	}
	// The row produced before cancellation is still usable.
	if seen[0]["Name"] != "Smith" {
		t.Errorf("unexpected row: %v", seen[0])
	}
}

func TestCSVReaderRowFuncError(t *testing.T) {
	src := strings.NewReader("Name\nSmith\nJones\n")
	boom := errors.New("boom")

	err := NewCSVReader(src).Read(context.Background(), func(_ int, _ Row) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected row func error, got %v", err)
	}
}

func TestXLSXReader(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	data := [][]any{
		{"Name", "MRN"},
		{"Smith", "12345"},
		{"", ""},
		{"Jones", "67890"},
	}
	for i, cells := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("coordinates: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	var rows []Row
	err = NewXLSXReaderFrom(buf, "").Read(context.Background(), func(_ int, row Row) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["Name"] != "Smith" || rows[1]["MRN"] != "67890" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestXLSXReaderMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	err = NewXLSXReaderFrom(buf, "Census").Read(context.Background(), func(_ int, _ Row) error {
		return nil
	})
	if err == nil {
		t.Fatal("expected error for missing sheet")
	}
}
