package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenReader_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "census.csv")
	if err := os.WriteFile(path, []byte("MRN\nM1\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r, err := openReader(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("expected a reader")
	}
}

func TestOpenReader_XLSX(t *testing.T) {
	// The xlsx reader opens lazily, so no file needs to exist yet.
	r, err := openReader("/tmp/census.XLSX", "Census")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("expected a reader")
	}
}

func TestOpenReader_Unsupported(t *testing.T) {
	if _, err := openReader("census.pdf", ""); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestOpenReader_MissingCSV(t *testing.T) {
	if _, err := openReader("/nonexistent/census.csv", ""); err == nil {
		t.Error("expected error for missing csv file")
	}
}
