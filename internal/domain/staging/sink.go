package staging

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink persists validated staging rows as a batch. Initialize clears any
// prior state; WriteBatch may be called several times for one batch and each
// call accumulates.
type Sink interface {
	Initialize(ctx context.Context) error
	WriteBatch(ctx context.Context, batchID uuid.UUID, rows []*StagingAssignmentRow) error
	Finalize(ctx context.Context) error
}

// MemorySink collects rows in memory, for tests and dry runs.
type MemorySink struct {
	mu      sync.Mutex
	batches map[uuid.UUID][]*StagingAssignmentRow
}

func NewMemorySink() *MemorySink {
	return &MemorySink{batches: make(map[uuid.UUID][]*StagingAssignmentRow)}
}

func (s *MemorySink) Initialize(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = make(map[uuid.UUID][]*StagingAssignmentRow)
	return nil
}

func (s *MemorySink) WriteBatch(_ context.Context, batchID uuid.UUID, rows []*StagingAssignmentRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batchID] = append(s.batches[batchID], rows...)
	return nil
}

func (s *MemorySink) Finalize(_ context.Context) error { return nil }

// Rows returns the accumulated rows for a batch.
func (s *MemorySink) Rows(batchID uuid.UUID) []*StagingAssignmentRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches[batchID]
}

// DelimitedFileSink writes staging rows to a tab-delimited text file.
type DelimitedFileSink struct {
	path string
	f    *os.File
	w    *csv.Writer
}

func NewDelimitedFileSink(path string) *DelimitedFileSink {
	return &DelimitedFileSink{path: path}
}

var fileHeader = []string{
	"batch_id", "row_number", "patient_name", "hospital_number", "mrn",
	"age", "admitted_at", "birth_date", "location",
	"patient_last_name", "patient_first_name", "physician_last_name", "np_last_name",
	"room", "bed", "error_count",
}

func (s *DelimitedFileSink) Initialize(_ context.Context) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	s.f = f
	s.w = csv.NewWriter(f)
	s.w.Comma = '\t'
	if err := s.w.Write(fileHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func (s *DelimitedFileSink) WriteBatch(ctx context.Context, batchID uuid.UUID, rows []*StagingAssignmentRow) error {
	if s.w == nil {
		return fmt.Errorf("sink not initialized")
	}
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		record := []string{
			batchID.String(),
			strconv.Itoa(r.RowNumber),
			r.PatientName,
			r.HospitalNumber,
			r.MRN,
			optInt(r.Age),
			optTime(r.AdmittedAt, TimestampFormat),
			optTime(r.BirthDate, DateFormat),
			optStr(r.Location),
			r.PatientLastName,
			r.PatientFirstName,
			optStr(r.PhysicianLastName),
			optStr(r.NPLastName),
			optStr(r.Room),
			optStr(r.Bed),
			strconv.Itoa(len(r.Errors)),
		}
		if err := s.w.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", r.RowNumber, err)
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *DelimitedFileSink) Finalize(_ context.Context) error {
	if s.w == nil {
		return nil
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

func optStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func optTime(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}
