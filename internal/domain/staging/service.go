package staging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/census/internal/domain/batch"
	"github.com/carelink/census/internal/platform/spreadsheet"
)

// flushEvery bounds memory during large imports; each flush is one
// accumulating WriteBatch call on the sink.
const flushEvery = 500

// MappingFailure records a row the column mapper rejected. The row is not
// staged; the rest of the file continues.
type MappingFailure struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult is the operator-facing summary of one import run.
type ImportResult struct {
	Batch            *batch.Batch     `json:"batch"`
	RowCount         int              `json:"row_count"`
	InvalidCount     int              `json:"invalid_count"`
	MappingFailures  []MappingFailure `json:"mapping_failures,omitempty"`
	ValidationErrors []FieldError     `json:"validation_errors,omitempty"`
}

// Service runs the ingestion half of the pipeline: read raw rows, map them
// to typed staging rows, transform, validate, and persist them as a batch in
// Imported state.
type Service struct {
	batches   *batch.Service
	sink      Sink
	mapper    *Mapper
	transform Transformer
	validator *Validator
	logger    zerolog.Logger
}

func NewService(batches *batch.Service, sink Sink, mapper *Mapper, validator *Validator, logger zerolog.Logger) *Service {
	return &Service{
		batches:   batches,
		sink:      sink,
		mapper:    mapper,
		transform: DefaultTransformers(),
		validator: validator,
		logger:    logger,
	}
}

// Import reads every row from reader into a new batch. Mapping and
// validation failures are row-local; reader errors and cancellation abort
// the run and leave the batch in Pending state.
func (s *Service) Import(ctx context.Context, reader spreadsheet.Reader, facilityID uuid.UUID, serviceDate time.Time, createdBy uuid.UUID) (*ImportResult, error) {
	b, err := s.batches.CreateBatch(ctx, facilityID, serviceDate, createdBy)
	if err != nil {
		return nil, err
	}

	if err := s.sink.Initialize(ctx); err != nil {
		return nil, err
	}

	result := &ImportResult{Batch: b}
	var pending []*StagingAssignmentRow

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := s.sink.WriteBatch(ctx, b.ID, pending); err != nil {
			return err
		}
		pending = pending[:0]
		return nil
	}

	err = reader.Read(ctx, func(rowNumber int, raw spreadsheet.Row) error {
		row, err := s.mapper.MapRow(raw, rowNumber)
		if err != nil {
			result.MappingFailures = append(result.MappingFailures, MappingFailure{
				Row:     rowNumber,
				Message: err.Error(),
			})
			return nil
		}
		row.BatchID = b.ID

		s.transform(row)

		verdict := s.validator.Validate(row, rowNumber)
		row.Errors = verdict.Errors
		if !verdict.Valid {
			result.InvalidCount++
			result.ValidationErrors = append(result.ValidationErrors, verdict.Errors...)
		}

		result.RowCount++
		pending = append(pending, row)
		if len(pending) >= flushEvery {
			return flush()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := flush(); err != nil {
		return nil, err
	}
	if err := s.sink.Finalize(ctx); err != nil {
		return nil, err
	}

	if err := s.batches.MarkImported(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("batch_id", b.ID.String()).
		Int("rows", result.RowCount).
		Int("invalid", result.InvalidCount).
		Int("mapping_failures", len(result.MappingFailures)).
		Msg("batch imported")

	return result, nil
}

// RepoSink adapts the staging Repository to the Sink lifecycle for the
// production Postgres path. Initialize and Finalize are no-ops: a fresh
// batch id isolates the run, and inserts are transactional per flush.
type RepoSink struct {
	repo Repository
}

func NewRepoSink(repo Repository) *RepoSink {
	return &RepoSink{repo: repo}
}

func (s *RepoSink) Initialize(_ context.Context) error { return nil }

func (s *RepoSink) WriteBatch(ctx context.Context, _ uuid.UUID, rows []*StagingAssignmentRow) error {
	return s.repo.InsertRows(ctx, rows)
}

func (s *RepoSink) Finalize(_ context.Context) error { return nil }
