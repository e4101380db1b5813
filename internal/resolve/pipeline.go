package resolve

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/carelink/census/internal/domain/batch"
	"github.com/carelink/census/internal/domain/clinical"
	"github.com/carelink/census/internal/domain/staging"
)

// Pipeline runs one full resolution cycle over a batch: each resolver stage
// in dependency order, then one transactional bulk write of the resolved
// foreign keys. Stages are sequential because later ones read keys written
// by earlier ones; the cache is created fresh per cycle.
type Pipeline struct {
	registry *Registry
	staging  staging.Repository
	batches  *batch.Service
	progress Progress
}

func NewPipeline(registry *Registry, stagingRepo staging.Repository, batches *batch.Service, progress Progress) *Pipeline {
	if progress == nil {
		progress = NopProgress{}
	}
	return &Pipeline{
		registry: registry,
		staging:  stagingRepo,
		batches:  batches,
		progress: progress,
	}
}

// NewDefaultRegistry wires the six standard resolver stages against one
// candidate repository.
func NewDefaultRegistry(repo clinical.CandidateRepository) (*Registry, error) {
	return NewRegistry(
		NewPhysicianResolver(repo),
		NewNursePractitionerResolver(repo),
		NewPatientResolver(repo),
		NewHospitalizationResolver(repo),
		NewStatusResolver(repo),
		NewVisitResolver(repo),
	)
}

// ResolveBatch resolves every error-free row of the batch and transitions it
// from Imported to Resolved. On bulk-write failure nothing is persisted, the
// batch stays Imported, and the cycle is safe to re-run. Re-running an
// already resolved cycle recomputes the same foreign keys.
func (p *Pipeline) ResolveBatch(ctx context.Context, b *batch.Batch) (map[ResolverKind]Stats, error) {
	if b.Status != batch.StatusImported && b.Status != batch.StatusResolved {
		return nil, fmt.Errorf("batch %s is %s, want %s", b.ID, b.Status, batch.StatusImported)
	}

	rows, err := p.staging.ListByBatch(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("load staging rows: %w", err)
	}

	// Rows with validation errors never reach a resolver.
	eligible := make([]*staging.StagingAssignmentRow, 0, len(rows))
	for _, r := range rows {
		if !r.HasErrors() {
			eligible = append(eligible, r)
		}
	}

	cache := NewCache()
	results := make(map[ResolverKind]Stats, len(Order))
	for _, kind := range Order {
		resolver, err := p.registry.Get(kind)
		if err != nil {
			return nil, err
		}

		p.progress.StageStarted(b.ID, kind, len(eligible))
		stats, err := resolver.Resolve(ctx, cache, b.FacilityID, b.ServiceDate, eligible)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", kind, err)
		}
		p.progress.StageFinished(b.ID, kind, stats)
		results[kind] = stats
	}

	if err := p.staging.BulkUpdateResolved(ctx, b.ID, rows); err != nil {
		return nil, fmt.Errorf("persist resolved fields: %w", err)
	}

	// A re-resolve of an already Resolved batch keeps its status.
	if b.Status == batch.StatusImported {
		if err := p.batches.MarkResolved(ctx, b); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Logger-backed progress for the CLI and server paths.
func NewLogProgress(logger zerolog.Logger) Progress {
	return LogProgress{Logger: logger}
}
