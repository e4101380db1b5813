package resolve

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/carelink/census/internal/domain/staging"
)

// Stats summarizes one resolver stage over one batch. Ambiguous counts rows
// where two or more candidates matched; those rows stay unresolved, but the
// count lets an operator tell ambiguity apart from a genuine no-match.
type Stats struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Ambiguous int `json:"ambiguous"`
}

// Resolver is one matching stage. Resolve consumes only error-free rows,
// writes exactly the foreign-key fields the stage owns, and treats a missing
// or ambiguous match as a normal outcome, never an error. Implementations
// must be idempotent: matching is read-only against the cache and writes are
// plain field assignment, so re-running a stage cannot drift.
type Resolver interface {
	Kind() ResolverKind
	Resolve(ctx context.Context, cache *Cache, facilityID uuid.UUID, date time.Time, rows []*staging.StagingAssignmentRow) (Stats, error)
}

// Registry maps resolver kinds to their implementations.
type Registry struct {
	resolvers map[ResolverKind]Resolver
}

func NewRegistry(resolvers ...Resolver) (*Registry, error) {
	r := &Registry{resolvers: make(map[ResolverKind]Resolver, len(resolvers))}
	for _, res := range resolvers {
		if _, dup := r.resolvers[res.Kind()]; dup {
			return nil, fmt.Errorf("duplicate resolver for kind %s", res.Kind())
		}
		r.resolvers[res.Kind()] = res
	}
	return r, nil
}

// Get returns the resolver registered for kind.
func (r *Registry) Get(kind ResolverKind) (Resolver, error) {
	res, ok := r.resolvers[kind]
	if !ok {
		return nil, fmt.Errorf("no resolver registered for kind %s", kind)
	}
	return res, nil
}

// An outcome classifies one row within a stage.
type outcome int

const (
	matchHit outcome = iota
	matchMiss
	matchAmbiguous
)

// maxMatchWorkers bounds the per-stage errgroup. Row matches are pure map
// lookups, so a small pool is plenty.
const maxMatchWorkers = 8

// forEachRow runs match over the rows in parallel. Rows have no cross-row
// dependency within a stage: each match only reads cache state and writes
// its own row's fields.
func forEachRow(ctx context.Context, rows []*staging.StagingAssignmentRow, match func(r *staging.StagingAssignmentRow) outcome) (Stats, error) {
	var hit, miss, ambiguous atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxMatchWorkers)
	for _, row := range rows {
		row := row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			switch match(row) {
			case matchHit:
				hit.Add(1)
			case matchAmbiguous:
				ambiguous.Add(1)
			default:
				miss.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	return Stats{
		Matched:   int(hit.Load()),
		Unmatched: int(miss.Load()),
		Ambiguous: int(ambiguous.Load()),
	}, nil
}
