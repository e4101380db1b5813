package resolve

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Progress receives stage lifecycle events during a resolution cycle. It is
// pure observability: implementations must not block and cannot influence
// resolution outcomes.
type Progress interface {
	StageStarted(batchID uuid.UUID, kind ResolverKind, totalRows int)
	StageFinished(batchID uuid.UUID, kind ResolverKind, stats Stats)
}

// NopProgress discards all events.
type NopProgress struct{}

func (NopProgress) StageStarted(uuid.UUID, ResolverKind, int)    {}
func (NopProgress) StageFinished(uuid.UUID, ResolverKind, Stats) {}

// LogProgress writes stage events as structured log lines.
type LogProgress struct {
	Logger zerolog.Logger
}

func (p LogProgress) StageStarted(batchID uuid.UUID, kind ResolverKind, totalRows int) {
	p.Logger.Info().
		Str("batch_id", batchID.String()).
		Str("stage", kind.String()).
		Int("total_rows", totalRows).
		Msg("resolver stage started")
}

func (p LogProgress) StageFinished(batchID uuid.UUID, kind ResolverKind, stats Stats) {
	p.Logger.Info().
		Str("batch_id", batchID.String()).
		Str("stage", kind.String()).
		Int("matched", stats.Matched).
		Int("unmatched", stats.Unmatched).
		Int("ambiguous", stats.Ambiguous).
		Msg("resolver stage finished")
}
