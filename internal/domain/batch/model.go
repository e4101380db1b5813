package batch

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an import batch. Transitions are strictly
// forward: Pending -> Imported -> Resolved -> Processed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusImported  Status = "imported"
	StatusResolved  Status = "resolved"
	StatusProcessed Status = "processed"
)

var statusOrder = map[Status]int{
	StatusPending:   0,
	StatusImported:  1,
	StatusResolved:  2,
	StatusProcessed: 3,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransition reports whether moving from s to next is allowed. Only the
// immediate successor is permitted, so states are never skipped and never
// revisited.
func (s Status) CanTransition(next Status) bool {
	cur, ok := statusOrder[s]
	if !ok {
		return false
	}
	n, ok := statusOrder[next]
	if !ok {
		return false
	}
	return n == cur+1
}

// Batch groups the staging rows of one census import run. All rows in a batch
// share the batch's facility and service date, which the resolver stages use
// to scope their candidate lookups.
type Batch struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FacilityID  uuid.UUID `db:"facility_id" json:"facility_id"`
	ServiceDate time.Time `db:"service_date" json:"service_date"`
	CreatedBy   uuid.UUID `db:"created_by" json:"created_by"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
