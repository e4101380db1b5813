// Package resolve matches imported staging rows against existing clinical
// entities. Stages run in a fixed dependency order over one batch, sharing a
// cycle-scoped, fill-once candidate cache, and finish with a single
// transactional write of the resolved identifiers.
package resolve

// ResolverKind names one entity type the pipeline resolves. It doubles as
// the cache key for that type's candidate collection.
type ResolverKind int

const (
	KindPhysician ResolverKind = iota
	KindNursePractitioner
	KindPatient
	KindHospitalization
	KindHospitalizationStatus
	KindVisit
)

// Order is the fixed execution order of the pipeline. Later stages read
// foreign keys written by earlier ones, so the order is load-bearing.
var Order = []ResolverKind{
	KindPhysician,
	KindNursePractitioner,
	KindPatient,
	KindHospitalization,
	KindHospitalizationStatus,
	KindVisit,
}

func (k ResolverKind) String() string {
	switch k {
	case KindPhysician:
		return "physician"
	case KindNursePractitioner:
		return "nurse_practitioner"
	case KindPatient:
		return "patient"
	case KindHospitalization:
		return "hospitalization"
	case KindHospitalizationStatus:
		return "hospitalization_status"
	case KindVisit:
		return "visit"
	default:
		return "unknown"
	}
}
