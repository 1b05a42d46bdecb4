package sat

// CRef is an opaque handle into the clause arena. It stays valid across
// watch-list and reason bookkeeping but is rewritten whenever the arena is
// compacted by GarbageCollect.
type CRef int32

const (
	// CRefUndef marks the absence of a reason: the variable is unassigned or
	// was a decision.
	CRefUndef CRef = -1

	// CRefExtTrue and CRefExtFalse mark a reason that belongs to the external
	// propagator rather than the arena. The analyzer materializes the real
	// clause lazily on first access and patches the reason in place.
	CRefExtTrue  CRef = -2
	CRefExtFalse CRef = -3
)

// IsExternal reports whether cr is one of the external-propagator sentinels.
func (cr CRef) IsExternal() bool {
	return cr == CRefExtTrue || cr == CRefExtFalse
}
