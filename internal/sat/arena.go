package sat

// clauseRecord is the arena's storage for one clause. It is addressed only
// through a CRef; callers never hold a *clauseRecord across a call that
// might trigger GarbageCollect (see solver.go's propagate/analyze/decide
// boundary, per the concurrency note in the spec this repo implements).
type clauseRecord struct {
	literals []Literal

	activity float64
	lbd      int

	learnt    bool
	protected bool
	deleted   bool

	// prevPos caches where the last new watch was found, so that repeated
	// Propagate calls on a long clause don't always rescan from the start.
	prevPos int
}

// Arena is a compacting allocator for clauses. It owns the literal storage
// for every clause in the database and hands out CRefs instead of pointers
// so that GarbageCollect can relocate live clauses and hand back a single
// remap table for the solver to apply to every other CRef it holds
// (constraints, learnts, watch lists, vardata reasons).
type Arena struct {
	recs   []clauseRecord
	wasted int
}

// Alloc copies lits into a new clause record and returns its handle.
func (a *Arena) Alloc(lits []Literal, learnt bool) CRef {
	cr := CRef(len(a.recs))
	owned := make([]Literal, len(lits))
	copy(owned, lits)
	a.recs = append(a.recs, clauseRecord{
		literals: owned,
		learnt:   learnt,
		prevPos:  2,
	})
	return cr
}

// Clause returns the live record for cr. The returned pointer is only valid
// until the next call to GarbageCollect.
func (a *Arena) Clause(cr CRef) *clauseRecord {
	return &a.recs[cr]
}

// Free marks cr's storage reclaimable. The clause must already have been
// removed from every structure that could still dereference it (watch
// lists are pruned lazily and tolerate a dangling, marked-deleted CRef).
func (a *Arena) Free(cr CRef) {
	r := &a.recs[cr]
	if r.deleted {
		return
	}
	r.deleted = true
	a.wasted += len(r.literals) + 1
	r.literals = nil
}

// Size returns the number of words the live clauses plus wasted space would
// occupy; used only to decide when to garbage collect.
func (a *Arena) Size() int {
	total := a.wasted
	for _, r := range a.recs {
		if !r.deleted {
			total += len(r.literals) + 1
		}
	}
	return total
}

// NeedsGC reports whether wasted space has crossed garbageFrac of the
// arena's total footprint, per spec's garbage_frac option.
func (a *Arena) NeedsGC(garbageFrac float64) bool {
	if len(a.recs) == 0 {
		return false
	}
	return float64(a.wasted) > garbageFrac*float64(a.Size())
}

// GarbageCollect compacts the arena, dropping every deleted record and
// returning an old-CRef -> new-CRef table. Entries for deleted records map
// to CRefUndef. Sentinel CRefs (CRefUndef, CRefExtTrue, CRefExtFalse) are
// never present in the table and must not be looked up in it; callers must
// check IsExternal/CRefUndef before indexing.
func (a *Arena) GarbageCollect() []CRef {
	remap := make([]CRef, len(a.recs))
	newRecs := make([]clauseRecord, 0, len(a.recs))

	for old := range a.recs {
		r := &a.recs[old]
		if r.deleted {
			remap[old] = CRefUndef
			continue
		}
		remap[old] = CRef(len(newRecs))
		newRecs = append(newRecs, *r)
	}

	a.recs = newRecs
	a.wasted = 0
	return remap
}

// Relocate rewrites cr according to remap, leaving sentinels untouched. It
// panics if cr refers to a record that GarbageCollect dropped, which would
// indicate a live reference escaped the removal bookkeeping.
func Relocate(cr CRef, remap []CRef) CRef {
	if cr == CRefUndef || cr.IsExternal() {
		return cr
	}
	nr := remap[cr]
	if nr == CRefUndef {
		panic("sat: relocating a CRef whose clause was garbage collected")
	}
	return nr
}
